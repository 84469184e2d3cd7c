// Package studio turns user intents into AI calls and canvas nodes.
//
// Every entry point creates its placeholder nodes and wires before any
// network call is made and returns task handles; content arrives later as
// node patches. Each task ends with its node ready or failed.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/catalog"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	"adcanvas/internal/prompt"
)

// DefaultTimeout bounds each AI call.
const DefaultTimeout = 90 * time.Second

// Metrics receives task lifecycle observations.
type Metrics interface {
	TaskStarted(op string)
	TaskSettled(op, outcome string, elapsed time.Duration)
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option { return func(o *Orchestrator) { o.metrics = m } }

// WithTimeout sets the per-call timeout; d <= 0 keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxUpload bounds the decoded size of product and imported images;
// n <= 0 keeps media.MaxUploadBytes.
func WithMaxUpload(n int64) Option { return func(o *Orchestrator) { o.maxUpload = media.Limit(n) } }

// WithIDs replaces the uuid generator, mostly for tests.
func WithIDs(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Orchestrator is the generation front of one board.
type Orchestrator struct {
	store     *graph.Store
	sel       *graph.Selection
	provider  llm.Provider
	catalog   *catalog.Catalog
	validator *catalog.Validator
	logger    *zap.Logger
	metrics   Metrics
	timeout   time.Duration
	maxUpload int64
	newID     func() string

	tasks     *TaskSet
	stopTrack func()
	base      context.Context
	stop      context.CancelFunc
	wg        sync.WaitGroup

	mu          sync.RWMutex
	product     ProductProfile
	params      GenerationParams
	instruction string
}

func New(store *graph.Store, sel *graph.Selection, provider llm.Provider, cat *catalog.Catalog, opts ...Option) *Orchestrator {
	base, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		store:     store,
		sel:       sel,
		provider:  provider,
		catalog:   cat,
		validator: catalog.NewValidator(cat),
		logger:    zap.NewNop(),
		timeout:   DefaultTimeout,
		maxUpload: media.MaxUploadBytes,
		newID:     uuid.NewString,
		tasks:     NewTaskSet(),
		base:      base,
		stop:      stop,
		params:    DefaultParams(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.stopTrack = o.tasks.Track(store)
	return o
}

// Close cancels every running task and waits for them to settle.
func (o *Orchestrator) Close() {
	o.stop()
	o.tasks.CancelAll()
	o.wg.Wait()
	o.stopTrack()
}

// Wait blocks until no task is running.
func (o *Orchestrator) Wait() { o.wg.Wait() }

func (o *Orchestrator) Tasks() *TaskSet { return o.tasks }

func (o *Orchestrator) Configured() bool { return o.provider.Configured() }

// Reason explains why generation is disabled; empty when configured.
func (o *Orchestrator) Reason() string { return o.provider.Reason() }

// SetProduct replaces the product profile after checking its images.
func (o *Orchestrator) SetProduct(p ProductProfile) error {
	if err := p.check(o.maxUpload); err != nil {
		return err
	}
	if err := o.validator.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	o.mu.Lock()
	o.product = p
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) Product() ProductProfile {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.product
}

// SetParams stores the parameters used by remix, combine and templates.
func (o *Orchestrator) SetParams(p GenerationParams) error {
	if err := o.validate(p); err != nil {
		return err
	}
	o.mu.Lock()
	o.params = p
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) Params() GenerationParams {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p := o.params
	p.Styles = append([]string(nil), p.Styles...)
	return p
}

// SetInstruction stores the free-text combine instruction.
func (o *Orchestrator) SetInstruction(s string) {
	o.mu.Lock()
	o.instruction = s
	o.mu.Unlock()
}

func (o *Orchestrator) Instruction() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.instruction
}

func (o *Orchestrator) validate(v any) error {
	if err := o.validator.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

func (o *Orchestrator) client(op Op) (llm.Client, bool) {
	cli, ok := o.provider.Client()
	if !ok {
		o.logger.Info("generation disabled",
			zap.String("op", string(op)),
			zap.String("reason", o.provider.Reason()))
	}
	return cli, ok
}

// source returns a node that content actions may target.
func (o *Orchestrator) source(id string) (graph.Node, error) {
	n, ok := o.store.Node(id)
	if !ok {
		return graph.Node{}, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	if !n.Interactive() {
		return graph.Node{}, fmt.Errorf("%w: %s", ErrNodeBusy, id)
	}
	return n, nil
}

// place adds node and its provenance wires, rolling the node back when a
// source disappeared in between.
func (o *Orchestrator) place(node graph.Node, wires ...graph.Wire) error {
	if err := o.store.AddNodes(node); err != nil {
		return err
	}
	for _, w := range wires {
		if err := o.store.AddWire(w); err != nil {
			o.store.RemoveNodes(node.ID)
			return err
		}
	}
	return nil
}

func (o *Orchestrator) wire(from, to string, rel graph.Relation) graph.Wire {
	return graph.Wire{ID: o.newID(), From: from, To: to, Relation: rel}
}

func (o *Orchestrator) spawn(nodeID string, op Op) *Task {
	t := newTask(o.base, o.newID(), nodeID, op)
	o.tasks.add(t)
	if o.metrics != nil {
		o.metrics.TaskStarted(string(op))
	}
	return t
}

// start runs fn for t in the background.
func (o *Orchestrator) start(t *Task, fn func(ctx context.Context) (string, error)) *Task {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_ = o.run(t, fn)
	}()
	return t
}

// run executes fn and settles the task's node: ready with the returned
// content, or failed with the error text.
func (o *Orchestrator) run(t *Task, fn func(ctx context.Context) (string, error)) error {
	began := time.Now()
	content, err := fn(t.ctx)
	if err == nil {
		_, err = o.store.Patch(t.NodeID, graph.Ready(content))
	}
	if err != nil && t.ctx.Err() != nil {
		err = t.ctx.Err()
	}

	outcome := "ready"
	if err != nil {
		outcome = "failed"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		} else {
			o.logger.Warn("generation failed",
				zap.String("op", string(t.Op)),
				zap.String("node_id", t.NodeID),
				zap.Error(err))
		}
		if _, perr := o.store.Patch(t.NodeID, graph.Failed(err)); perr != nil && !errors.Is(perr, graph.ErrNodeNotFound) {
			o.logger.Error("settle node", zap.String("node_id", t.NodeID), zap.Error(perr))
		}
	}
	if o.metrics != nil {
		o.metrics.TaskSettled(string(t.Op), outcome, time.Since(began))
	}
	o.tasks.remove(t)
	t.finish(err)
	return err
}

func (o *Orchestrator) callJSON(ctx context.Context, cli llm.Client, phase string, req llm.JSONRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	raw, err := cli.GenerateJSON(llm.WithPhase(ctx, phase), req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", phase, err)
	}
	return raw, nil
}

// callImage returns the generated image as a data URI.
func (o *Orchestrator) callImage(ctx context.Context, cli llm.Client, phase string, req llm.ImageRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	img, err := cli.GenerateImage(llm.WithPhase(ctx, phase), req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", phase, err)
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%s: %w", phase, llm.ErrNoImage)
	}
	return media.Encode(img.MIMEType, img.Data), nil
}

// conceptPatch writes the concept copy onto a placeholder that keeps
// loading until its image arrives.
func conceptPatch(c prompt.Concept) graph.Patch {
	return graph.Patch{
		Title:   graph.Ptr(c.Headline),
		Content: graph.Ptr(c.Body),
		Meta: &graph.MetaPatch{
			Headline:    graph.Ptr(c.Headline),
			Body:        graph.Ptr(c.Body),
			Angle:       graph.Ptr(c.Angle),
			Theory:      graph.Ptr(c.Theory),
			ImagePrompt: graph.Ptr(c.ImagePrompt),
		},
	}
}

// conceptOf reads a node back as a concept.
func conceptOf(n graph.Node) prompt.Concept {
	headline := n.Meta.Headline
	if headline == "" {
		headline = n.Title
	}
	return prompt.Concept{
		Headline:    headline,
		Body:        bodyOf(n),
		ImagePrompt: n.Meta.ImagePrompt,
		Angle:       n.Meta.Angle,
		Theory:      n.Meta.Theory,
	}
}

func bodyOf(n graph.Node) string {
	if n.Meta.Body != "" || media.IsImage(n.Content) {
		return n.Meta.Body
	}
	return n.Content
}
