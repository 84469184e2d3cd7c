package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/media"
	"adcanvas/internal/prompt"
)

var errMissingConcept = errors.New("no concept returned for this slot")

// Generate creates a batch of concept nodes for the current product.
//
// The placeholders are added in one row before the concept call. One
// concept call fills every placeholder's copy, then each node requests its
// own image concurrently and settles independently of its siblings.
// Removing a placeholder cancels only its own task; the shared concept
// call is cancelled once every placeholder is gone.
func (o *Orchestrator) Generate(_ context.Context, params GenerationParams) ([]*Task, error) {
	cli, ok := o.client(OpGenerate)
	if !ok {
		return nil, nil
	}
	if err := o.validate(params); err != nil {
		return nil, err
	}
	product := o.Product()
	if strings.TrimSpace(product.Image) == "" {
		return nil, ErrProductImageRequired
	}
	n := params.count()
	req, err := prompt.ConceptRequest(product.prompt(), prompt.ConceptParams{
		Goal:   params.Goal,
		Format: params.Format,
		Styles: params.Styles,
		Mode:   params.CloneMode,
		Count:  n,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	o.mu.Lock()
	o.params = params
	o.mu.Unlock()

	startX := NextRowX(o.store.Nodes())
	nodes := make([]graph.Node, n)
	for i := range nodes {
		at := RowSlot(startX, i)
		nodes[i] = graph.Node{
			ID:    o.newID(),
			Kind:  graph.KindConcept,
			X:     at.X,
			Y:     at.Y,
			Width: graph.DefaultWidth,
			Title: fmt.Sprintf("Concept %d of %d", i+1, n),
			Meta:  graph.Meta{Format: params.Format, Loading: true},
		}
	}
	if err := o.store.AddNodes(nodes...); err != nil {
		return nil, err
	}

	tasks := make([]*Task, n)
	batchCtx, batchCancel := context.WithCancel(o.base)
	var live atomic.Int32
	live.Store(int32(n))
	for i, node := range nodes {
		tasks[i] = o.spawn(node.ID, OpGenerate)
		context.AfterFunc(tasks[i].ctx, func() {
			if live.Add(-1) == 0 {
				batchCancel()
			}
		})
	}

	var (
		ready      = make(chan struct{})
		concepts   []prompt.Concept
		conceptErr error
	)
	go func() {
		defer close(ready)
		raw, err := o.callJSON(batchCtx, cli, "concepts", req)
		if err != nil {
			conceptErr = err
			return
		}
		concepts, conceptErr = prompt.ParseConcepts(raw)
	}()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer batchCancel()
		results := SettleAll(n, func(i int) error {
			t := tasks[i]
			return o.run(t, func(ctx context.Context) (string, error) {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-ready:
				}
				if conceptErr != nil {
					return "", conceptErr
				}
				if i >= len(concepts) {
					return "", errMissingConcept
				}
				c := concepts[i]
				if _, err := o.store.Patch(t.NodeID, conceptPatch(c)); err != nil {
					return "", err
				}
				if strings.TrimSpace(c.ImagePrompt) == "" {
					return "", ErrNoImagePrompt
				}
				ireq, err := prompt.ImageRequest(c.ImagePrompt, params.Styles, product.prompt(), params.CloneMode)
				if err != nil {
					return "", err
				}
				return o.callImage(ctx, cli, "image", ireq)
			})
		})
		o.logger.Info("batch settled",
			zap.Int("nodes", n),
			zap.Int("failed", Failed(results)))
	}()
	return tasks, nil
}

// GenerateFromTemplate renders a gallery template with the current product
// into a new image node to the right of the existing content.
func (o *Orchestrator) GenerateFromTemplate(_ context.Context, templateID string) (*Task, error) {
	cli, ok := o.client(OpTemplate)
	if !ok {
		return nil, nil
	}
	tpl, found := o.catalog.Template(templateID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	product := o.Product()
	if strings.TrimSpace(product.Image) == "" {
		return nil, ErrProductImageRequired
	}
	text := prompt.TemplatePrompt(tpl.Prompt, tpl.Style)
	ireq, err := prompt.ImageRequest(text, []string{tpl.Style}, product.prompt(), prompt.CloneRecreate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	at := RowSlot(NextRowX(o.store.Nodes()), 0)
	node := graph.Node{
		ID:    o.newID(),
		Kind:  graph.KindImage,
		X:     at.X,
		Y:     at.Y,
		Width: graph.DefaultWidth,
		Title: tpl.Title,
		Meta:  graph.Meta{Angle: "Template", ImagePrompt: text, Loading: true},
	}
	if err := o.place(node); err != nil {
		return nil, err
	}
	t := o.spawn(node.ID, OpTemplate)
	return o.start(t, func(ctx context.Context) (string, error) {
		return o.callImage(ctx, cli, "template", ireq)
	}), nil
}

// ImportImage drops an uploaded image onto the canvas at the given canvas
// position. The node is ready at once; its height follows the image aspect.
func (o *Orchestrator) ImportImage(name, dataURI string, at geom.Point) (graph.Node, error) {
	if !media.IsImage(dataURI) {
		return graph.Node{}, fmt.Errorf("%w: %s is not an image", ErrInvalidParams, name)
	}
	_, data, err := media.Decode(dataURI)
	if err != nil {
		return graph.Node{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if int64(len(data)) > o.maxUpload {
		return graph.Node{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidParams, name, o.maxUpload)
	}
	height := graph.DefaultWidth
	if w, h, err := media.Dimensions(data); err == nil {
		height = media.FitWidth(w, h, graph.DefaultWidth)
	} else {
		o.logger.Debug("image dimensions unknown", zap.String("name", name), zap.Error(err))
	}
	node := graph.Node{
		ID:      o.newID(),
		Kind:    graph.KindImported,
		X:       at.X,
		Y:       at.Y,
		Width:   graph.DefaultWidth,
		Height:  height,
		Title:   name,
		Content: dataURI,
		Meta:    graph.Meta{Angle: "Imported"},
	}
	if err := o.store.AddNodes(node); err != nil {
		return graph.Node{}, err
	}
	return node, nil
}
