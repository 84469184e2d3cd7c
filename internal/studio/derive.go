package studio

import (
	"context"
	"fmt"
	"strings"

	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/prompt"
)

// Remix asks for a variation of the source node's image next to it, wired
// from the source.
func (o *Orchestrator) Remix(_ context.Context, nodeID string) (*Task, error) {
	cli, ok := o.client(OpRemix)
	if !ok {
		return nil, nil
	}
	src, err := o.source(nodeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(src.Meta.ImagePrompt) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoImagePrompt, nodeID)
	}
	product := o.Product()
	if strings.TrimSpace(product.Image) == "" {
		return nil, ErrProductImageRequired
	}
	params := o.Params()
	ireq, err := prompt.ImageRequest(prompt.RemixPrompt(src.Meta.ImagePrompt), params.Styles, product.prompt(), prompt.CloneRecreate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	meta := src.Meta
	meta.Angle = "Variation"
	meta.Loading = true
	meta.Failure = ""
	at := remixSlot(src)
	node := graph.Node{
		ID:    o.newID(),
		Kind:  graph.KindConcept,
		X:     at.X,
		Y:     at.Y,
		Width: graph.DefaultWidth,
		Title: "Remix: " + src.Title,
		Meta:  meta,
	}
	if err := o.place(node, o.wire(src.ID, node.ID, graph.RelationRemix)); err != nil {
		return nil, err
	}
	t := o.spawn(node.ID, OpRemix)
	return o.start(t, func(ctx context.Context) (string, error) {
		return o.callImage(ctx, cli, "remix", ireq)
	}), nil
}

// Combine merges the two selected nodes into a new concept placed below
// them and wired from both. The selection and the stored instruction are
// cleared once the placeholder exists. Any selection other than exactly
// two nodes leaves the canvas untouched and returns ErrNeedTwoSelected.
// An empty instruction falls back to the stored one, then to
// prompt.DefaultInstruction.
func (o *Orchestrator) Combine(_ context.Context, instruction string) (*Task, error) {
	cli, ok := o.client(OpCombine)
	if !ok {
		return nil, nil
	}
	ids := o.sel.IDs()
	if len(ids) != 2 {
		return nil, ErrNeedTwoSelected
	}
	a, err := o.source(ids[0])
	if err != nil {
		return nil, err
	}
	b, err := o.source(ids[1])
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = o.Instruction()
	}
	mreq, err := prompt.CombineRequest(conceptOf(a), conceptOf(b), instruction)
	if err != nil {
		return nil, err
	}
	product := o.Product()
	params := o.Params()

	at := combineSlot(a, b)
	node := graph.Node{
		ID:    o.newID(),
		Kind:  graph.KindConcept,
		X:     at.X,
		Y:     at.Y,
		Width: graph.DefaultWidth,
		Title: "Combining " + a.Title + " + " + b.Title,
		Meta:  graph.Meta{Format: params.Format, Loading: true},
	}
	if err := o.place(node,
		o.wire(a.ID, node.ID, graph.RelationCombine),
		o.wire(b.ID, node.ID, graph.RelationCombine),
	); err != nil {
		return nil, err
	}
	o.sel.Clear()
	o.SetInstruction("")

	t := o.spawn(node.ID, OpCombine)
	return o.start(t, func(ctx context.Context) (string, error) {
		raw, err := o.callJSON(ctx, cli, "combine", mreq)
		if err != nil {
			return "", err
		}
		c, err := prompt.ParseConcept(raw)
		if err != nil {
			return "", err
		}
		if _, err := o.store.Patch(node.ID, conceptPatch(c)); err != nil {
			return "", err
		}
		if strings.TrimSpace(c.ImagePrompt) == "" {
			return "", ErrNoImagePrompt
		}
		ireq, err := prompt.ImageRequest(c.ImagePrompt, params.Styles, product.prompt(), prompt.CloneRecreate)
		if err != nil {
			return "", err
		}
		return o.callImage(ctx, cli, "image", ireq)
	}), nil
}

// Caption writes social copy for the source node into a new caption node
// above it. The source node is not modified.
func (o *Orchestrator) Caption(_ context.Context, nodeID string, cp CaptionParams) (*Task, error) {
	cli, ok := o.client(OpCaption)
	if !ok {
		return nil, nil
	}
	if err := o.validate(cp); err != nil {
		return nil, err
	}
	src, err := o.source(nodeID)
	if err != nil {
		return nil, err
	}
	req := prompt.CaptionRequest(prompt.CaptionInput{
		Headline:      src.Title,
		Body:          bodyOf(src),
		Description:   o.Product().Description,
		VisualContext: src.Meta.ImagePrompt,
		Language:      cp.Language,
		Tone:          cp.Tone,
	})

	at := captionSlot(src)
	node := graph.Node{
		ID:     o.newID(),
		Kind:   graph.KindCaption,
		X:      at.X,
		Y:      at.Y,
		Width:  graph.DefaultWidth,
		Height: graph.DefaultCaptionHeight,
		Title:  cp.Language + " Copy",
		Meta:   graph.Meta{Angle: "Copywriting", Loading: true},
	}
	if err := o.place(node, o.wire(src.ID, node.ID, graph.RelationCaption)); err != nil {
		return nil, err
	}
	t := o.spawn(node.ID, OpCaption)
	return o.start(t, func(ctx context.Context) (string, error) {
		raw, err := o.callJSON(ctx, cli, "caption", req)
		if err != nil {
			return "", err
		}
		c, err := prompt.ParseCaption(raw)
		if err != nil {
			return "", err
		}
		return c.Text(), nil
	}), nil
}
