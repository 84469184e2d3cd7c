// Package publish copies finished canvas images into the gallery and,
// on request, offers them as community templates.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/catalog"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/media"
)

var (
	ErrNotPublishable = errors.New("only finished image nodes can be published")
	ErrNoPrompt       = errors.New("node has no image prompt to share as a template")
)

type Request struct {
	NodeID   string `json:"node_id"`
	Title    string `json:"title,omitempty"`
	Style    string `json:"style,omitempty"`
	Category string `json:"category,omitempty"`
	// AsTemplate also registers the image prompt as a community template.
	AsTemplate bool `json:"as_template,omitempty"`
}

type Result struct {
	Item     galleryrepo.Item  `json:"item"`
	Template *catalog.Template `json:"template,omitempty"`
}

type Service struct {
	store   galleryrepo.Store
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

func New(store galleryrepo.Store, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, catalog: cat, logger: logger, now: time.Now}
}

func (s *Service) Publish(ctx context.Context, b *board.Board, req Request) (Result, error) {
	n, ok := b.Store.Node(strings.TrimSpace(req.NodeID))
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, req.NodeID)
	}
	if !n.Interactive() || !n.HasImage() {
		return Result{}, ErrNotPublishable
	}
	mime, data, err := media.Decode(n.Content)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrNotPublishable, err)
	}
	if req.AsTemplate && strings.TrimSpace(n.Meta.ImagePrompt) == "" {
		return Result{}, ErrNoPrompt
	}

	style := strings.TrimSpace(req.Style)
	if style == "" {
		if styles := b.Studio.Params().Styles; len(styles) > 0 {
			style = styles[0]
		}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = n.Title
	}
	item := galleryrepo.Item{
		ID:        uuid.NewString(),
		BoardID:   b.ID,
		NodeID:    n.ID,
		Title:     title,
		Prompt:    n.Meta.ImagePrompt,
		Style:     style,
		MIMEType:  mime,
		Size:      int64(len(data)),
		CreatedAt: s.now().UTC(),
	}

	var tmpl *catalog.Template
	if req.AsTemplate {
		t := catalog.Template{
			ID:        "community-" + item.ID,
			Title:     title,
			Style:     style,
			Category:  req.Category,
			Prompt:    n.Meta.ImagePrompt,
			Thumbnail: "/gallery/" + item.ID,
		}
		if err := catalog.NewValidator(s.catalog).Struct(t); err != nil {
			return Result{}, err
		}
		tmpl = &t
	}

	if err := s.store.Put(ctx, item, data); err != nil {
		return Result{}, fmt.Errorf("publish %s: %w", n.ID, err)
	}
	if tmpl != nil {
		if err := s.catalog.AddTemplate(*tmpl); err != nil {
			return Result{}, err
		}
		tmpl.UserGenerated = true
	}
	s.logger.Info("published",
		zap.String("board_id", b.ID),
		zap.String("node_id", n.ID),
		zap.String("item_id", item.ID),
		zap.Bool("template", tmpl != nil),
	)
	return Result{Item: item, Template: tmpl}, nil
}

func (s *Service) List(ctx context.Context) ([]galleryrepo.Item, error) { return s.store.List(ctx) }

// Image returns the stored bytes, or a redirect URL when the backend
// serves them directly.
func (s *Service) Image(ctx context.Context, id string) (galleryrepo.Item, []byte, string, error) {
	if u, err := s.store.GetURL(ctx, id); err == nil && u != "" {
		return galleryrepo.Item{ID: id}, nil, u, nil
	}
	item, data, err := s.store.Get(ctx, id)
	return item, data, "", err
}
