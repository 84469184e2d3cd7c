// Package studio is the request-shaped facade over live boards, saved
// boards and the gallery that the RPC and websocket handlers call.
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/geom"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/repository/boardstore"
	"adcanvas/internal/gateway/service/publish"
	core "adcanvas/internal/studio"
)

// ErrInvalidArgument marks malformed requests.
var ErrInvalidArgument = errors.New("invalid argument")

type Service struct {
	boards  *board.Registry
	saved   boardstore.Store
	publish *publish.Service
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func New(boards *board.Registry, saved boardstore.Store, pub *publish.Service, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{boards: boards, saved: saved, publish: pub, catalog: cat, logger: logger}
}

// Board returns the live board, loading it from the saved boards when it
// is not open yet.
func (s *Service) Board(ctx context.Context, id string) (*board.Board, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: board_id is required", ErrInvalidArgument)
	}
	b, err := s.boards.Get(id)
	if err == nil {
		return b, nil
	}
	if s.saved == nil {
		return nil, err
	}
	snap, lerr := s.saved.Load(ctx, id)
	if errors.Is(lerr, boardstore.ErrNotFound) {
		return nil, err
	}
	if lerr != nil {
		return nil, lerr
	}
	return s.boards.Open(snap)
}

func (s *Service) info(b *board.Board) BoardInfo {
	return BoardInfo{
		ID:          b.ID,
		Name:        b.Name(),
		Version:     b.Store.Version(),
		Document:    b.Store.Document(),
		View:        b.View(),
		Product:     b.Studio.Product(),
		Params:      b.Studio.Params(),
		Instruction: b.Studio.Instruction(),
		Generation:  s.generation(b),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

func (s *Service) generation(b *board.Board) Generation {
	if b.Studio.Configured() {
		return Generation{Configured: true}
	}
	return Generation{Reason: b.Studio.Reason()}
}

func (s *Service) CreateBoard(_ context.Context, req *CreateBoardRequest) (*BoardResponse, error) {
	b := s.boards.Create(strings.TrimSpace(req.Name))
	return &BoardResponse{Board: s.info(b)}, nil
}

func (s *Service) GetBoard(ctx context.Context, req *GetBoardRequest) (*BoardResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	return &BoardResponse{Board: s.info(b)}, nil
}

func (s *Service) SetProduct(ctx context.Context, req *SetProductRequest) (*SetProductResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	if err := b.Studio.SetProduct(req.Product); err != nil {
		return nil, err
	}
	if req.Params != nil {
		if err := b.Studio.SetParams(*req.Params); err != nil {
			return nil, err
		}
	}
	if req.Instruction != nil {
		b.Studio.SetInstruction(*req.Instruction)
	}
	return &SetProductResponse{
		Product:     b.Studio.Product(),
		Params:      b.Studio.Params(),
		Instruction: b.Studio.Instruction(),
	}, nil
}

func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*TasksResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	params := b.Studio.Params()
	if req.Params != nil {
		params = *req.Params
	}
	tasks, err := b.Studio.Generate(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.tasks(b, tasks...), nil
}

func (s *Service) GenerateFromTemplate(ctx context.Context, req *GenerateFromTemplateRequest) (*TasksResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	t, err := b.Studio.GenerateFromTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	return s.tasks(b, t), nil
}

func (s *Service) Remix(ctx context.Context, req *RemixRequest) (*TasksResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	t, err := b.Studio.Remix(ctx, req.NodeID)
	if err != nil {
		return nil, err
	}
	return s.tasks(b, t), nil
}

func (s *Service) Combine(ctx context.Context, req *CombineRequest) (*TasksResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	if req.NodeIDs != nil {
		if err := b.Selection.SetExisting(req.NodeIDs, b.Store.Has); err != nil {
			return nil, err
		}
	}
	t, err := b.Studio.Combine(ctx, req.Instruction)
	if err != nil {
		return nil, err
	}
	return s.tasks(b, t), nil
}

func (s *Service) Caption(ctx context.Context, req *CaptionRequest) (*TasksResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	cp := core.DefaultCaptionParams()
	if v := strings.TrimSpace(req.Language); v != "" {
		cp.Language = v
	}
	if v := strings.TrimSpace(req.Tone); v != "" {
		cp.Tone = v
	}
	t, err := b.Studio.Caption(ctx, req.NodeID, cp)
	if err != nil {
		return nil, err
	}
	return s.tasks(b, t), nil
}

// tasks drops the nil handles an unconfigured provider returns.
func (s *Service) tasks(b *board.Board, ts ...*core.Task) *TasksResponse {
	out := &TasksResponse{Tasks: []TaskInfo{}, Generation: s.generation(b)}
	for _, t := range ts {
		if t == nil {
			continue
		}
		out.Tasks = append(out.Tasks, TaskInfo{ID: t.ID, NodeID: t.NodeID, Op: t.Op})
	}
	return out
}

func (s *Service) ImportImage(ctx context.Context, req *ImportImageRequest) (*NodeResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	name := firstNonEmpty(strings.TrimSpace(req.Name), "upload")
	n, err := b.Studio.ImportImage(name, req.DataURI, geom.Point{X: req.X, Y: req.Y})
	if err != nil {
		return nil, err
	}
	return &NodeResponse{Node: n}, nil
}

func (s *Service) Pointer(ctx context.Context, req *PointerRequest) (*ViewResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	v, err := ApplyPointer(b, req.Phase, req.Event)
	if err != nil {
		return nil, err
	}
	return &ViewResponse{View: v}, nil
}

func (s *Service) Wheel(ctx context.Context, req *WheelRequest) (*ViewResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	return &ViewResponse{View: b.Wheel(req.DeltaY, req.Modifier)}, nil
}

func (s *Service) Zoom(ctx context.Context, req *ZoomRequest) (*ViewResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	v, ok := b.Zoom(req.Action, req.ScreenW, req.ScreenH)
	if !ok {
		return nil, fmt.Errorf("%w: unknown zoom action %q", ErrInvalidArgument, req.Action)
	}
	return &ViewResponse{View: v}, nil
}

func (s *Service) Key(ctx context.Context, req *KeyRequest) (*KeyResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	res, v := b.Key(req.Event)
	return &KeyResponse{Result: res, View: v}, nil
}

func (s *Service) Publish(ctx context.Context, req *PublishRequest) (*PublishResponse, error) {
	b, err := s.Board(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}
	res, err := s.publish.Publish(ctx, b, req.Request)
	if err != nil {
		return nil, err
	}
	return &PublishResponse{Result: res}, nil
}

func (s *Service) ListGallery(ctx context.Context, _ *ListGalleryRequest) (*ListGalleryResponse, error) {
	items, err := s.publish.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListGalleryResponse{Items: items}, nil
}

func (s *Service) ListTemplates(_ context.Context, req *ListTemplatesRequest) (*ListTemplatesResponse, error) {
	c := s.catalog
	templates := c.Search(req.Query, req.Category)
	if templates == nil {
		templates = []catalog.Template{}
	}
	return &ListTemplatesResponse{
		Templates: templates,
		Options: Options{
			Styles:     c.Styles(),
			Goals:      c.Goals(),
			Formats:    c.Formats(),
			CloneModes: c.CloneModes(),
			Languages:  c.Languages(),
			Tones:      c.Tones(),
			Categories: c.Categories(),
		},
	}, nil
}

func (s *Service) SaveBoard(ctx context.Context, req *SaveBoardRequest) (*SaveBoardResponse, error) {
	b, err := s.boards.Get(strings.TrimSpace(req.BoardID))
	if err != nil {
		return nil, err
	}
	snap := b.Snapshot()
	if err := s.saved.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save board %s: %w", b.ID, err)
	}
	s.logger.Info("board saved", zap.String("board_id", b.ID), zap.Int("nodes", len(snap.Document.Nodes)))
	return &SaveBoardResponse{Summary: snap.Summary()}, nil
}

func (s *Service) LoadBoard(ctx context.Context, req *LoadBoardRequest) (*BoardResponse, error) {
	id := strings.TrimSpace(req.BoardID)
	if id == "" {
		return nil, fmt.Errorf("%w: board_id is required", ErrInvalidArgument)
	}
	snap, err := s.saved.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.Get(id)
	switch {
	case err == nil:
		if err := b.Restore(snap); err != nil {
			return nil, err
		}
	default:
		if b, err = s.boards.Open(snap); err != nil {
			return nil, err
		}
	}
	return &BoardResponse{Board: s.info(b)}, nil
}

func (s *Service) ListBoards(ctx context.Context, _ *ListBoardsRequest) (*ListBoardsResponse, error) {
	saved, err := s.saved.List(ctx)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		saved = []board.Summary{}
	}
	live := make([]board.Summary, 0)
	for _, b := range s.boards.List() {
		live = append(live, board.Summary{ID: b.ID, Name: b.Name(), Nodes: b.Store.Len(), UpdatedAt: b.UpdatedAt()})
	}
	return &ListBoardsResponse{Saved: saved, Live: live}, nil
}

// DeleteBoard closes the live board and removes its saved snapshot. Either
// may be missing, but not both.
func (s *Service) DeleteBoard(ctx context.Context, req *DeleteBoardRequest) (*DeleteBoardResponse, error) {
	id := strings.TrimSpace(req.BoardID)
	liveErr := s.boards.Remove(id)
	savedErr := s.saved.Delete(ctx, id)
	if liveErr != nil && savedErr != nil {
		if errors.Is(savedErr, boardstore.ErrNotFound) {
			return nil, liveErr
		}
		return nil, savedErr
	}
	return &DeleteBoardResponse{}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
