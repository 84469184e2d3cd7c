package rpc

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/repository/boardstore"
	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
	gatewaystudio "adcanvas/internal/gateway/service/studio"
	"adcanvas/internal/llm"
	"adcanvas/internal/studio"
)

type StudioHandler struct {
	svc *gatewaystudio.Service
}

func NewStudioHandler(svc *gatewaystudio.Service) *StudioHandler {
	return &StudioHandler{svc: svc}
}

func (h *StudioHandler) CreateBoard(ctx context.Context, req *connect.Request[gatewaystudio.CreateBoardRequest]) (*connect.Response[gatewaystudio.BoardResponse], error) {
	out, err := h.svc.CreateBoard(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) GetBoard(ctx context.Context, req *connect.Request[gatewaystudio.GetBoardRequest]) (*connect.Response[gatewaystudio.BoardResponse], error) {
	out, err := h.svc.GetBoard(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) SetProduct(ctx context.Context, req *connect.Request[gatewaystudio.SetProductRequest]) (*connect.Response[gatewaystudio.SetProductResponse], error) {
	out, err := h.svc.SetProduct(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Generate(ctx context.Context, req *connect.Request[gatewaystudio.GenerateRequest]) (*connect.Response[gatewaystudio.TasksResponse], error) {
	out, err := h.svc.Generate(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) GenerateFromTemplate(ctx context.Context, req *connect.Request[gatewaystudio.GenerateFromTemplateRequest]) (*connect.Response[gatewaystudio.TasksResponse], error) {
	out, err := h.svc.GenerateFromTemplate(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Remix(ctx context.Context, req *connect.Request[gatewaystudio.RemixRequest]) (*connect.Response[gatewaystudio.TasksResponse], error) {
	out, err := h.svc.Remix(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Combine(ctx context.Context, req *connect.Request[gatewaystudio.CombineRequest]) (*connect.Response[gatewaystudio.TasksResponse], error) {
	out, err := h.svc.Combine(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Caption(ctx context.Context, req *connect.Request[gatewaystudio.CaptionRequest]) (*connect.Response[gatewaystudio.TasksResponse], error) {
	out, err := h.svc.Caption(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) ImportImage(ctx context.Context, req *connect.Request[gatewaystudio.ImportImageRequest]) (*connect.Response[gatewaystudio.NodeResponse], error) {
	out, err := h.svc.ImportImage(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Pointer(ctx context.Context, req *connect.Request[gatewaystudio.PointerRequest]) (*connect.Response[gatewaystudio.ViewResponse], error) {
	out, err := h.svc.Pointer(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Wheel(ctx context.Context, req *connect.Request[gatewaystudio.WheelRequest]) (*connect.Response[gatewaystudio.ViewResponse], error) {
	out, err := h.svc.Wheel(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Zoom(ctx context.Context, req *connect.Request[gatewaystudio.ZoomRequest]) (*connect.Response[gatewaystudio.ViewResponse], error) {
	out, err := h.svc.Zoom(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Key(ctx context.Context, req *connect.Request[gatewaystudio.KeyRequest]) (*connect.Response[gatewaystudio.KeyResponse], error) {
	out, err := h.svc.Key(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) Publish(ctx context.Context, req *connect.Request[gatewaystudio.PublishRequest]) (*connect.Response[gatewaystudio.PublishResponse], error) {
	out, err := h.svc.Publish(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) ListGallery(ctx context.Context, req *connect.Request[gatewaystudio.ListGalleryRequest]) (*connect.Response[gatewaystudio.ListGalleryResponse], error) {
	out, err := h.svc.ListGallery(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) ListTemplates(ctx context.Context, req *connect.Request[gatewaystudio.ListTemplatesRequest]) (*connect.Response[gatewaystudio.ListTemplatesResponse], error) {
	out, err := h.svc.ListTemplates(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) SaveBoard(ctx context.Context, req *connect.Request[gatewaystudio.SaveBoardRequest]) (*connect.Response[gatewaystudio.SaveBoardResponse], error) {
	out, err := h.svc.SaveBoard(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) LoadBoard(ctx context.Context, req *connect.Request[gatewaystudio.LoadBoardRequest]) (*connect.Response[gatewaystudio.BoardResponse], error) {
	out, err := h.svc.LoadBoard(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) ListBoards(ctx context.Context, req *connect.Request[gatewaystudio.ListBoardsRequest]) (*connect.Response[gatewaystudio.ListBoardsResponse], error) {
	out, err := h.svc.ListBoards(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func (h *StudioHandler) DeleteBoard(ctx context.Context, req *connect.Request[gatewaystudio.DeleteBoardRequest]) (*connect.Response[gatewaystudio.DeleteBoardResponse], error) {
	out, err := h.svc.DeleteBoard(ctx, req.Msg)
	if err != nil {
		return nil, toStudioError(err)
	}
	return connect.NewResponse(out), nil
}

func toStudioError(err error) error {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, gatewaystudio.ErrInvalidArgument),
		errors.Is(err, studio.ErrInvalidParams),
		errors.Is(err, studio.ErrNeedTwoSelected),
		errors.Is(err, studio.ErrProductImageRequired),
		errors.Is(err, studio.ErrNoImagePrompt),
		errors.Is(err, graph.ErrDanglingWire),
		errors.Is(err, graph.ErrDuplicateNode):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, board.ErrBoardNotFound),
		errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, studio.ErrTemplateNotFound),
		errors.Is(err, boardstore.ErrNotFound),
		errors.Is(err, galleryrepo.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, studio.ErrNodeBusy),
		errors.Is(err, board.ErrBoardBusy),
		errors.Is(err, publish.ErrNotPublishable),
		errors.Is(err, publish.ErrNoPrompt):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, llm.ErrCircuitOpen):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("studio service failed: %w", err))
	}
}
