package rpc

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

const StudioServiceName = "adcanvas.v1.StudioService"

const (
	StudioCreateBoardProcedure          = "/" + StudioServiceName + "/CreateBoard"
	StudioGetBoardProcedure             = "/" + StudioServiceName + "/GetBoard"
	StudioSetProductProcedure           = "/" + StudioServiceName + "/SetProduct"
	StudioGenerateProcedure             = "/" + StudioServiceName + "/Generate"
	StudioGenerateFromTemplateProcedure = "/" + StudioServiceName + "/GenerateFromTemplate"
	StudioRemixProcedure                = "/" + StudioServiceName + "/Remix"
	StudioCombineProcedure              = "/" + StudioServiceName + "/Combine"
	StudioCaptionProcedure              = "/" + StudioServiceName + "/Caption"
	StudioImportImageProcedure          = "/" + StudioServiceName + "/ImportImage"
	StudioPointerProcedure              = "/" + StudioServiceName + "/Pointer"
	StudioWheelProcedure                = "/" + StudioServiceName + "/Wheel"
	StudioZoomProcedure                 = "/" + StudioServiceName + "/Zoom"
	StudioKeyProcedure                  = "/" + StudioServiceName + "/Key"
	StudioPublishProcedure              = "/" + StudioServiceName + "/Publish"
	StudioListGalleryProcedure          = "/" + StudioServiceName + "/ListGallery"
	StudioListTemplatesProcedure        = "/" + StudioServiceName + "/ListTemplates"
	StudioSaveBoardProcedure            = "/" + StudioServiceName + "/SaveBoard"
	StudioLoadBoardProcedure            = "/" + StudioServiceName + "/LoadBoard"
	StudioListBoardsProcedure           = "/" + StudioServiceName + "/ListBoards"
	StudioDeleteBoardProcedure          = "/" + StudioServiceName + "/DeleteBoard"
)

// HandlerOptions are the options every studio procedure is built with:
// the struct JSON codec, a read limit and request logging.
func HandlerOptions(logger *zap.Logger, readMaxBytes int) []connect.HandlerOption {
	opts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(LoggingInterceptor(logger)),
	}
	if readMaxBytes > 0 {
		opts = append(opts, connect.WithReadMaxBytes(readMaxBytes))
	}
	return opts
}

// NewStudioServiceHandler mounts every studio procedure under the service
// path prefix.
func NewStudioServiceHandler(h *StudioHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(StudioCreateBoardProcedure, connect.NewUnaryHandler(StudioCreateBoardProcedure, h.CreateBoard, opts...))
	mux.Handle(StudioGetBoardProcedure, connect.NewUnaryHandler(StudioGetBoardProcedure, h.GetBoard, opts...))
	mux.Handle(StudioSetProductProcedure, connect.NewUnaryHandler(StudioSetProductProcedure, h.SetProduct, opts...))
	mux.Handle(StudioGenerateProcedure, connect.NewUnaryHandler(StudioGenerateProcedure, h.Generate, opts...))
	mux.Handle(StudioGenerateFromTemplateProcedure, connect.NewUnaryHandler(StudioGenerateFromTemplateProcedure, h.GenerateFromTemplate, opts...))
	mux.Handle(StudioRemixProcedure, connect.NewUnaryHandler(StudioRemixProcedure, h.Remix, opts...))
	mux.Handle(StudioCombineProcedure, connect.NewUnaryHandler(StudioCombineProcedure, h.Combine, opts...))
	mux.Handle(StudioCaptionProcedure, connect.NewUnaryHandler(StudioCaptionProcedure, h.Caption, opts...))
	mux.Handle(StudioImportImageProcedure, connect.NewUnaryHandler(StudioImportImageProcedure, h.ImportImage, opts...))
	mux.Handle(StudioPointerProcedure, connect.NewUnaryHandler(StudioPointerProcedure, h.Pointer, opts...))
	mux.Handle(StudioWheelProcedure, connect.NewUnaryHandler(StudioWheelProcedure, h.Wheel, opts...))
	mux.Handle(StudioZoomProcedure, connect.NewUnaryHandler(StudioZoomProcedure, h.Zoom, opts...))
	mux.Handle(StudioKeyProcedure, connect.NewUnaryHandler(StudioKeyProcedure, h.Key, opts...))
	mux.Handle(StudioPublishProcedure, connect.NewUnaryHandler(StudioPublishProcedure, h.Publish, opts...))
	mux.Handle(StudioListGalleryProcedure, connect.NewUnaryHandler(StudioListGalleryProcedure, h.ListGallery, opts...))
	mux.Handle(StudioListTemplatesProcedure, connect.NewUnaryHandler(StudioListTemplatesProcedure, h.ListTemplates, opts...))
	mux.Handle(StudioSaveBoardProcedure, connect.NewUnaryHandler(StudioSaveBoardProcedure, h.SaveBoard, opts...))
	mux.Handle(StudioLoadBoardProcedure, connect.NewUnaryHandler(StudioLoadBoardProcedure, h.LoadBoard, opts...))
	mux.Handle(StudioListBoardsProcedure, connect.NewUnaryHandler(StudioListBoardsProcedure, h.ListBoards, opts...))
	mux.Handle(StudioDeleteBoardProcedure, connect.NewUnaryHandler(StudioDeleteBoardProcedure, h.DeleteBoard, opts...))
	return "/" + StudioServiceName + "/", mux
}

// LoggingInterceptor logs each unary call with its outcome code.
func LoggingInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			began := time.Now()
			res, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("procedure", req.Spec().Procedure),
				zap.Duration("elapsed", time.Since(began)),
			}
			if err == nil {
				logger.Debug("rpc", fields...)
				return res, nil
			}
			code := connect.CodeOf(err)
			fields = append(fields, zap.String("code", code.String()), zap.Error(err))
			if code == connect.CodeInternal || code == connect.CodeUnknown {
				logger.Error("rpc failed", fields...)
			} else {
				logger.Info("rpc rejected", fields...)
			}
			return res, err
		}
	}
}
