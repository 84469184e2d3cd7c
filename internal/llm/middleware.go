package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging, hooks, etc.).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// CallKind distinguishes the two request shapes.
type CallKind string

const (
	CallJSON  CallKind = "json"
	CallImage CallKind = "image"
)

// Call describes one request as seen by an interceptor.
type Call struct {
	Kind  CallKind
	Phase string
	Bytes int
	JSON  *JSONRequest
	Image *ImageRequest
}

// interceptor runs around one request; invoke performs the wrapped call.
type interceptor func(ctx context.Context, call Call, invoke func(context.Context) error) error

// intercept builds a middleware from an interceptor so that each concern is
// written once for both request shapes.
func intercept(fn interceptor) Middleware {
	return func(next Client) Client {
		return &intercepted{next: next, fn: fn}
	}
}

type intercepted struct {
	next Client
	fn   interceptor
}

func (c *intercepted) Name() string { return c.next.Name() }
func (c *intercepted) Close() error { return c.next.Close() }

func (c *intercepted) GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	call := Call{Kind: CallJSON, Phase: PhaseFrom(ctx), Bytes: len(req.System) + PromptBytes(req.Parts), JSON: &req}
	err := c.fn(ctx, call, func(ctx context.Context) error {
		var err error
		raw, err = c.next.GenerateJSON(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *intercepted) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	var img Image
	call := Call{Kind: CallImage, Phase: PhaseFrom(ctx), Bytes: PromptBytes(req.Parts), Image: &req}
	err := c.fn(ctx, call, func(ctx context.Context) error {
		var err error
		img, err = c.next.GenerateImage(ctx, req)
		return err
	})
	if err != nil {
		return Image{}, err
	}
	return img, nil
}

// -------- Rate Limiting --------

// RateLimit spaces requests to at most rps per second with the given
// burst. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		b := newBucket(rps, burst)
		return intercept(func(ctx context.Context, _ Call, invoke func(context.Context) error) error {
			if err := b.wait(ctx); err != nil {
				return err
			}
			return invoke(ctx)
		})(next)
	}
}

// -------- Timeout --------

// Timeout bounds every request. d <= 0 disables it.
func Timeout(d time.Duration) Middleware {
	return intercept(func(ctx context.Context, _ Call, invoke func(context.Context) error) error {
		if d <= 0 {
			return invoke(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return invoke(ctx)
	})
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger
// disables logging.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return intercept(func(ctx context.Context, call Call, invoke func(context.Context) error) error {
		start := time.Now()
		logger.Debug("llm request",
			zap.String("kind", string(call.Kind)),
			zap.String("phase", call.Phase),
			zap.Int("bytes", call.Bytes))
		err := invoke(ctx)
		if err != nil {
			logger.Warn("llm error",
				zap.String("kind", string(call.Kind)),
				zap.String("phase", call.Phase),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
		return err
	})
}

// -------- Metrics --------

// Recorder receives one observation per finished request.
type Recorder interface {
	ObserveLLMCall(kind, phase string, elapsed time.Duration, err error)
}

// Instrument reports every request to rec.
func Instrument(rec Recorder) Middleware {
	return intercept(func(ctx context.Context, call Call, invoke func(context.Context) error) error {
		start := time.Now()
		err := invoke(ctx)
		if rec != nil {
			rec.ObserveLLMCall(string(call.Kind), call.Phase, time.Since(start), err)
		}
		return err
	})
}
