package llm

import "context"

// PromptHook observes every request made through a provider built with
// Config.Hooks.
type PromptHook interface {
	Before(ctx context.Context, call Call)
	After(ctx context.Context, call Call, err error)
}

type phaseKey struct{}

// WithPhase labels requests made with ctx, e.g. "concepts" or "image".
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

// PhaseFrom returns the label set by WithPhase, or "unknown".
func PhaseFrom(ctx context.Context) string {
	if s, ok := ctx.Value(phaseKey{}).(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// WithHooks runs hooks around each request in registration order.
func WithHooks(hooks ...PromptHook) Middleware {
	return intercept(func(ctx context.Context, call Call, invoke func(context.Context) error) error {
		for _, h := range hooks {
			h.Before(ctx, call)
		}
		err := invoke(ctx)
		for _, h := range hooks {
			h.After(ctx, call, err)
		}
		return err
	})
}
