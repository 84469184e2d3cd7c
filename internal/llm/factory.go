package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config selects and tunes the collaborator.
type Config struct {
	// Provider is "gemini", "fake" or empty (gemini when a key is present).
	Provider string
	APIKey   string
	Models   Models

	RPS        float64
	Burst      int
	Retries    int
	RetryBase  time.Duration
	Timeout    time.Duration
	NoBreaker  bool
	BreakerCfg *BreakerConfig
	// Hooks see every request before the logging layer.
	Hooks      []PromptHook
}

// New builds the provider with the standard middleware stack:
// hooks, logging, metrics, breaker, retry, rate limit and timeout.
// A missing API key yields an unconfigured provider, not an error.
func New(ctx context.Context, cfg Config, logger *zap.Logger, rec Recorder) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var base Client
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "fake":
		base = NewFakeClient()
	case "", "gemini":
		g, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Models)
		if errors.Is(err, ErrUnconfigured) {
			logger.Warn("gemini api key missing; generation disabled")
			return Unconfigured("GEMINI_API_KEY is not set"), nil
		}
		if err != nil {
			return Provider{}, fmt.Errorf("gemini client: %w", err)
		}
		base = g
	default:
		return Provider{}, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	var mws []Middleware
	if len(cfg.Hooks) > 0 {
		mws = append(mws, WithHooks(cfg.Hooks...))
	}
	mws = append(mws, WithLogging(logger))
	if rec != nil {
		mws = append(mws, Instrument(rec))
	}
	if !cfg.NoBreaker {
		bc := DefaultBreakerConfig(base.Name())
		if cfg.BreakerCfg != nil {
			bc = *cfg.BreakerCfg
		}
		mws = append(mws, CircuitBreaker(bc, logger))
	}
	mws = append(mws,
		Retry(cfg.Retries, cfg.RetryBase),
		RateLimit(cfg.RPS, cfg.Burst),
		Timeout(cfg.Timeout),
	)
	return Configured(Wrap(base, mws...)), nil
}
