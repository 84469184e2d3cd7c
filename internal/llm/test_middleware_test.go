package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"adcanvas/internal/tester"
)

// scripted fails the first n JSON calls with err, then succeeds.
type scripted struct {
	mu    sync.Mutex
	fails int
	err   error
	calls int
	times []time.Time
}

func (s *scripted) Name() string { return "scripted" }
func (s *scripted) Close() error { return nil }
func (s *scripted) GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.times = append(s.times, time.Now())
	if s.calls <= s.fails {
		return nil, s.err
	}
	return json.RawMessage(`{}`), nil
}
func (s *scripted) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if _, err := s.GenerateJSON(ctx, JSONRequest{}); err != nil {
		return Image{}, err
	}
	return Image{MIMEType: "image/png", Data: []byte{1}}, nil
}

func TestRate_RPS_2PerSecond_Burst1_Spacing(t *testing.T) {
	inner := &scripted{}
	cli := Wrap(inner, RateLimit(2, 1))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cli.GenerateJSON(ctx, JSONRequest{}); err != nil {
			t.Fatal(err)
		}
	}
	gap := inner.times[1].Sub(inner.times[0])
	if gap < 400*time.Millisecond {
		t.Fatalf("expected spacing ~500ms, got %v", gap)
	}
}

func TestRate_CanceledContext(t *testing.T) {
	cli := Wrap(&scripted{}, RateLimit(0.5, 1))
	if _, err := cli.GenerateJSON(context.Background(), JSONRequest{}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cli.GenerateJSON(ctx, JSONRequest{})
	tester.True(t, errors.Is(err, context.DeadlineExceeded), "want deadline, got %v", err)
}

func TestRetry_RecoversFromTransient(t *testing.T) {
	inner := &scripted{fails: 2, err: errors.New("503 unavailable")}
	cli := Wrap(inner, Retry(3, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), JSONRequest{})
	tester.NoErr(t, err)
	tester.Eq(t, inner.calls, 3)
}

func TestRetry_StopsOnPermanent(t *testing.T) {
	inner := &scripted{fails: 5, err: NewPermanentError(errors.New("400 bad request"))}
	cli := Wrap(inner, Retry(4, time.Millisecond))
	_, err := cli.GenerateImage(context.Background(), ImageRequest{})
	tester.True(t, IsPermanent(err))
	tester.Eq(t, inner.calls, 1)
}

func TestRetry_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	inner := &scripted{fails: 10, err: boom}
	cli := Wrap(inner, Retry(2, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), JSONRequest{})
	tester.True(t, errors.Is(err, boom))
	tester.Eq(t, inner.calls, 2)
}

func TestTimeout_BoundsSlowCall(t *testing.T) {
	fake := &FakeClient{Delay: time.Second}
	cli := Wrap(fake, Timeout(20*time.Millisecond))
	start := time.Now()
	_, err := cli.GenerateImage(context.Background(), ImageRequest{})
	tester.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	tester.True(t, time.Since(start) < 500*time.Millisecond)
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	inner := &scripted{fails: 100, err: errors.New("500 internal")}
	cfg := BreakerConfig{Name: "t", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 3}
	cli := Wrap(inner, CircuitBreaker(cfg, nil))
	for i := 0; i < 3; i++ {
		_, _ = cli.GenerateJSON(context.Background(), JSONRequest{})
	}
	_, err := cli.GenerateJSON(context.Background(), JSONRequest{})
	tester.True(t, errors.Is(err, ErrCircuitOpen), "got %v", err)
	tester.Eq(t, inner.calls, 3)
}

func TestBreaker_IgnoresPermanent(t *testing.T) {
	inner := &scripted{fails: 100, err: NewPermanentError(errors.New("400"))}
	cfg := BreakerConfig{Name: "t", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 2}
	cli := Wrap(inner, CircuitBreaker(cfg, nil))
	for i := 0; i < 5; i++ {
		_, err := cli.GenerateJSON(context.Background(), JSONRequest{})
		tester.True(t, IsPermanent(err))
	}
	tester.Eq(t, inner.calls, 5)
}

type recordingHook struct {
	before, after []string
}

func (h *recordingHook) Before(_ context.Context, c Call) {
	h.before = append(h.before, string(c.Kind)+":"+c.Phase)
}
func (h *recordingHook) After(_ context.Context, c Call, err error) {
	h.after = append(h.after, string(c.Kind)+":"+c.Phase)
}

func TestHooks_SeePhaseAndKind(t *testing.T) {
	hook := &recordingHook{}
	cli := Wrap(NewFakeClient(), WithHooks(hook))
	ctx := WithPhase(context.Background(), "concepts")
	_, err := cli.GenerateJSON(ctx, JSONRequest{})
	tester.NoErr(t, err)
	_, err = cli.GenerateImage(WithPhase(context.Background(), "image"), ImageRequest{})
	tester.NoErr(t, err)
	tester.Eq(t, hook.before, []string{"json:concepts", "image:image"})
	tester.Eq(t, hook.after, hook.before)
	tester.Eq(t, PhaseFrom(context.Background()), "unknown")
}

type countingRecorder struct {
	mu   sync.Mutex
	errs int
	n    int
}

func (r *countingRecorder) ObserveLLMCall(kind, phase string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	if err != nil {
		r.errs++
	}
}

func TestInstrument_CountsCalls(t *testing.T) {
	rec := &countingRecorder{}
	cli := Wrap(&scripted{fails: 1, err: errors.New("x")}, Instrument(rec))
	_, _ = cli.GenerateJSON(context.Background(), JSONRequest{})
	_, _ = cli.GenerateJSON(context.Background(), JSONRequest{})
	tester.Eq(t, rec.n, 2)
	tester.Eq(t, rec.errs, 1)
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return intercept(func(ctx context.Context, _ Call, invoke func(context.Context) error) error {
			order = append(order, name)
			return invoke(ctx)
		})
	}
	cli := Wrap(NewFakeClient(), mark("a"), mark("b"))
	_, err := cli.GenerateJSON(context.Background(), JSONRequest{})
	tester.NoErr(t, err)
	tester.Eq(t, order, []string{"a", "b"})
}
