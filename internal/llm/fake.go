package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"time"
)

// FakeClient returns deterministic payloads for offline use and tests.
// JSON answers follow the request schema: arrays yield Count concept
// objects, objects with a "hashtags" property yield a caption, other
// objects yield one concept. Images are a small solid PNG.
type FakeClient struct {
	// Delay is applied to every call and honours cancellation.
	Delay time.Duration
	// JSONFunc and ImageFunc override the default answers when set.
	JSONFunc  func(ctx context.Context, req JSONRequest) (json.RawMessage, error)
	ImageFunc func(ctx context.Context, req ImageRequest) (Image, error)

	jsonCalls  atomic.Int64
	imageCalls atomic.Int64
}

var _ Client = (*FakeClient)(nil)

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) JSONCalls() int  { return int(f.jsonCalls.Load()) }
func (f *FakeClient) ImageCalls() int { return int(f.imageCalls.Load()) }

func (f *FakeClient) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *FakeClient) GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error) {
	n := f.jsonCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.JSONFunc != nil {
		return f.JSONFunc(ctx, req)
	}
	s := req.Schema
	switch {
	case s != nil && s.Type == TypeArray:
		count := req.Count
		if count <= 0 {
			count = 3
		}
		items := make([]map[string]string, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, fakeConcept(fmt.Sprintf("%d.%d", n, i+1)))
		}
		return json.Marshal(items)
	case s != nil && s.Properties["hashtags"] != nil:
		return json.Marshal(map[string]any{
			"content":  "Fresh drop, same great feel. Tap to see more.",
			"hashtags": []string{"#NewIn", "#Design"},
		})
	default:
		return json.Marshal(fakeConcept(fmt.Sprintf("%d", n)))
	}
}

func fakeConcept(tag string) map[string]string {
	return map[string]string{
		"headline":    "Concept " + tag,
		"body":        "Fake body copy " + tag,
		"imagePrompt": "Product on a clean studio set, softbox lighting, variant " + tag,
		"angle":       "Aspiration",
		"theory":      "AIDA",
	}
}

func (f *FakeClient) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	f.imageCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return Image{}, err
	}
	if f.ImageFunc != nil {
		return f.ImageFunc(ctx, req)
	}
	return Image{MIMEType: "image/png", Data: FakePNG()}, nil
}

var (
	fakePNGOnce sync.Once
	fakePNG     []byte
)

// FakePNG is an 8x8 solid PNG.
func FakePNG() []byte {
	fakePNGOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, color.RGBA{R: 0, G: 132, B: 255, A: 255})
			}
		}
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		fakePNG = buf.Bytes()
	})
	return append([]byte(nil), fakePNG...)
}
