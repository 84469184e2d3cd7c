package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"adcanvas/internal/tester"
)

func TestProvider_Unconfigured(t *testing.T) {
	p := Unconfigured("")
	_, ok := p.Client()
	tester.False(t, ok)
	tester.Eq(t, p.Reason(), "no credentials")
	tester.Eq(t, p.Name(), "unconfigured")
	tester.NoErr(t, p.Close())

	tester.False(t, Configured(nil).Configured())
}

func TestNew_MissingKeyIsUnconfigured(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: "gemini"}, nil, nil)
	tester.NoErr(t, err)
	tester.False(t, p.Configured())
	tester.True(t, p.Reason() != "")
}

func TestNew_FakeProvider(t *testing.T) {
	p, err := New(context.Background(), Config{Provider: "fake", Retries: 1}, nil, nil)
	tester.NoErr(t, err)
	cli, ok := p.Client()
	tester.True(t, ok)
	img, err := cli.GenerateImage(context.Background(), ImageRequest{Parts: []Part{Text("x")}})
	tester.NoErr(t, err)
	tester.Eq(t, img.MIMEType, "image/png")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "nope"}, nil, nil)
	tester.Err(t, err)
}

func TestFake_ArrayHonoursCount(t *testing.T) {
	f := NewFakeClient()
	raw, err := f.GenerateJSON(context.Background(), JSONRequest{
		Schema: &Schema{Type: TypeArray, Items: &Schema{Type: TypeObject}},
		Count:  5,
	})
	tester.NoErr(t, err)
	var items []map[string]string
	tester.NoErr(t, json.Unmarshal(raw, &items))
	tester.Len(t, items, 5)
	tester.True(t, items[0]["imagePrompt"] != "")
	tester.Eq(t, f.JSONCalls(), 1)
}

func TestFake_CaptionShape(t *testing.T) {
	f := NewFakeClient()
	raw, err := f.GenerateJSON(context.Background(), JSONRequest{
		Schema: &Schema{Type: TypeObject, Properties: map[string]*Schema{
			"content":  {Type: TypeString},
			"hashtags": {Type: TypeArray, Items: &Schema{Type: TypeString}},
		}},
	})
	tester.NoErr(t, err)
	var cap struct {
		Content  string   `json:"content"`
		Hashtags []string `json:"hashtags"`
	}
	tester.NoErr(t, json.Unmarshal(raw, &cap))
	tester.True(t, cap.Content != "")
	tester.Len(t, cap.Hashtags, 2)
}

func TestFake_DelayHonoursCancel(t *testing.T) {
	f := &FakeClient{Delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.GenerateImage(ctx, ImageRequest{})
	tester.True(t, errors.Is(err, context.Canceled))
	tester.Eq(t, f.ImageCalls(), 1)
}

func TestClassify_PermanentStatuses(t *testing.T) {
	tester.True(t, IsPermanent(classify(errors.New("Error 400, INVALID_ARGUMENT: bad"))))
	tester.False(t, IsPermanent(classify(errors.New("Error 503, UNAVAILABLE"))))
}

func TestGenaiSchema_Nested(t *testing.T) {
	s := toGenaiSchema(&Schema{Type: TypeArray, Items: &Schema{
		Type:       TypeObject,
		Properties: map[string]*Schema{"headline": {Type: TypeString}},
		Required:   []string{"headline"},
	}})
	tester.True(t, s.Items != nil)
	tester.Eq(t, s.Items.Required, []string{"headline"})
	tester.True(t, s.Items.Properties["headline"] != nil)
}
