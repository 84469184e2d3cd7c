package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Models names the Gemini model used per call kind.
type Models struct {
	Reasoning string
	Caption   string
	Image     string
}

func DefaultModels() Models {
	return Models{
		Reasoning: "gemini-flash-latest",
		Caption:   "gemini-3-flash-preview",
		Image:     "gemini-2.5-flash-image",
	}
}

func (m Models) withDefaults() Models {
	d := DefaultModels()
	if strings.TrimSpace(m.Reasoning) == "" {
		m.Reasoning = d.Reasoning
	}
	if strings.TrimSpace(m.Caption) == "" {
		m.Caption = d.Caption
	}
	if strings.TrimSpace(m.Image) == "" {
		m.Image = d.Image
	}
	return m
}

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, retries, logging, hooks) are applied via Middleware.
type GeminiClient struct {
	cli    *genai.Client
	models Models
}

func NewGeminiClient(ctx context.Context, apiKey string, models Models) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnconfigured
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, models: models.withDefaults()}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.models.Reasoning }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) model(t Tier) string {
	if t == TierCaption {
		return g.models.Caption
	}
	return g.models.Reasoning
}

// GenerateJSON asks for application/json constrained by req.Schema and
// returns the model's text as json.RawMessage.
func (g *GeminiClient) GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error) {
	if len(req.Parts) == 0 {
		return nil, NewPermanentError(fmt.Errorf("empty prompt"))
	}
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if s := strings.TrimSpace(req.System); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if req.Schema != nil {
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model(req.Tier), toContents(req.Parts), cfg)
	if err != nil {
		return nil, classify(err)
	}
	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return nil, ErrNoText
	}
	if !json.Valid([]byte(txt)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(txt), nil
}

// GenerateImage returns the first inline image part of the response.
func (g *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if len(req.Parts) == 0 {
		return Image{}, NewPermanentError(fmt.Errorf("empty prompt"))
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.models.Image, toContents(req.Parts), nil)
	if err != nil {
		return Image{}, classify(err)
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return Image{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}, nil
			}
		}
		break
	}
	return Image{}, ErrNoImage
}

func toContents(parts []Part) []*genai.Content {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Inline != nil {
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: p.Inline.MIMEType, Data: p.Inline.Data}})
			continue
		}
		if p.Text != "" {
			out = append(out, &genai.Part{Text: p.Text})
		}
	}
	return []*genai.Content{{Role: "user", Parts: out}}
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Required: s.Required}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeArray:
		out.Type = genai.TypeArray
	default:
		out.Type = genai.TypeString
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}
	return out
}

// classify marks request errors that retrying cannot fix.
func classify(err error) error {
	msg := err.Error()
	for _, status := range []string{"INVALID_ARGUMENT", "PERMISSION_DENIED", "UNAUTHENTICATED", "NOT_FOUND", "FAILED_PRECONDITION"} {
		if strings.Contains(msg, status) {
			return NewPermanentError(err)
		}
	}
	return err
}
