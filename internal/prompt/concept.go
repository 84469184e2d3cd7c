// Package prompt builds the requests sent to the AI collaborator and parses
// what comes back.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"adcanvas/internal/llm"
)

// Concept is one ad idea produced by the reasoning model.
type Concept struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	ImagePrompt string `json:"imagePrompt"`
	Angle       string `json:"angle"`
	Theory      string `json:"theory"`
}

// Caption is the copywriting model's answer.
type Caption struct {
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// Text joins the caption body and its hashtags the way it is shown on a
// caption card.
func (c Caption) Text() string {
	tags := make([]string, 0, len(c.Hashtags))
	for _, h := range c.Hashtags {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		tags = append(tags, h)
	}
	body := strings.TrimSpace(c.Content)
	if len(tags) == 0 {
		return body
	}
	return body + "\n\n" + strings.Join(tags, " ")
}

var conceptFields = []string{"headline", "body", "imagePrompt", "angle", "theory"}

// ConceptSchema is the object schema for one concept.
func ConceptSchema() *llm.Schema {
	props := make(map[string]*llm.Schema, len(conceptFields))
	for _, f := range conceptFields {
		props[f] = &llm.Schema{Type: llm.TypeString}
	}
	return &llm.Schema{Type: llm.TypeObject, Properties: props, Required: append([]string(nil), conceptFields...)}
}

func ConceptListSchema() *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Items: ConceptSchema()}
}

func CaptionSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"content":  {Type: llm.TypeString},
			"hashtags": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		},
		Required: []string{"content", "hashtags"},
	}
}

// ParseConcepts decodes an array answer. Concepts without an image prompt
// are kept; callers decide what to do with them.
func ParseConcepts(raw json.RawMessage) ([]Concept, error) {
	var out []Concept
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: concepts: %v", llm.ErrInvalidJSON, err)
	}
	return out, nil
}

func ParseConcept(raw json.RawMessage) (Concept, error) {
	var out Concept
	if err := json.Unmarshal(raw, &out); err != nil {
		return Concept{}, fmt.Errorf("%w: concept: %v", llm.ErrInvalidJSON, err)
	}
	return out, nil
}

func ParseCaption(raw json.RawMessage) (Caption, error) {
	var out Caption
	if err := json.Unmarshal(raw, &out); err != nil {
		return Caption{}, fmt.Errorf("%w: caption: %v", llm.ErrInvalidJSON, err)
	}
	if strings.TrimSpace(out.Content) == "" {
		return Caption{}, llm.ErrNoText
	}
	return out, nil
}
