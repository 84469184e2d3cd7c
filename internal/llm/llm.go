// Package llm is the client side of the generative-AI collaborator: a small
// Client interface, the Gemini implementation, a fake for offline use and a
// stack of middlewares (retry, rate limit, circuit breaker, logging, hooks,
// metrics) composed with Wrap.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON  = errors.New("invalid json from LLM")
	ErrNoText       = errors.New("no text in LLM response")
	ErrNoImage      = errors.New("no image in LLM response")
	ErrUnconfigured = errors.New("llm client is not configured")
)

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked as not retryable.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Tier selects which text model serves a JSON request.
type Tier string

const (
	TierReasoning Tier = "reasoning"
	TierCaption   Tier = "caption"
)

// Blob is inline binary data attached to a request or returned by it.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one element of a request: text or an inline blob.
type Part struct {
	Text   string
	Inline *Blob
}

func Text(s string) Part { return Part{Text: s} }

func Inline(mimeType string, data []byte) Part {
	return Part{Inline: &Blob{MIMEType: mimeType, Data: data}}
}

type SchemaType string

const (
	TypeString SchemaType = "string"
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
)

// Schema describes the JSON shape a text call must answer with.
type Schema struct {
	Type       SchemaType
	Properties map[string]*Schema
	Items      *Schema
	Required   []string
}

// JSONRequest asks a text model for structured output.
type JSONRequest struct {
	Tier   Tier
	System string
	Parts  []Part
	Schema *Schema
	// Count is the number of items expected when Schema is an array.
	Count int
}

// ImageRequest asks the image model for one picture.
type ImageRequest struct {
	Parts []Part
}

// Image is the first inline image of a response.
type Image = Blob

// Client is the generative-AI collaborator.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error)
	GenerateImage(ctx context.Context, req ImageRequest) (Image, error)
	Close() error
}

// PromptBytes is a rough request size used for logging.
func PromptBytes(parts []Part) int {
	n := 0
	for _, p := range parts {
		n += len(p.Text)
		if p.Inline != nil {
			n += len(p.Inline.Data)
		}
	}
	return n
}
