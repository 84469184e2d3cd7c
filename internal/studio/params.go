package studio

import (
	"errors"
	"fmt"
	"strings"

	"adcanvas/internal/media"
	"adcanvas/internal/prompt"
)

var (
	ErrNeedTwoSelected      = errors.New("combine needs exactly two selected nodes")
	ErrProductImageRequired = errors.New("product image is required")
	ErrInvalidParams        = errors.New("invalid generation parameters")
	ErrNodeBusy             = errors.New("node is still generating")
	ErrNoImagePrompt        = errors.New("node has no image prompt")
	ErrTemplateNotFound     = errors.New("template not found")
)

// ProductProfile is the user's product: a required image for generation,
// an optional reference ad to clone and a free-text description. Images
// are data URIs.
type ProductProfile struct {
	Image       string `json:"image,omitempty"`
	ReferenceAd string `json:"reference_ad,omitempty"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

func (p ProductProfile) prompt() prompt.Product {
	return prompt.Product{Image: p.Image, ReferenceAd: p.ReferenceAd, Description: p.Description}
}

func (p ProductProfile) check(limit int64) error {
	for name, uri := range map[string]string{"image": p.Image, "reference_ad": p.ReferenceAd} {
		if strings.TrimSpace(uri) == "" {
			continue
		}
		if !media.IsImage(uri) {
			return fmt.Errorf("%w: %s must be an image data uri", ErrInvalidParams, name)
		}
		_, data, err := media.Decode(uri)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParams, name, err)
		}
		if int64(len(data)) > limit {
			return fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidParams, name, limit)
		}
	}
	return nil
}

// GenerationParams steer batch generation; the styles and clone mode are
// also used by remix, combine and template generation.
type GenerationParams struct {
	Goal      string           `json:"goal" validate:"required,goal"`
	Format    string           `json:"format" validate:"required,format"`
	Styles    []string         `json:"styles" validate:"min=1,dive,style"`
	CloneMode prompt.CloneMode `json:"clone_mode" validate:"required,clone_mode"`
	Count     int              `json:"count,omitempty" validate:"min=0,max=8"`
}

func DefaultParams() GenerationParams {
	return GenerationParams{
		Goal:      "Conversions",
		Format:    "Square (1:1)",
		Styles:    []string{"Cinematic Lighting"},
		CloneMode: prompt.CloneRecreate,
		Count:     prompt.DefaultConceptCount,
	}
}

func (p GenerationParams) count() int {
	if p.Count <= 0 {
		return prompt.DefaultConceptCount
	}
	return p.Count
}

// CaptionParams pick the caption language and tone.
type CaptionParams struct {
	Language string `json:"language" validate:"required,language"`
	Tone     string `json:"tone" validate:"required,tone"`
}

func DefaultCaptionParams() CaptionParams {
	return CaptionParams{Language: "English", Tone: "Professional"}
}
