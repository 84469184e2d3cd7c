package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"adcanvas/internal/llm"
	"adcanvas/internal/media"
)

var ErrNoProductImage = errors.New("product image is required")

// CloneMode says how a reference ad is used.
type CloneMode string

const (
	// CloneRecreate reproduces the reference's scene around the product.
	CloneRecreate CloneMode = "recreate"
	// CloneEdit swaps the product into the reference image directly.
	CloneEdit CloneMode = "edit"
)

// Product holds the user's assets as data URIs.
type Product struct {
	Image       string
	ReferenceAd string
	Description string
}

// ConceptParams steer a batch of concepts.
type ConceptParams struct {
	Goal   string
	Format string
	Styles []string
	Mode   CloneMode
	Count  int
}

const (
	DefaultConceptCount = 3
	DefaultInstruction  = "Merge best elements"
	remixSuffix         = ". Make this slightly different, explore a new angle or lighting variation."
)

const imageEnhancers = "award-winning advertising photography, 8k resolution, highly detailed, sharp focus, " +
	"cinematic lighting, professional color grading, commercial aesthetic, editorial quality"

const conceptSystem = `You are the creative director of a leading advertising agency.
Produce bold, high-performing ad concepts that read like expensive production shoots.
Study the attached images, avoid generic ideas, and answer with JSON only.`

const captionSystem = `You are an expert social media copywriter.
Write one caption for a social post, following the language and style instructions exactly.
Answer with JSON only.`

const combineSystem = `You are a creative strategist who merges two ad concepts into a single new one.
Answer with JSON only.`

func inline(uri string) (llm.Part, error) {
	mt, data, err := media.Decode(uri)
	if err != nil {
		return llm.Part{}, err
	}
	return llm.Inline(mt, data), nil
}

// ConceptRequest asks for params.Count concepts for the product. The
// product image is attached first, the reference ad second when present.
func ConceptRequest(p Product, params ConceptParams) (llm.JSONRequest, error) {
	if strings.TrimSpace(p.Image) == "" {
		return llm.JSONRequest{}, ErrNoProductImage
	}
	count := params.Count
	if count <= 0 {
		count = DefaultConceptCount
	}
	prod, err := inline(p.Image)
	if err != nil {
		return llm.JSONRequest{}, fmt.Errorf("product image: %w", err)
	}
	parts := []llm.Part{prod}

	var reference string
	if strings.TrimSpace(p.ReferenceAd) != "" {
		ref, err := inline(p.ReferenceAd)
		if err != nil {
			return llm.JSONRequest{}, fmt.Errorf("reference ad: %w", err)
		}
		parts = append(parts, ref)
		reference = referenceInstruction(params.Mode)
	}

	var s Sections
	s.Fields("BRIEF",
		"User context", p.Description,
		"Campaign goal", params.Goal,
		"Format", params.Format,
		"Style direction", strings.Join(params.Styles, ", "),
	)
	s.Add("REFERENCE", reference)
	s.Add("TASK", fmt.Sprintf("Generate %d distinct ad concepts.", count))
	s.List("OUTPUT",
		"headline: short, punchy and modern",
		"body: brief persuasive copy",
		"imagePrompt: a richly descriptive scene prompt (see RULES)",
		"angle: the persuasion angle, e.g. Social Proof, Scarcity, Aspiration",
		"theory: the framework applied, e.g. AIDA, PAS",
	)
	s.List("RULES",
		"Never describe only the object.",
		"Name the lighting, e.g. cinematic, volumetric, rembrandt, softbox.",
		"Name the composition, e.g. rule of thirds, negative space, macro, wide angle.",
		"Name the texture, e.g. hyper-realistic, matte, glossy.",
		"Name the mood, e.g. ethereal, gritty, sterile, cozy.",
		"For neon styles describe the neon colours and their reflections.",
		"For nature styles describe the flora and the sunlight.",
	)
	parts = append(parts, llm.Text(s.String()))

	return llm.JSONRequest{
		Tier:   llm.TierReasoning,
		System: conceptSystem,
		Parts:  parts,
		Schema: ConceptListSchema(),
		Count:  count,
	}, nil
}

func referenceInstruction(mode CloneMode) string {
	if mode == CloneEdit {
		return `Two images are attached. Image 1 is the user's product. Image 2 is a reference ad.
The product in Image 2 will be replaced by the product in Image 1 with a direct image edit.
Write headline and body copy that match the feel of Image 2.
Each imagePrompt is a plain instruction for an image editor: replace the main product with the user's product (describe it briefly) and keep lighting and background identical.`
	}
	return `Two images are attached. Image 1 is the user's product. Image 2 is a reference ad to clone.
Study Image 2 closely: layout, lighting, palette, camera angle and composition.
Every concept must recreate the scene and style of Image 2 with the user's product as the subject.
Each imagePrompt describes the environment of Image 2 with the user's product placed inside it.`
}

// ImageRequest builds the image call. In edit mode with both images set,
// the reference goes first and the product second; otherwise only the
// product (when set) is attached.
func ImageRequest(imagePrompt string, styles []string, p Product, mode CloneMode) (llm.ImageRequest, error) {
	imagePrompt = strings.TrimSpace(imagePrompt)
	if imagePrompt == "" {
		return llm.ImageRequest{}, fmt.Errorf("empty image prompt")
	}
	styleStr := strings.Join(styles, ", ")
	var parts []llm.Part
	var text string

	if mode == CloneEdit && p.ReferenceAd != "" && p.Image != "" {
		ref, err := inline(p.ReferenceAd)
		if err != nil {
			return llm.ImageRequest{}, fmt.Errorf("reference ad: %w", err)
		}
		prod, err := inline(p.Image)
		if err != nil {
			return llm.ImageRequest{}, fmt.Errorf("product image: %w", err)
		}
		parts = append(parts, ref, prod)
		text = imagePrompt + ".\n" +
			"The first image is the reference ad and the second image is the product.\n" +
			"Replace the main product in the first image with the product from the second image.\n" +
			"Keep the background, lighting and composition of the first image exactly and blend the product in seamlessly.\n" +
			"Style details: " + styleStr + ". " + imageEnhancers + "."
	} else {
		if p.Image != "" {
			prod, err := inline(p.Image)
			if err != nil {
				return llm.ImageRequest{}, fmt.Errorf("product image: %w", err)
			}
			parts = append(parts, prod)
		}
		text = imagePrompt + ".\n" +
			"The result must be a high-end ad creative featuring the product from the attached image.\n" +
			"Style details: " + styleStr + ".\n" + imageEnhancers + "."
	}
	parts = append(parts, llm.Text(text))
	return llm.ImageRequest{Parts: parts}, nil
}

// RemixPrompt asks for a variation of an existing image prompt.
func RemixPrompt(imagePrompt string) string {
	return strings.TrimSpace(imagePrompt) + remixSuffix
}

// TemplatePrompt turns a gallery template into an image prompt that swaps
// the template's subject for the attached product.
func TemplatePrompt(templatePrompt, style string) string {
	return strings.TrimSpace(templatePrompt) +
		". The main subject is the product in the attached image. Replace the original subject with this product." +
		" Match the perspective, lighting, and shadows of the environment precisely. Style: " + style + "."
}

// CaptionInput is what the copywriter sees about the source node.
type CaptionInput struct {
	Headline      string
	Body          string
	Description   string
	VisualContext string
	Language      string
	Tone          string
}

func CaptionRequest(in CaptionInput) llm.JSONRequest {
	var s Sections
	s.Fields("CONTEXT",
		"Product context", in.Description,
		"Ad headline", in.Headline,
		"Ad body", in.Body,
		"Ad visual description", in.VisualContext,
	)
	s.Add("LANGUAGE", languageInstruction(in.Language, in.Tone))
	s.Add("TASK", "Generate a single caption object with the content and its hashtags.")
	return llm.JSONRequest{
		Tier:   llm.TierCaption,
		System: captionSystem,
		Parts:  []llm.Part{llm.Text(s.String())},
		Schema: CaptionSchema(),
	}
}

func languageInstruction(language, tone string) string {
	if strings.Contains(strings.ToLower(language), "kurdish") {
		return formatList([]string{
			"Write as a native Kurdish Sorani copywriter from Sulaymaniyah or Erbil.",
			"Do not translate literally and do not sound mechanical.",
			"Use authentic local idioms, cultural references and a natural flow.",
			"Use Arabic script (Sorani).",
			"Style requirement: " + tone + ".",
			"Playful styles use slang and warm emojis, like a friend talking.",
			"Formal styles use elevated vocabulary and an expert, trustworthy tone.",
			"Marketing styles use strong AIDA, persuasive hooks and scarcity.",
		})
	}
	return formatList([]string{
		"Target language: " + language,
		"Target style: " + tone,
		"Match the requested style precisely.",
	})
}

// CombineRequest merges concepts a and b under a free-text instruction.
// An empty instruction falls back to DefaultInstruction.
func CombineRequest(a, b Concept, instruction string) (llm.JSONRequest, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	ja, err := json.Marshal(a)
	if err != nil {
		return llm.JSONRequest{}, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return llm.JSONRequest{}, err
	}
	var s Sections
	s.Add("CONCEPT_A", string(ja))
	s.Add("CONCEPT_B", string(jb))
	s.Add("INSTRUCTION", fmt.Sprintf("%q", instruction))
	s.Add("TASK", "Merge these into a single new concept JSON object.")
	s.List("RULES",
		"If either concept features a person, model or human hand, the new image prompt must include them.",
		"The product from the attached image stays the focal point.",
		"Blend the visual styles: 3D and Nature become a 3D nature scene.",
		`The imagePrompt starts with "Using the attached product image".`,
	)
	return llm.JSONRequest{
		Tier:   llm.TierReasoning,
		System: combineSystem,
		Parts:  []llm.Part{llm.Text(s.String())},
		Schema: ConceptSchema(),
	}, nil
}
