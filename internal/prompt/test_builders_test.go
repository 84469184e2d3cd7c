package prompt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	"adcanvas/internal/tester"
)

func productURI() string { return media.Encode("image/png", llm.FakePNG()) }

func refURI() string { return media.Encode("image/jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}) }

func lastText(parts []llm.Part) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1].Text
}

func TestConceptRequest_RequiresProductImage(t *testing.T) {
	_, err := ConceptRequest(Product{}, ConceptParams{})
	tester.True(t, errors.Is(err, ErrNoProductImage))
}

func TestConceptRequest_AttachesImagesInOrder(t *testing.T) {
	req, err := ConceptRequest(Product{Image: productURI(), ReferenceAd: refURI(), Description: "cold brew"},
		ConceptParams{Goal: "Conversions", Format: "Square (1:1)", Styles: []string{"Neon", "Minimalist"}, Mode: CloneEdit})
	tester.NoErr(t, err)
	tester.Len(t, req.Parts, 3)
	tester.Eq(t, req.Parts[0].Inline.MIMEType, "image/png")
	tester.Eq(t, req.Parts[1].Inline.MIMEType, "image/jpeg")
	tester.Eq(t, req.Count, DefaultConceptCount)
	tester.Eq(t, req.Tier, llm.TierReasoning)
	tester.Eq(t, req.Schema.Type, llm.TypeArray)

	txt := lastText(req.Parts)
	for _, want := range []string{"[BRIEF]", "User context: cold brew", "Style direction: Neon, Minimalist", "direct image edit", "Generate 3 distinct ad concepts."} {
		tester.True(t, strings.Contains(txt, want), "missing %q in %s", want, txt)
	}
}

func TestConceptRequest_RecreateReference(t *testing.T) {
	req, err := ConceptRequest(Product{Image: productURI(), ReferenceAd: refURI()}, ConceptParams{Mode: CloneRecreate, Count: 5})
	tester.NoErr(t, err)
	tester.Eq(t, req.Count, 5)
	tester.True(t, strings.Contains(lastText(req.Parts), "reference ad to clone"))
}

func TestConceptRequest_NoReferenceSection(t *testing.T) {
	req, err := ConceptRequest(Product{Image: productURI()}, ConceptParams{})
	tester.NoErr(t, err)
	tester.Len(t, req.Parts, 2)
	tester.False(t, strings.Contains(lastText(req.Parts), "[REFERENCE]"))
	tester.False(t, strings.Contains(lastText(req.Parts), "User context"))
}

func TestImageRequest_EditPutsReferenceFirst(t *testing.T) {
	req, err := ImageRequest("a bottle on ice", []string{"Neon"}, Product{Image: productURI(), ReferenceAd: refURI()}, CloneEdit)
	tester.NoErr(t, err)
	tester.Len(t, req.Parts, 3)
	tester.Eq(t, req.Parts[0].Inline.MIMEType, "image/jpeg")
	tester.Eq(t, req.Parts[1].Inline.MIMEType, "image/png")
	tester.True(t, strings.HasPrefix(lastText(req.Parts), "a bottle on ice."))
	tester.True(t, strings.Contains(lastText(req.Parts), "Style details: Neon."))
}

func TestImageRequest_RecreateOnlyProduct(t *testing.T) {
	req, err := ImageRequest("x", nil, Product{Image: productURI(), ReferenceAd: refURI()}, CloneRecreate)
	tester.NoErr(t, err)
	tester.Len(t, req.Parts, 2)
	tester.Eq(t, req.Parts[0].Inline.MIMEType, "image/png")

	req, err = ImageRequest("x", nil, Product{}, CloneRecreate)
	tester.NoErr(t, err)
	tester.Len(t, req.Parts, 1)

	_, err = ImageRequest("  ", nil, Product{}, CloneRecreate)
	tester.Err(t, err)
}

func TestCaptionRequest_Kurdish(t *testing.T) {
	req := CaptionRequest(CaptionInput{Headline: "H", Language: "Kurdish (Sorani)", Tone: "Playful/Joyful"})
	txt := lastText(req.Parts)
	tester.True(t, strings.Contains(txt, "Sorani"))
	tester.True(t, strings.Contains(txt, "Style requirement: Playful/Joyful."))
	tester.Eq(t, req.Tier, llm.TierCaption)

	req = CaptionRequest(CaptionInput{Language: "English", Tone: "Professional"})
	txt = lastText(req.Parts)
	tester.True(t, strings.Contains(txt, "Target language: English"))
	tester.True(t, strings.Contains(txt, "Target style: Professional"))
}

func TestCombineRequest_DefaultInstruction(t *testing.T) {
	req, err := CombineRequest(Concept{Headline: "A"}, Concept{Headline: "B"}, "")
	tester.NoErr(t, err)
	txt := lastText(req.Parts)
	tester.True(t, strings.Contains(txt, `"Merge best elements"`))
	tester.True(t, strings.Contains(txt, `"headline":"A"`))
	tester.Eq(t, req.Schema.Type, llm.TypeObject)
}

func TestRemixAndTemplatePrompts(t *testing.T) {
	tester.Eq(t, RemixPrompt("sunset"), "sunset. Make this slightly different, explore a new angle or lighting variation.")
	p := TemplatePrompt("A marble podium", "Luxury Gold")
	tester.True(t, strings.HasPrefix(p, "A marble podium. The main subject"))
	tester.True(t, strings.HasSuffix(p, "Style: Luxury Gold."))
}

func TestParseAndCaptionText(t *testing.T) {
	cs, err := ParseConcepts(json.RawMessage(`[{"headline":"h","body":"b","imagePrompt":"p","angle":"a","theory":"t"}]`))
	tester.NoErr(t, err)
	tester.Len(t, cs, 1)
	tester.Eq(t, cs[0].ImagePrompt, "p")

	_, err = ParseConcepts(json.RawMessage(`{"oops":1}`))
	tester.True(t, errors.Is(err, llm.ErrInvalidJSON))

	c, err := ParseCaption(json.RawMessage(`{"content":"Hello","hashtags":["#a","b"]}`))
	tester.NoErr(t, err)
	tester.Eq(t, c.Text(), "Hello\n\n#a #b")

	_, err = ParseCaption(json.RawMessage(`{"content":"","hashtags":[]}`))
	tester.True(t, errors.Is(err, llm.ErrNoText))
}
