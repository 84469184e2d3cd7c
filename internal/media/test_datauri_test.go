package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/tester"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: uint8(x), G: 132, B: 255, A: 255})
	}
	var buf bytes.Buffer
	tester.NoErr(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadRoundTripThroughNodeContent(t *testing.T) {
	raw := samplePNG(t, 64, 32)
	uri, err := ReadFile("product.png", bytes.NewReader(raw), 0)
	tester.NoErr(t, err)
	tester.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	st := graph.NewStore()
	tester.NoErr(t, st.AddNodes(graph.Node{ID: "img", Kind: graph.KindImported, Content: uri}))
	n, _ := st.Node("img")

	mimeType, back, err := Decode(n.Content)
	tester.NoErr(t, err)
	tester.Eq(t, mimeType, "image/png")
	tester.True(t, bytes.Equal(back, raw), "bytes must survive the round trip")
	tester.True(t, IsImage(n.Content))
}

func TestReadFileSniffsUnknownExtension(t *testing.T) {
	uri, err := ReadFile("blob", bytes.NewReader(samplePNG(t, 4, 4)), 0)
	tester.NoErr(t, err)
	tester.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri[:30])
}

func TestReadFileHonoursLimit(t *testing.T) {
	raw := samplePNG(t, 64, 32)
	_, err := ReadFile("product.png", bytes.NewReader(raw), int64(len(raw)-1))
	tester.Err(t, err)
	_, err = ReadFile("product.png", bytes.NewReader(raw), int64(len(raw)))
	tester.NoErr(t, err)
	tester.Eq(t, Limit(0), int64(MaxUploadBytes))
	tester.Eq(t, Limit(42), int64(42))
}

func TestDecodeRejectsNonDataURIs(t *testing.T) {
	for _, in := range []string{"", "https://x/y.png", "data:image/png,plain", "data:image/png;base64"} {
		_, _, err := Decode(in)
		tester.True(t, errors.Is(err, ErrNotDataURI), "input %q", in)
	}
	_, _, err := Decode("data:image/png;base64,@@@")
	tester.Err(t, err)
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(samplePNG(t, 64, 32))
	tester.NoErr(t, err)
	tester.Eq(t, [2]int{w, h}, [2]int{64, 32})
	tester.Eq(t, FitWidth(w, h, 320), 160.0)
	tester.Eq(t, FitWidth(0, 0, 320), 320.0)

	_, _, err = Dimensions([]byte("nope"))
	tester.Err(t, err)
}
