package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Dimensions decodes only the image header and returns its pixel size.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// FitWidth scales an image of w×h to the given width, keeping the aspect.
// Unknown sizes fall back to a square.
func FitWidth(w, h int, width float64) float64 {
	if w <= 0 || h <= 0 {
		return width
	}
	return width * float64(h) / float64(w)
}

// DecodeImage decodes a png, jpeg, gif or webp payload.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
