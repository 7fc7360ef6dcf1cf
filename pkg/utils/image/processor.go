package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
)

const photoQuality = 85

// ToWebP decodes a jpeg/png/webp photo and re-encodes it as lossy webp.
// Returns the encoded buffer and its content type.
func ToWebP(src io.Reader) (*bytes.Buffer, string, error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %v", err)
	}

	switch format {
	case "jpeg", "png", "webp":
	default:
		return nil, "", fmt.Errorf("unsupported image format: %s", format)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: photoQuality}); err != nil {
		return nil, "", fmt.Errorf("could not encode image: %v", err)
	}

	return buf, "image/webp", nil
}
