package encoder

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// maxImageEdge bounds the longer image side before upload. Embedding models
// work on small face crops; shipping multi-megapixel frames is waste.
const maxImageEdge = 1280

// PrepareImage validates that data decodes as an image and downscales it so
// the longer edge fits within maxImageEdge, keeping aspect ratio.
// Undecodable input fails with ErrInvalidImage. The result is always JPEG
// so the upload format is consistent regardless of the source.
func PrepareImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxImageEdge && height <= maxImageEdge {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("encoding image: %w", err)
		}
		return buf.Bytes(), nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxImageEdge
		newHeight = int(float64(height) * float64(maxImageEdge) / float64(width))
	} else {
		newHeight = maxImageEdge
		newWidth = int(float64(width) * float64(maxImageEdge) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encoding resized image: %w", err)
	}
	return buf.Bytes(), nil
}
