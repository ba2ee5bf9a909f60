package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the encoder quality for every served image.
const JPEGQuality = 90

// ContentType is the MIME type of EncodeJPEG output.
const ContentType = "image/jpeg"

// Flatten composites img over an opaque background. JPEG has no alpha
// channel, so transparent pixels would otherwise encode as black.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(dst, img, image.Pt(0, 0), 1.0)
}

// EncodeJPEG flattens img onto bg and encodes it as a JPEG.
func EncodeJPEG(img image.Image, bg color.Color) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Flatten(img, bg), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
