package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestEncodeJPEG(t *testing.T) {
	img := imaging.New(16, 8, color.NRGBA{R: 200, A: 255})
	data, err := EncodeJPEG(img, color.White)
	if err != nil {
		t.Fatalf("EncodeJPEG() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Fatal("output is not a JPEG")
	}
	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.Bounds().Size(); got != image.Pt(16, 8) {
		t.Errorf("size = %v, want 16x8", got)
	}
}

func TestFlattenTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	out := Flatten(img, color.White)
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("transparent pixel flattened to %v, want white", got)
	}
}
