package mesh

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	blend "github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/seed"
)

const (
	// noiseMean is the mean of the gaussian noise layer, in 8-bit levels.
	noiseMean = 28
	// noiseSalt decorrelates the noise stream from the blob placements.
	noiseSalt = 0x9e3779b9
	// minBlur is the smallest sigma that counts as blurring.
	minBlur = 0.03
)

// Apply runs the post-processing chain on img in a fixed order: noise,
// modulate, gamma, negate, blur. Stages at their identity setting are
// skipped. Sharpen is accepted by the parameters but never applied.
func Apply(img *image.NRGBA, key string, p params.Avatar) *image.NRGBA {
	if p.Noise > 0 {
		img = overlay(img, Noise(img.Bounds(), key, p.Noise))
	}
	if !identityModulate(p) {
		img = Modulate(img, p.Brightness/100, p.Saturation/100, p.Hue, p.Lightness)
	}
	if p.GammaIn != p.GammaOut {
		img = imaging.AdjustGamma(img, p.GammaOut/p.GammaIn)
	}
	if p.Negate {
		img = imaging.Invert(img)
	}
	if BlurEnabled(p.Blur) {
		img = imaging.Blur(img, p.Blur)
	}
	return img
}

// BlurEnabled reports whether sigma is large enough to blur.
func BlurEnabled(sigma float64) bool {
	return sigma >= minBlur
}

// Noise builds an opaque layer of per-channel gaussian noise with the given
// sigma around noiseMean. The layer is deterministic for a given key.
func Noise(bounds image.Rectangle, key string, sigma float64) *image.NRGBA {
	r := seed.Mulberry32(uint32(seed.StringHash(key)) ^ noiseSalt)
	layer := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	pix := layer.Pix
	for i := 0; i < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			pix[i+c] = clamp8(noiseMean + sigma*r.NormFloat64())
		}
		pix[i+3] = 0xff
	}
	return layer
}

// overlay blends top onto base with the overlay mode: dark base channels
// are multiplied, light ones screened. Both layers are opaque and the
// same size, so the 1:1 draw samples pixel centres exactly.
func overlay(base, top *image.NRGBA) *image.NRGBA {
	dc := blend.NewContextForImage(base)
	defer dc.Close()
	dc.DrawImageEx(blend.ImageBufFromImage(top), blend.DrawImageOptions{
		Opacity:   1,
		BlendMode: blend.BlendOverlay,
	})
	return imaging.Clone(dc.Image())
}

func identityModulate(p params.Avatar) bool {
	return p.Brightness == 100 && p.Saturation == 100 && p.Hue == 0 && p.Lightness == 0
}

// Modulate adjusts every pixel in CIE LCh: lightness is scaled by
// brightness and then offset by lightness percent, chroma is scaled by
// saturation and hue is rotated by hue degrees.
func Modulate(img image.Image, brightness, saturation, hue, lightness float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		src := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		h, ch, l := src.Hcl()
		l = l*brightness + lightness/100
		ch *= saturation
		h = math.Mod(h+hue, 360)
		r, g, b := colorful.Hcl(h, ch, l).Clamped().RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: c.A}
	})
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
