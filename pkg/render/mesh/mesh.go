// Package mesh renders seeded gradient avatars.
//
// An avatar is a 512x512 diagonal base gradient overlaid with six soft
// radial blobs. Blob centres come from a PRNG seeded by the avatar's seed
// string, so the same seed always yields the same composition. The
// rasterized image then runs through the post-processing chain in
// [Apply]: noise, modulate, gamma, negate and blur.
package mesh

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/fonts"
	"github.com/meshy-studio/meshy/pkg/palette"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render"
	"github.com/meshy-studio/meshy/pkg/scene"
	"github.com/meshy-studio/meshy/pkg/seed"
)

// Size is the width and height of an avatar.
const Size = 512

// Base gradient endpoints, top-left to bottom-right.
const (
	BaseFrom = "#cfcbe4"
	BaseTo   = "#d98ee0"
)

// Colors are the blob colours in drawing order.
var Colors = []string{"#ffffff", "#fca15e", "#5e5ce6", "#78c7ff", "#d85cf0", "#f7dea3"}

// blobRadius is the radius of every blob as a fraction of the canvas.
const blobRadius = 0.5

// Text overlay sizing.
const (
	maxFontSize  = 160
	textWidth    = Size * 0.8
	glyphAdvance = 0.62 // average advance of an uppercase bold glyph in ems
)

// Placement is the centre of one blob in whole percent of the canvas.
type Placement struct {
	Color  string
	CX, CY int
}

// Placements derives the blob centres for key. Each blob draws its x then
// its y from the seeded PRNG, both in [0, 100].
func Placements(key string) []Placement {
	r := seed.New(key)
	out := make([]Placement, len(Colors))
	for i, c := range Colors {
		cx := r.Intn(101)
		cy := r.Intn(101)
		out[i] = Placement{Color: c, CX: cx, CY: cy}
	}
	return out
}

// FontSize returns the overlay size for text: as large as fits 80% of the
// canvas width, capped at 160px.
func FontSize(text string) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return math.Min(maxFontSize, textWidth/(float64(n)*glyphAdvance))
}

// Build returns the avatar scene for key before post-processing.
func Build(key string, p params.Avatar) *scene.Document {
	doc := Gradient(key, Size, Size)

	if text := strings.ToUpper(strings.TrimSpace(p.Text)); text != "" {
		white := palette.MustParse("#ffffff")
		white.A = 230
		doc.Add(scene.Text{
			X: Size / 2, Y: Size / 2,
			Content:  text,
			Size:     FontSize(text),
			Weight:   fonts.Bold,
			Anchor:   scene.AnchorMiddle,
			Baseline: scene.BaselineMiddle,
			Fill:     white,
		})
	}
	return doc
}

// Gradient returns the base gradient and seeded blobs for key on a w by h
// canvas, without text. OG card templates reuse it at card size.
func Gradient(key string, w, h int) *scene.Document {
	doc := &scene.Document{Width: w, Height: h}
	fw, fh := float64(w), float64(h)
	doc.Defs = append(doc.Defs, scene.LinearGradient{
		ID: "base",
		X2: 1, Y2: 1,
		Stops: []scene.Stop{
			{Offset: 0, Color: palette.MustParse(BaseFrom), Opacity: 1},
			{Offset: 1, Color: palette.MustParse(BaseTo), Opacity: 1},
		},
	})
	doc.Add(scene.Rect{W: fw, H: fh, Fill: scene.URL("base")})

	for i, pl := range Placements(key) {
		id := "grad" + strconv.Itoa(i+1)
		doc.Defs = append(doc.Defs, scene.RadialGradient{
			ID:    id,
			CX:    float64(pl.CX) / 100,
			CY:    float64(pl.CY) / 100,
			R:     blobRadius,
			Stops: scene.Fade(palette.MustParse(pl.Color)),
		})
		doc.Add(scene.Rect{W: fw, H: fh, Fill: scene.URL(id)})
	}
	return doc
}

// Render draws the avatar for key, applies p's post-processing and encodes
// it as a JPEG.
func Render(key string, p params.Avatar) ([]byte, error) {
	if err := errors.ValidateSeed(key); err != nil {
		return nil, err
	}
	img, err := scene.Rasterize(Build(key, p))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterize mesh")
	}
	out := Apply(imaging.Clone(img), key, p)
	data, err := render.EncodeJPEG(out, palette.MustParse("#ffffff"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode mesh")
	}
	return data, nil
}
