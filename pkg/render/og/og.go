// Package og renders Open Graph cards.
//
// A card is a 1200x630 template image with three text layers composited on
// top at a fixed left offset: branding, title and description. Templates
// are looked up by name and colour mode through an [assets.Store]; they are
// never substituted when missing. [GenerateTemplates] draws the stock
// template set.
package og

import (
	"context"
	"image"
	"image/color"
	"math"
	"unicode/utf16"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/fonts"
	"github.com/meshy-studio/meshy/pkg/palette"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render"
)

// Card dimensions.
const (
	Width  = 1200
	Height = 630
)

// Text placement.
const (
	TextX        = 80
	TextWidth    = 600
	BrandingY    = 200
	TitleY       = 280
	DescriptionY = 360

	// LongTitle is the title length in UTF-16 code units above which the title is expected to wrap
	// and the description moves down by DescriptionMargin.
	LongTitle         = 36
	DescriptionMargin = 56
)

const (
	bodySize    = 24
	titleSize   = 34
	lineSpacing = 1.4
)

// Layer is one block of wrapped text placed on the card.
type Layer struct {
	Text   string
	X, Y   int
	Size   float64
	Weight fonts.Weight
	Color  color.NRGBA
}

// Layers are the three text blocks of a card.
type Layers struct {
	Branding    Layer
	Title       Layer
	Description Layer
}

// All returns the layers in drawing order.
func (l Layers) All() []Layer {
	return []Layer{l.Branding, l.Title, l.Description}
}

// TemplateFile returns the asset name for template in the given mode.
func TemplateFile(template string, dark bool) string {
	if dark {
		return template + "-dark.jpg"
	}
	return template + "-light.jpg"
}

// Layout places p's text.
func Layout(p params.OG) Layers {
	title, body := palette.Color("gray", palette.Shade800), palette.Color("gray", palette.Shade700)
	if p.DarkMode {
		title, body = palette.Color("gray", palette.Shade200), palette.Color("gray", palette.Shade300)
	}

	descY := DescriptionY
	if len(utf16.Encode([]rune(p.Title))) > LongTitle {
		descY += DescriptionMargin
	}

	return Layers{
		Branding: Layer{
			Text: p.Branding, X: TextX, Y: BrandingY,
			Size: bodySize, Weight: fonts.Semibold, Color: body,
		},
		Title: Layer{
			Text: p.Title, X: TextX, Y: TitleY,
			Size: titleSize, Weight: fonts.Bold, Color: title,
		},
		Description: Layer{
			Text: p.Description, X: TextX, Y: descY,
			Size: bodySize, Weight: fonts.Regular, Color: body,
		},
	}
}

// Renderer composites cards over templates from a store.
type Renderer struct {
	assets *assets.Store
}

// NewRenderer returns a renderer reading templates from store.
func NewRenderer(store *assets.Store) *Renderer {
	return &Renderer{assets: store}
}

// Render draws the card for p and encodes it as a JPEG.
func (r *Renderer) Render(ctx context.Context, p params.OG) ([]byte, error) {
	bg, err := r.assets.Template(ctx, TemplateFile(p.Template, p.DarkMode))
	if err != nil {
		return nil, err
	}

	card := imaging.Clone(bg)
	for _, l := range Layout(p).All() {
		if l.Text == "" {
			continue
		}
		img, err := DrawLayer(l)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "draw text")
		}
		card = imaging.Overlay(card, img, image.Pt(l.X, l.Y), 1.0)
	}

	data, err := render.EncodeJPEG(card, color.Black)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode card")
	}
	return data, nil
}

// DrawLayer renders l's text word-wrapped to TextWidth on a transparent
// image whose top edge is the top of the first line.
func DrawLayer(l Layer) (image.Image, error) {
	face, err := fonts.Face(l.Weight, l.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	lines := measure.WordWrap(l.Text, TextWidth)
	lineHeight := float64(face.Metrics().Height) / 64
	h := float64(len(lines))*lineHeight*lineSpacing - (lineSpacing-1)*lineHeight
	descent := float64(face.Metrics().Descent) / 64

	dc := gg.NewContext(TextWidth, int(math.Ceil(h+descent)))
	dc.SetFontFace(face)
	dc.SetColor(l.Color)
	dc.DrawStringWrapped(l.Text, 0, 0, 0, 0, TextWidth, lineSpacing, gg.AlignLeft)
	return dc.Image(), nil
}
