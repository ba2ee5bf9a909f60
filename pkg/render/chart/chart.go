// Package chart renders bar charts.
//
// A chart is an 800x600 canvas with a 640x440 plot area offset by (80, 80).
// Bars share the plot width evenly after subtracting the gaps between them;
// heights are scaled so the largest value fills the plot height. Each bar
// has rounded top corners, its value printed inside the bottom of the bar
// and its category label below the plot.
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/fonts"
	"github.com/meshy-studio/meshy/pkg/palette"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render"
	"github.com/meshy-studio/meshy/pkg/scene"
)

// Canvas and plot geometry.
const (
	Width      = 800
	Height     = 600
	PlotX      = 80
	PlotY      = 80
	PlotWidth  = 640
	PlotHeight = 440
)

// Watermark is printed in the bottom-right corner.
const Watermark = "meshy.studio"

const gradientID = "bar-gradient"

// Bar is the computed geometry of one bar in plot coordinates.
type Bar struct {
	X, Y   float64 // top-left corner
	W, H   float64
	Radius float64 // clamped corner radius
	Point  params.Point
}

// Bars lays out the bars of p. When every value is zero all heights are
// zero.
func Bars(p params.Chart) []Bar {
	n := len(p.Data)
	if n == 0 {
		return nil
	}
	margin := p.BarMargin * PlotWidth
	width := math.Max(0, (PlotWidth-float64(n-1)*margin)/float64(n))

	var yMax float64
	for _, d := range p.Data {
		yMax = math.Max(yMax, d.Y)
	}

	bars := make([]Bar, n)
	for i, d := range p.Data {
		var h float64
		if yMax > 0 {
			h = d.Y / yMax * PlotHeight
		}
		r := math.Max(0, math.Min(p.BorderRadius, math.Min(width/2, h)))
		bars[i] = Bar{
			X:      float64(i) * (width + margin),
			Y:      PlotHeight - h,
			W:      width,
			H:      h,
			Radius: r,
			Point:  d,
		}
	}
	return bars
}

// Outline is the bar shape with only the top corners rounded.
func (b Bar) Outline(fill scene.Paint) scene.Path {
	x, y, w, h, r := b.X, b.Y, b.W, b.H, b.Radius
	var pb scene.PathBuilder
	pb.MoveTo(x+r, y).
		H(x+w-r).
		Arc(r, false, true, x+w, y+r).
		V(y+h).
		H(x).
		V(y+r).
		Arc(r, false, true, x+r, y).
		Close()
	return pb.Path(fill)
}

// theme holds the mode-dependent background and bar gradient shades.
type theme struct {
	background               string
	gradientFrom, gradientTo palette.Shade
}

func themeFor(dark bool) theme {
	if dark {
		return theme{background: "#000000", gradientFrom: palette.Shade300, gradientTo: palette.Shade500}
	}
	return theme{background: "#ffffff", gradientFrom: palette.Shade500, gradientTo: palette.Shade700}
}

// Build returns the scene for p. p must have passed params validation.
func Build(p params.Chart) *scene.Document {
	cs := themeFor(p.DarkMode)
	primary := p.PrimaryColor
	accent := palette.Color(primary, palette.Shade200)
	neutral := palette.Color("neutral", palette.Shade700)
	text, inverted := neutral, accent
	muted := palette.Color("gray", palette.Shade400)
	if p.DarkMode {
		text, inverted = accent, neutral
		muted = palette.Color("gray", palette.Shade600)
	}

	doc := &scene.Document{
		Width:  Width,
		Height: Height,
		Defs: []scene.Gradient{scene.LinearGradient{
			ID: gradientID,
			Y2: 1,
			Stops: []scene.Stop{
				{Offset: 0, Color: palette.Color(primary, cs.gradientFrom), Opacity: 1},
				{Offset: 1, Color: palette.Color(primary, cs.gradientTo), Opacity: 1},
			},
		}},
	}
	doc.Add(scene.Rect{W: Width, H: Height, Fill: scene.Solid(palette.MustParse(cs.background))})

	plot := &scene.Group{X: PlotX, Y: PlotY}
	for _, b := range Bars(p) {
		cx := b.X + b.W/2
		valueColor := inverted
		if b.Point.Y == 0 {
			valueColor = text
		}
		plot.Add(
			b.Outline(scene.URL(gradientID)),
			scene.Text{
				X: cx, Y: b.Y + b.H - 6,
				Content:  formatValue(b.Point.Y),
				Size:     20,
				Weight:   fonts.Semibold,
				Anchor:   scene.AnchorMiddle,
				Baseline: scene.BaselineIdeographic,
				Fill:     valueColor,
			},
			scene.Text{
				X: cx, Y: PlotHeight + 20,
				Content:  b.Point.X,
				Size:     16,
				Weight:   fonts.Semibold,
				Anchor:   scene.AnchorMiddle,
				Baseline: scene.BaselineHanging,
				Fill:     text,
			},
		)
	}
	doc.Add(plot)

	doc.Add(
		scene.Text{X: 10, Y: Height - 10, Content: p.Label, Size: 16, Weight: fonts.Semibold, Fill: muted},
		scene.Text{X: Width - 10, Y: Height - 10, Content: Watermark, Size: 16, Weight: fonts.Semibold, Anchor: scene.AnchorEnd, Fill: muted},
	)
	if caption := strings.TrimSpace(p.Caption); caption != "" {
		doc.Add(scene.Text{X: Width / 2, Y: 48, Content: caption, Size: 20, Weight: fonts.Bold, Anchor: scene.AnchorMiddle, Fill: text})
	}
	return doc
}

// Render draws p and encodes it as a JPEG.
func Render(p params.Chart) ([]byte, error) {
	if !palette.Has(p.PrimaryColor) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "primaryColor %q is not a palette colour", p.PrimaryColor)
	}
	doc := Build(p)
	img, err := scene.Rasterize(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterize chart")
	}
	bg := palette.MustParse(themeFor(p.DarkMode).background)
	data, err := render.EncodeJPEG(img, bg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode chart")
	}
	return data, nil
}

// formatValue prints a value the way a browser would: integers without a
// decimal point, fractions with the shortest exact representation.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
