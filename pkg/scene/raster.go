package scene

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/meshy-studio/meshy/pkg/fonts"
)

// Rasterize paints doc into a new image of doc.Width x doc.Height. Pixels not
// covered by any node stay transparent.
func Rasterize(doc *Document) (image.Image, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	p := &painter{
		doc:   doc,
		dc:    gg.NewContext(doc.Width, doc.Height),
		faces: make(map[faceKey]font.Face),
	}
	defer p.close()

	if err := p.paint(doc.Children, 0, 0); err != nil {
		return nil, err
	}
	return p.dc.Image(), nil
}

type faceKey struct {
	weight fonts.Weight
	size   float64
}

// painter walks the tree with an explicit offset instead of gg's transform
// matrix: gg patterns are sampled in device space, so gradient geometry must
// be resolved to device coordinates anyway.
type painter struct {
	doc   *Document
	dc    *gg.Context
	faces map[faceKey]font.Face
}

func (p *painter) paint(nodes []Node, ox, oy float64) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Group:
			if err := p.paint(n.Children, ox+n.X, oy+n.Y); err != nil {
				return err
			}
		case Rect:
			if n.W <= 0 || n.H <= 0 {
				continue
			}
			p.dc.DrawRectangle(ox+n.X, oy+n.Y, n.W, n.H)
			p.fill(n.Fill, ox+n.X, oy+n.Y, n.W, n.H)
		case Path:
			p.trace(n, ox, oy)
			bx, by, bw, bh := n.Bounds()
			p.fill(n.Fill, ox+bx, oy+by, bw, bh)
		case Text:
			if err := p.text(n, ox, oy); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *painter) trace(path Path, ox, oy float64) {
	dc := p.dc
	dc.ClearPath()
	var cx, cy, sx, sy float64
	for _, s := range path.Segments {
		switch s.Op {
		case OpMove:
			cx, cy = s.X, s.Y
			sx, sy = cx, cy
			dc.MoveTo(ox+cx, oy+cy)
		case OpLine:
			cx, cy = s.X, s.Y
			dc.LineTo(ox+cx, oy+cy)
		case OpHorizontal:
			cx = s.X
			dc.LineTo(ox+cx, oy+cy)
		case OpVertical:
			cy = s.Y
			dc.LineTo(ox+cx, oy+cy)
		case OpArc:
			if ccx, ccy, r, a0, a1, ok := arcCenter(cx, cy, s.X, s.Y, s.R, s.Large, s.Sweep); ok {
				dc.DrawArc(ox+ccx, oy+ccy, r, a0, a1)
			}
			cx, cy = s.X, s.Y
			dc.LineTo(ox+cx, oy+cy)
		case OpClose:
			dc.ClosePath()
			cx, cy = sx, sy
		}
	}
}

// fill fills the current path. Gradients are resolved against the shape's
// bounding box (bx, by, bw, bh) in device coordinates.
func (p *painter) fill(paint Paint, bx, by, bw, bh float64) {
	dc := p.dc
	if paint.Gradient == "" {
		dc.SetColor(paint.Color)
		dc.Fill()
		return
	}

	// Validate guarantees the reference resolves.
	def, _ := p.doc.Gradient(paint.Gradient)
	var g gg.Gradient
	var stops []Stop
	switch def := def.(type) {
	case LinearGradient:
		g = gg.NewLinearGradient(bx+def.X1*bw, by+def.Y1*bh, bx+def.X2*bw, by+def.Y2*bh)
		stops = def.Stops
	case RadialGradient:
		cx, cy := bx+def.CX*bw, by+def.CY*bh
		// Bounding-box units make the gradient elliptical on non-square
		// shapes; gg only draws circles, so use the mean extent.
		r := def.R * (bw + bh) / 2
		g = gg.NewRadialGradient(cx, cy, 0, cx, cy, r)
		stops = def.Stops
	}
	if len(stops) == 0 {
		dc.ClearPath()
		return
	}
	for _, s := range stops {
		g.AddColorStop(clamp01(s.Offset), s.stopColor())
	}
	dc.SetFillStyle(g)
	dc.Fill()
}

func (p *painter) text(t Text, ox, oy float64) error {
	if t.Content == "" || t.Size <= 0 {
		return nil
	}
	face, err := p.face(t.Weight, t.Size)
	if err != nil {
		return err
	}
	dc := p.dc
	dc.SetFontFace(face)
	dc.SetColor(t.Fill)

	w, _ := dc.MeasureString(t.Content)
	x := ox + t.X
	switch t.Anchor {
	case AnchorMiddle:
		x -= w / 2
	case AnchorEnd:
		x -= w
	}
	dc.DrawString(t.Content, x, oy+baseline(face, t.Y, t.Baseline))
	return nil
}

// baseline converts a y position with the given alignment into the
// alphabetic baseline gg draws on.
func baseline(face font.Face, y float64, b Baseline) float64 {
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	switch b {
	case BaselineIdeographic:
		return y - descent
	case BaselineHanging:
		return y + 0.8*ascent
	case BaselineMiddle:
		return y + (ascent-descent)/2
	default:
		return y
	}
}

func (p *painter) face(w fonts.Weight, size float64) (font.Face, error) {
	key := faceKey{weight: w, size: math.Round(size*100) / 100}
	if f, ok := p.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.Face(w, key.size)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	p.faces[key] = f
	return f, nil
}

func (p *painter) close() {
	for _, f := range p.faces {
		f.Close()
	}
}
