package scene

import (
	"fmt"
	"image/color"

	"github.com/meshy-studio/meshy/pkg/fonts"
)

// Node is one element of a scene tree: *Group, Rect, Path or Text.
type Node interface {
	node()
}

// Document is the root of a scene.
type Document struct {
	Width, Height int
	Defs          []Gradient
	Children      []Node
}

// Add appends nodes to the document root.
func (d *Document) Add(nodes ...Node) {
	d.Children = append(d.Children, nodes...)
}

// Gradient looks up a definition by id.
func (d *Document) Gradient(id string) (Gradient, bool) {
	for _, g := range d.Defs {
		if g.GradientID() == id {
			return g, true
		}
	}
	return nil, false
}

// Validate reports dangling gradient references and non-finite geometry.
func (d *Document) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid document size %dx%d", d.Width, d.Height)
	}
	var check func(nodes []Node) error
	check = func(nodes []Node) error {
		for _, n := range nodes {
			var p Paint
			switch n := n.(type) {
			case *Group:
				if err := check(n.Children); err != nil {
					return err
				}
				continue
			case Rect:
				if !finite(n.X, n.Y, n.W, n.H) {
					return fmt.Errorf("rect has non-finite geometry")
				}
				p = n.Fill
			case Path:
				for _, s := range n.Segments {
					if !finite(s.X, s.Y, s.R) {
						return fmt.Errorf("path has non-finite geometry")
					}
				}
				p = n.Fill
			case Text:
				if !finite(n.X, n.Y, n.Size) {
					return fmt.Errorf("text %q has non-finite geometry", n.Content)
				}
			}
			if p.Gradient != "" {
				if _, ok := d.Gradient(p.Gradient); !ok {
					return fmt.Errorf("unknown gradient %q", p.Gradient)
				}
			}
		}
		return nil
	}
	return check(d.Children)
}

// Group translates its children by (X, Y).
type Group struct {
	X, Y     float64
	Children []Node
}

// Add appends nodes to the group.
func (g *Group) Add(nodes ...Node) {
	g.Children = append(g.Children, nodes...)
}

// Rect is an axis-aligned filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       Paint
}

// Path is a filled outline built from segments.
type Path struct {
	Segments []Segment
	Fill     Paint
}

// Text is a single line of text positioned by its anchor and baseline.
type Text struct {
	X, Y     float64
	Content  string
	Size     float64
	Weight   fonts.Weight
	Anchor   Anchor
	Baseline Baseline
	Fill     color.NRGBA
}

func (*Group) node() {}
func (Rect) node()   {}
func (Path) node()   {}
func (Text) node()   {}

// Paint is either a solid colour or a reference to a gradient definition.
type Paint struct {
	Color    color.NRGBA
	Gradient string
}

// Solid paints with a single colour.
func Solid(c color.NRGBA) Paint { return Paint{Color: c} }

// URL paints with the gradient identified by id.
func URL(id string) Paint { return Paint{Gradient: id} }

// Anchor is the horizontal alignment of text relative to its X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

func (a Anchor) String() string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// Baseline is the vertical alignment of text relative to its Y.
type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineIdeographic
	BaselineHanging
	BaselineMiddle
)

func (b Baseline) String() string {
	switch b {
	case BaselineIdeographic:
		return "ideographic"
	case BaselineHanging:
		return "hanging"
	case BaselineMiddle:
		return "middle"
	default:
		return "alphabetic"
	}
}

// Gradient is a LinearGradient or RadialGradient definition.
type Gradient interface {
	GradientID() string
}

// Stop is a gradient colour stop. Offset is in [0,1]; Opacity multiplies the
// colour's alpha.
type Stop struct {
	Offset  float64
	Color   color.NRGBA
	Opacity float64
}

// LinearGradient runs from (X1,Y1) to (X2,Y2) in bounding-box fractions.
type LinearGradient struct {
	ID             string
	X1, Y1, X2, Y2 float64
	Stops          []Stop
}

// RadialGradient is centred on (CX,CY) with radius R, all in bounding-box
// fractions. The focal point coincides with the centre.
type RadialGradient struct {
	ID     string
	CX, CY float64
	R      float64
	Stops  []Stop
}

func (g LinearGradient) GradientID() string { return g.ID }
func (g RadialGradient) GradientID() string { return g.ID }

// Fade returns the two stops of a gradient that fades c from opaque to
// transparent.
func Fade(c color.NRGBA) []Stop {
	return []Stop{
		{Offset: 0, Color: c, Opacity: 1},
		{Offset: 1, Color: c, Opacity: 0},
	}
}

// stopColor applies the stop opacity to its colour.
func (s Stop) stopColor() color.NRGBA {
	c := s.Color
	c.A = uint8(clamp01(s.Opacity)*float64(c.A) + 0.5)
	return c
}
