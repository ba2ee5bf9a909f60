package scene

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/meshy-studio/meshy/pkg/fonts"
)

// WriteSVG serializes doc as an SVG document.
func WriteSVG(w io.Writer, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	canvas := svg.New(w)
	canvas.Startview(doc.Width, doc.Height, 0, 0, doc.Width, doc.Height)

	if len(doc.Defs) > 0 {
		canvas.Def()
		for _, g := range doc.Defs {
			switch g := g.(type) {
			case LinearGradient:
				canvas.LinearGradient(g.ID, pct(g.X1), pct(g.Y1), pct(g.X2), pct(g.Y2), offcolors(g.Stops))
			case RadialGradient:
				canvas.RadialGradient(g.ID, pct(g.CX), pct(g.CY), pct(g.R), pct(g.CX), pct(g.CY), offcolors(g.Stops))
			}
		}
		canvas.DefEnd()
	}

	writeNodes(canvas, doc.Children)
	canvas.End()
	return nil
}

// SVG returns doc serialized as SVG bytes.
func SVG(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNodes(canvas *svg.SVG, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Group:
			canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(n.X), num(n.Y)))
			writeNodes(canvas, n.Children)
			canvas.Gend()
		case Rect:
			if integral(n.X, n.Y, n.W, n.H) {
				canvas.Rect(int(n.X), int(n.Y), int(n.W), int(n.H), fillAttrs(n.Fill)...)
				continue
			}
			var b PathBuilder
			b.MoveTo(n.X, n.Y).H(n.X + n.W).V(n.Y + n.H).H(n.X).Close()
			canvas.Path(b.Path(n.Fill).D(), fillAttrs(n.Fill)...)
		case Path:
			canvas.Path(n.D(), fillAttrs(n.Fill)...)
		case Text:
			canvas.Text(int(math.Round(n.X)), int(math.Round(n.Y)), n.Content, textAttrs(n)...)
		}
	}
}

// Attributes containing '=' are written verbatim by svgo rather than folded
// into a style attribute.
func fillAttrs(p Paint) []string {
	if p.Gradient != "" {
		return []string{fmt.Sprintf(`fill="url(#%s)"`, p.Gradient)}
	}
	return colorAttrs(p.Color)
}

func colorAttrs(c color.NRGBA) []string {
	attrs := []string{fmt.Sprintf(`fill="%s"`, hex(c))}
	if c.A != 0xff {
		attrs = append(attrs, fmt.Sprintf(`fill-opacity="%s"`, num(float64(c.A)/255)))
	}
	return attrs
}

func textAttrs(t Text) []string {
	attrs := []string{
		fmt.Sprintf(`font-family="%s"`, fonts.FontFamily),
		fmt.Sprintf(`font-size="%s"`, num(t.Size)),
	}
	if t.Weight != 0 && t.Weight != fonts.Regular {
		attrs = append(attrs, fmt.Sprintf(`font-weight="%d"`, t.Weight))
	}
	if t.Anchor != AnchorStart {
		attrs = append(attrs, fmt.Sprintf(`text-anchor="%s"`, t.Anchor))
	}
	if t.Baseline != BaselineAlphabetic {
		attrs = append(attrs, fmt.Sprintf(`dominant-baseline="%s"`, t.Baseline))
	}
	return append(attrs, colorAttrs(t.Fill)...)
}

func offcolors(stops []Stop) []svg.Offcolor {
	out := make([]svg.Offcolor, len(stops))
	for i, s := range stops {
		out[i] = svg.Offcolor{Offset: pct(s.Offset), Color: hex(s.Color), Opacity: s.Opacity}
	}
	return out
}

func pct(f float64) uint8 {
	return uint8(math.Round(clamp01(f) * 100))
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func integral(vs ...float64) bool {
	for _, v := range vs {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}
