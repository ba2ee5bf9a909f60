package scene

import (
	"math"
	"strconv"
	"strings"
)

// Op is a path command.
type Op int

const (
	OpMove Op = iota
	OpLine
	OpHorizontal
	OpVertical
	OpArc
	OpClose
)

// Segment is one absolute path command. OpHorizontal uses only X and
// OpVertical only Y. Arcs are circular with radius R.
type Segment struct {
	Op           Op
	X, Y         float64
	R            float64
	Large, Sweep bool
}

// PathBuilder accumulates segments with the same vocabulary as SVG path data.
type PathBuilder struct {
	segs []Segment
}

func (b *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpMove, X: x, Y: y})
	return b
}

func (b *PathBuilder) LineTo(x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpLine, X: x, Y: y})
	return b
}

func (b *PathBuilder) H(x float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpHorizontal, X: x})
	return b
}

func (b *PathBuilder) V(y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpVertical, Y: y})
	return b
}

// Arc adds a circular arc of radius r ending at (x, y).
func (b *PathBuilder) Arc(r float64, large, sweep bool, x, y float64) *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpArc, R: r, Large: large, Sweep: sweep, X: x, Y: y})
	return b
}

func (b *PathBuilder) Close() *PathBuilder {
	b.segs = append(b.segs, Segment{Op: OpClose})
	return b
}

// Path returns the accumulated outline filled with p.
func (b *PathBuilder) Path(p Paint) Path {
	return Path{Segments: append([]Segment(nil), b.segs...), Fill: p}
}

// D renders the segments as SVG path data.
func (p Path) D() string {
	var sb strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s.Op {
		case OpMove:
			sb.WriteString("M " + num(s.X) + "," + num(s.Y))
		case OpLine:
			sb.WriteString("L " + num(s.X) + "," + num(s.Y))
		case OpHorizontal:
			sb.WriteString("H " + num(s.X))
		case OpVertical:
			sb.WriteString("V " + num(s.Y))
		case OpArc:
			r := num(s.R)
			sb.WriteString("A " + r + "," + r + " 0 " + flag(s.Large) + " " + flag(s.Sweep) + " " + num(s.X) + "," + num(s.Y))
		case OpClose:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

// Bounds returns the bounding box of the path's vertices. Arc bulges are not
// included, which is exact for quarter-circle corners.
func (p Path) Bounds() (x, y, w, h float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var cx, cy float64
	for _, s := range p.Segments {
		switch s.Op {
		case OpMove, OpLine, OpArc:
			cx, cy = s.X, s.Y
		case OpHorizontal:
			cx = s.X
		case OpVertical:
			cy = s.Y
		case OpClose:
			continue
		}
		minX, maxX = math.Min(minX, cx), math.Max(maxX, cx)
		minY, maxY = math.Min(minY, cy), math.Max(maxY, cy)
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX - minX, maxY - minY
}

// arcCenter converts an SVG endpoint arc with circular radius r into centre
// parameterization. ok is false when the arc degenerates into a line.
func arcCenter(x0, y0, x1, y1, r float64, large, sweep bool) (cx, cy, radius, a0, a1 float64, ok bool) {
	if r == 0 || (x0 == x1 && y0 == y1) {
		return 0, 0, 0, 0, 0, false
	}
	r = math.Abs(r)

	hx, hy := (x0-x1)/2, (y0-y1)/2
	d2 := hx*hx + hy*hy
	r2 := r * r
	if r2 < d2 {
		r2 = d2
		r = math.Sqrt(d2)
	}

	coef := math.Sqrt(math.Max(0, (r2-d2)/d2))
	if large == sweep {
		coef = -coef
	}
	pcx, pcy := coef*hy, -coef*hx

	cx = pcx + (x0+x1)/2
	cy = pcy + (y0+y1)/2
	a0 = math.Atan2((hy-pcy)/r, (hx-pcx)/r)
	a1 = math.Atan2((-hy-pcy)/r, (-hx-pcx)/r)

	delta := a1 - a0
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}
	return cx, cy, r, a0, a0 + delta, true
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
