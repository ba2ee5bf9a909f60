package scene

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}
)

func TestPathD(t *testing.T) {
	var b PathBuilder
	b.MoveTo(8, 0).H(92).Arc(8, false, true, 100, 8).V(440).H(0).V(8).Arc(8, false, true, 8, 0).Close()

	want := "M 8,0 H 92 A 8,8 0 0 1 100,8 V 440 H 0 V 8 A 8,8 0 0 1 8,0 Z"
	if got := b.Path(Solid(red)).D(); got != want {
		t.Errorf("D() = %q, want %q", got, want)
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		8:        "8",
		12.5:     "12.5",
		1.0 / 3:  "0.33",
		-0.001:   "0",
		213.3333: "213.33",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPathBounds(t *testing.T) {
	var b PathBuilder
	b.MoveTo(18, 40).H(82).Arc(8, false, true, 90, 48).V(200).H(10).V(48).Arc(8, false, true, 18, 40).Close()

	x, y, w, h := b.Path(Solid(red)).Bounds()
	if x != 10 || y != 40 || w != 80 || h != 160 {
		t.Errorf("Bounds() = (%v, %v, %v, %v), want (10, 40, 80, 160)", x, y, w, h)
	}
}

func TestArcCenter(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		wantCX, wantCY float64
		wantA0, wantA1 float64
	}{
		{"top-right corner", 92, 0, 100, 8, 92, 8, -math.Pi / 2, 0},
		{"top-left corner", 0, 8, 8, 0, 8, 8, math.Pi, 3 * math.Pi / 2},
	}
	const eps = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy, r, a0, a1, ok := arcCenter(tt.x0, tt.y0, tt.x1, tt.y1, 8, false, true)
			if !ok {
				t.Fatal("arcCenter() reported degenerate arc")
			}
			if math.Abs(cx-tt.wantCX) > eps || math.Abs(cy-tt.wantCY) > eps || r != 8 {
				t.Errorf("centre = (%v, %v, r=%v), want (%v, %v, r=8)", cx, cy, r, tt.wantCX, tt.wantCY)
			}
			if math.Abs(a0-tt.wantA0) > eps || math.Abs(a1-tt.wantA1) > eps {
				t.Errorf("angles = (%v, %v), want (%v, %v)", a0, a1, tt.wantA0, tt.wantA1)
			}
		})
	}
}

func TestArcCenterDegenerate(t *testing.T) {
	if _, _, _, _, _, ok := arcCenter(0, 0, 10, 10, 0, false, true); ok {
		t.Error("zero radius should degenerate")
	}
	if _, _, _, _, _, ok := arcCenter(5, 5, 5, 5, 3, false, true); ok {
		t.Error("coincident endpoints should degenerate")
	}
	// A radius too small for the chord is scaled up, never NaN.
	_, _, r, a0, a1, ok := arcCenter(0, 0, 10, 0, 1, false, true)
	if !ok || r != 5 || math.IsNaN(a0) || math.IsNaN(a1) {
		t.Errorf("scaled arc = r %v angles (%v, %v) ok %v", r, a0, a1, ok)
	}
}

func TestValidate(t *testing.T) {
	doc := &Document{Width: 10, Height: 10}
	doc.Add(Rect{W: 10, H: 10, Fill: URL("missing")})
	if err := doc.Validate(); err == nil {
		t.Error("expected error for unknown gradient")
	}

	doc = &Document{Width: 10, Height: 10}
	doc.Add(&Group{Children: []Node{Rect{W: math.NaN(), H: 10, Fill: Solid(red)}}})
	if err := doc.Validate(); err == nil {
		t.Error("expected error for NaN geometry")
	}

	if err := (&Document{}).Validate(); err == nil {
		t.Error("expected error for empty document size")
	}
}

func TestRasterizeSolidAndGroup(t *testing.T) {
	doc := &Document{Width: 40, Height: 40}
	doc.Add(
		Rect{W: 40, H: 40, Fill: Solid(black)},
		&Group{X: 20, Y: 20, Children: []Node{Rect{W: 20, H: 20, Fill: Solid(red)}}},
	)
	img, err := Rasterize(doc)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	assertColor(t, img, 5, 5, black, 0)
	assertColor(t, img, 30, 30, red, 0)
}

func TestRasterizeLinearGradient(t *testing.T) {
	doc := &Document{
		Width: 10, Height: 100,
		Defs: []Gradient{LinearGradient{
			ID: "v", Y2: 1,
			Stops: []Stop{{Offset: 0, Color: red, Opacity: 1}, {Offset: 1, Color: blue, Opacity: 1}},
		}},
	}
	doc.Add(Rect{W: 10, H: 100, Fill: URL("v")})

	img, err := Rasterize(doc)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	assertColor(t, img, 5, 0, red, 4)
	assertColor(t, img, 5, 99, blue, 4)
}

func TestRasterizeRadialFade(t *testing.T) {
	doc := &Document{
		Width: 100, Height: 100,
		Defs:  []Gradient{RadialGradient{ID: "r", CX: 0.5, CY: 0.5, R: 0.5, Stops: Fade(white)}},
	}
	doc.Add(Rect{W: 100, H: 100, Fill: URL("r")})

	img, err := Rasterize(doc)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if _, _, _, a := img.At(50, 50).RGBA(); a < 0xf000 {
		t.Errorf("centre alpha = %#x, want nearly opaque", a)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %#x, want transparent", a)
	}
}

func TestRasterizeRoundedPath(t *testing.T) {
	var b PathBuilder
	b.MoveTo(10, 0).H(30).Arc(10, false, true, 40, 10).V(40).H(0).V(10).Arc(10, false, true, 10, 0).Close()

	doc := &Document{Width: 40, Height: 40}
	doc.Add(b.Path(Solid(red)))
	img, err := Rasterize(doc)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	assertColor(t, img, 20, 20, red, 0)
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("rounded corner pixel alpha = %#x, want transparent", a)
	}
}

func TestRasterizeText(t *testing.T) {
	doc := &Document{Width: 120, Height: 40}
	doc.Add(
		Rect{W: 120, H: 40, Fill: Solid(black)},
		Text{X: 60, Y: 20, Content: "MESHY", Size: 24, Weight: 700, Anchor: AnchorMiddle, Baseline: BaselineMiddle, Fill: white},
	)
	img, err := Rasterize(doc)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}

	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0x8000 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("text left no pixels")
	}
}

func TestWriteSVG(t *testing.T) {
	doc := &Document{
		Width: 800, Height: 600,
		Defs: []Gradient{LinearGradient{ID: "bar-gradient", Y2: 1, Stops: Fade(red)}},
	}
	var b PathBuilder
	b.MoveTo(0, 0).H(10).V(10).H(0).Close()
	doc.Add(
		Rect{W: 800, H: 600, Fill: Solid(white)},
		&Group{X: 80, Y: 80, Children: []Node{b.Path(URL("bar-gradient"))}},
		Text{X: 400, Y: 48, Content: "Q&A <1>", Size: 20, Weight: 700, Anchor: AnchorMiddle, Fill: black},
	)

	out, err := SVG(doc)
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`viewBox="0 0 800 600"`,
		`<linearGradient id="bar-gradient" x1="0%" y1="0%" x2="0%" y2="100%">`,
		`<rect x="0" y="0" width="800" height="600" fill="#ffffff"`,
		`transform="translate(80,80)"`,
		`d="M 0,0 H 10 V 10 H 0 Z" fill="url(#bar-gradient)"`,
		`text-anchor="middle"`,
		`font-weight="700"`,
		`Q&amp;A &lt;1&gt;`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("SVG output missing %q\n%s", want, s)
		}
	}
}

func assertColor(t *testing.T, img image.Image, x, y int, want color.NRGBA, tol int) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	diff := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			return -d
		}
		return d
	}
	if diff(got.R, want.R) > tol || diff(got.G, want.G) > tol || diff(got.B, want.B) > tol || diff(got.A, want.A) > tol {
		t.Errorf("pixel (%d,%d) = %v, want %v (±%d)", x, y, got, want, tol)
	}
}
