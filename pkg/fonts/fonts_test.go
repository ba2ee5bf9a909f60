package fonts

import "testing"

func TestBucket(t *testing.T) {
	tests := []struct {
		in, want Weight
	}{
		{100, Regular},
		{Regular, Regular},
		{Medium, Medium},
		{Semibold, Medium},
		{Bold, Bold},
		{900, Bold},
	}
	for _, tt := range tests {
		if got := bucket(tt.in); got != tt.want {
			t.Errorf("bucket(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFace(t *testing.T) {
	face, err := Face(Bold, 20)
	if err != nil {
		t.Fatalf("Face() error: %v", err)
	}
	defer face.Close()

	m := face.Metrics()
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("unexpected metrics %+v", m)
	}
	if _, ok := face.GlyphAdvance('M'); !ok {
		t.Error("face has no glyph for 'M'")
	}
}

func TestFontParsedOnce(t *testing.T) {
	a, err := Font(Regular)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Font(Regular)
	if a != b {
		t.Error("Font() returned a different instance on second call")
	}
}
