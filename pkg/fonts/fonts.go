// Package fonts provides the typefaces used when rasterizing text.
//
// The Go font family is compiled into the binary via golang.org/x/image, so
// rendering works without system fonts. Font files are parsed once; faces are
// created per render because truetype faces keep glyph caches that are not
// safe for concurrent use.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family written into SVG output.
const FontFamily = "Go, Inter, system-ui, sans-serif"

// Weight is a CSS-style font weight (100..900).
type Weight int

const (
	Regular  Weight = 400
	Medium   Weight = 500
	Semibold Weight = 600
	Bold     Weight = 700
)

var (
	parsed    map[Weight]*truetype.Font
	parseErr  error
	parseOnce sync.Once
)

func load() {
	parsed = make(map[Weight]*truetype.Font, 3)
	for w, data := range map[Weight][]byte{
		Regular: goregular.TTF,
		Medium:  gomedium.TTF,
		Bold:    gobold.TTF,
	} {
		f, err := truetype.Parse(data)
		if err != nil {
			parseErr = fmt.Errorf("parse font weight %d: %w", w, err)
			return
		}
		parsed[w] = f
	}
}

// bucket maps an arbitrary weight onto one of the embedded files.
func bucket(w Weight) Weight {
	switch {
	case w >= Bold:
		return Bold
	case w > Regular:
		return Medium
	default:
		return Regular
	}
}

// Font returns the parsed font closest to weight w.
func Font(w Weight) (*truetype.Font, error) {
	parseOnce.Do(load)
	if parseErr != nil {
		return nil, parseErr
	}
	return parsed[bucket(w)], nil
}

// Face returns a new face for weight w at size pixels (72 DPI, so points
// equal pixels). The caller owns the face and should Close it.
func Face(w Weight, size float64) (font.Face, error) {
	f, err := Font(w)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
