// Package palette holds the named colour scales used by the renderers.
//
// Scales follow the Tailwind CSS palette: each named colour has shades from
// 50 (lightest) to 950 (darkest). Only the shades the renderers draw with are
// listed.
package palette

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Shade is a position on a colour scale.
type Shade int

// Shades referenced by the chart and OG renderers.
const (
	Shade200 Shade = 200
	Shade300 Shade = 300
	Shade400 Shade = 400
	Shade500 Shade = 500
	Shade600 Shade = 600
	Shade700 Shade = 700
	Shade800 Shade = 800
)

// DefaultColor is the primary colour used when a request does not name one.
const DefaultColor = "blue"

var scales = map[string]map[Shade]string{
	"slate":   {200: "#e2e8f0", 300: "#cbd5e1", 400: "#94a3b8", 500: "#64748b", 600: "#475569", 700: "#334155", 800: "#1e293b"},
	"gray":    {200: "#e5e7eb", 300: "#d1d5db", 400: "#9ca3af", 500: "#6b7280", 600: "#4b5563", 700: "#374151", 800: "#1f2937"},
	"zinc":    {200: "#e4e4e7", 300: "#d4d4d8", 400: "#a1a1aa", 500: "#71717a", 600: "#52525b", 700: "#3f3f46", 800: "#27272a"},
	"neutral": {200: "#e5e5e5", 300: "#d4d4d4", 400: "#a3a3a3", 500: "#737373", 600: "#525252", 700: "#404040", 800: "#262626"},
	"stone":   {200: "#e7e5e4", 300: "#d6d3d1", 400: "#a8a29e", 500: "#78716c", 600: "#57534e", 700: "#44403c", 800: "#292524"},
	"red":     {200: "#fecaca", 300: "#fca5a5", 400: "#f87171", 500: "#ef4444", 600: "#dc2626", 700: "#b91c1c", 800: "#991b1b"},
	"orange":  {200: "#fed7aa", 300: "#fdba74", 400: "#fb923c", 500: "#f97316", 600: "#ea580c", 700: "#c2410c", 800: "#9a3412"},
	"amber":   {200: "#fde68a", 300: "#fcd34d", 400: "#fbbf24", 500: "#f59e0b", 600: "#d97706", 700: "#b45309", 800: "#92400e"},
	"yellow":  {200: "#fef08a", 300: "#fde047", 400: "#facc15", 500: "#eab308", 600: "#ca8a04", 700: "#a16207", 800: "#854d0e"},
	"lime":    {200: "#d9f99d", 300: "#bef264", 400: "#a3e635", 500: "#84cc16", 600: "#65a30d", 700: "#4d7c0f", 800: "#3f6212"},
	"green":   {200: "#bbf7d0", 300: "#86efac", 400: "#4ade80", 500: "#22c55e", 600: "#16a34a", 700: "#15803d", 800: "#166534"},
	"emerald": {200: "#a7f3d0", 300: "#6ee7b7", 400: "#34d399", 500: "#10b981", 600: "#059669", 700: "#047857", 800: "#065f46"},
	"teal":    {200: "#99f6e4", 300: "#5eead4", 400: "#2dd4bf", 500: "#14b8a6", 600: "#0d9488", 700: "#0f766e", 800: "#115e59"},
	"cyan":    {200: "#a5f3fc", 300: "#67e8f9", 400: "#22d3ee", 500: "#06b6d4", 600: "#0891b2", 700: "#0e7490", 800: "#155e75"},
	"sky":     {200: "#bae6fd", 300: "#7dd3fc", 400: "#38bdf8", 500: "#0ea5e9", 600: "#0284c7", 700: "#0369a1", 800: "#075985"},
	"blue":    {200: "#bfdbfe", 300: "#93c5fd", 400: "#60a5fa", 500: "#3b82f6", 600: "#2563eb", 700: "#1d4ed8", 800: "#1e40af"},
	"indigo":  {200: "#c7d2fe", 300: "#a5b4fc", 400: "#818cf8", 500: "#6366f1", 600: "#4f46e5", 700: "#4338ca", 800: "#3730a3"},
	"violet":  {200: "#ddd6fe", 300: "#c4b5fd", 400: "#a78bfa", 500: "#8b5cf6", 600: "#7c3aed", 700: "#6d28d9", 800: "#5b21b6"},
	"purple":  {200: "#e9d5ff", 300: "#d8b4fe", 400: "#c084fc", 500: "#a855f7", 600: "#9333ea", 700: "#7e22ce", 800: "#6b21a8"},
	"fuchsia": {200: "#f5d0fe", 300: "#f0abfc", 400: "#e879f9", 500: "#d946ef", 600: "#c026d3", 700: "#a21caf", 800: "#86198f"},
	"pink":    {200: "#fbcfe8", 300: "#f9a8d4", 400: "#f472b6", 500: "#ec4899", 600: "#db2777", 700: "#be185d", 800: "#9d174d"},
	"rose":    {200: "#fecdd3", 300: "#fda4af", 400: "#fb7185", 500: "#f43f5e", 600: "#e11d48", 700: "#be123c", 800: "#9f1239"},
}

// Names returns the sorted list of palette names.
func Names() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is a known palette.
func Has(name string) bool {
	_, ok := scales[name]
	return ok
}

// Hex returns the hex code of a shade, e.g. Hex("blue", Shade500) == "#3b82f6".
func Hex(name string, shade Shade) (string, error) {
	scale, ok := scales[name]
	if !ok {
		return "", fmt.Errorf("unknown palette %q", name)
	}
	hex, ok := scale[shade]
	if !ok {
		return "", fmt.Errorf("palette %q has no shade %d", name, shade)
	}
	return hex, nil
}

// Color returns a shade as an opaque colour. It panics on unknown names, so
// callers validate user input with Has first.
func Color(name string, shade Shade) color.NRGBA {
	hex, err := Hex(name, shade)
	if err != nil {
		panic(err)
	}
	return MustParse(hex)
}

// MustParse converts a "#rrggbb" literal into an opaque colour.
func MustParse(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("palette: %v", err))
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
