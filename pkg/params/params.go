// Package params decodes and validates the query parameters of the image
// endpoints.
//
// Every endpoint follows the same steps: parse the raw query with
// [ParseQuery], then hand the tree to [DecodeChart], [DecodeAvatar] or
// [DecodeOG]. Decoding starts from the documented defaults, so absent keys
// keep their default value while present keys must parse and pass
// validation. Unknown keys are ignored.
//
// All failures are *errors.Error values with code INVALID_INPUT whose
// message names the offending query field, e.g. "barMargin must be at most
// 0.75" or "data[1].y must be a number".
package params

import "github.com/meshy-studio/meshy/pkg/palette"

// Chart holds the parameters of a bar chart.
type Chart struct {
	Data         []Point `query:"data" validate:"min=1,max=50,dive"`
	DarkMode     bool    `query:"darkMode"`
	PrimaryColor string  `query:"primaryColor" validate:"palette"`
	BorderRadius float64 `query:"borderRadius" validate:"min=0,max=100"`
	BarMargin    float64 `query:"barMargin" validate:"min=0,max=0.75"`
	Caption      string  `query:"caption" validate:"max=80"`
	Label        string  `query:"label" validate:"max=80"`
}

// Point is one bar: a category label and its value.
type Point struct {
	X string  `query:"x" validate:"max=32"`
	Y float64 `query:"y" validate:"min=0,max=1000000000000"`
}

// DefaultChart returns a chart with every optional field at its default.
func DefaultChart() Chart {
	return Chart{
		PrimaryColor: palette.DefaultColor,
		BorderRadius: 8,
		BarMargin:    0.1,
	}
}

// Avatar holds the post-processing parameters of a mesh avatar. The seed
// itself comes from the URL path.
type Avatar struct {
	Noise      float64 `query:"noise" validate:"min=0,max=32"`
	Sharpen    float64 `query:"sharpen" validate:"min=0.1,max=10"`
	Negate     bool    `query:"negate"`
	GammaIn    float64 `query:"gammaIn" validate:"min=1,max=3"`
	GammaOut   float64 `query:"gammaOut" validate:"min=1,max=3"`
	Brightness float64 `query:"brightness" validate:"min=0,max=100"`
	Saturation float64 `query:"saturation" validate:"min=0,max=100"`
	Hue        float64 `query:"hue" validate:"min=0,max=360"`
	Lightness  float64 `query:"lightness" validate:"min=0,max=100"`
	Blur       float64 `query:"blur" validate:"min=0,max=80"`
	Text       string  `query:"text" validate:"max=24"`
}

// DefaultAvatar returns the identity post-processing settings plus the
// default noise level.
func DefaultAvatar() Avatar {
	return Avatar{
		Noise:      8,
		Sharpen:    0.1,
		GammaIn:    2.2,
		GammaOut:   2.2,
		Brightness: 100,
		Saturation: 100,
	}
}

// OG templates.
const (
	TemplateSimple = "simple"
	TemplateMesh   = "mesh"
	TemplateGrid   = "grid"
)

// Templates lists every OG template name.
var Templates = []string{TemplateSimple, TemplateMesh, TemplateGrid}

// DefaultBranding is the OG branding line when none is given.
const DefaultBranding = "meshy.studio"

// OG holds the parameters of an Open Graph card.
type OG struct {
	Template    string `query:"template" validate:"oneof=simple mesh grid"`
	DarkMode    bool   `query:"darkMode"`
	Title       string `query:"title" validate:"max=80"`
	Description string `query:"description" validate:"max=200"`
	Branding    string `query:"branding" validate:"max=40"`
}

// DefaultOG returns an OG card with the default template and branding.
func DefaultOG() OG {
	return OG{
		Template: TemplateSimple,
		Branding: DefaultBranding,
	}
}
