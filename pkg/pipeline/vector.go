package pipeline

import (
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/palette"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render/chart"
	"github.com/meshy-studio/meshy/pkg/render/mesh"
	"github.com/meshy-studio/meshy/pkg/scene"
)

// Vector returns the SVG drawing behind a chart or mesh render. Mesh
// post-processing (noise, blur, colour adjustments) only exists in the
// raster output. OG cards are composited from bitmaps and have no vector
// form.
func Vector(kind Kind, seed, rawQuery string) ([]byte, error) {
	v, err := params.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	var doc *scene.Document
	switch kind {
	case KindChart:
		p, err := params.DecodeChart(v)
		if err != nil {
			return nil, err
		}
		if !palette.Has(p.PrimaryColor) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "primaryColor %q is not a palette colour", p.PrimaryColor)
		}
		doc = chart.Build(p)
	case KindMesh:
		if err := errors.ValidateSeed(seed); err != nil {
			return nil, err
		}
		p, err := params.DecodeAvatar(v)
		if err != nil {
			return nil, err
		}
		doc = mesh.Build(seed, p)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s images have no vector form", kind)
	}

	data, err := scene.SVG(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "write %s svg", kind)
	}
	return data, nil
}
