package og

import (
	"context"
	"image/color"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/palette"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render"
	"github.com/meshy-studio/meshy/pkg/render/mesh"
	"github.com/meshy-studio/meshy/pkg/scene"
)

// meshKey seeds the blob layout of the mesh template.
const meshKey = "meshy.studio"

const gridStep = 40

// TemplateScene returns the drawing for one stock template.
func TemplateScene(template string, dark bool) (*scene.Document, error) {
	bg, line := palette.MustParse("#f9fafb"), palette.Color("gray", palette.Shade200)
	if dark {
		bg, line = palette.MustParse("#030712"), palette.Color("gray", palette.Shade800)
	}

	switch template {
	case params.TemplateSimple:
		doc := &scene.Document{Width: Width, Height: Height}
		doc.Defs = append(doc.Defs, scene.LinearGradient{
			ID: "accent",
			X2: 1,
			Stops: []scene.Stop{
				{Offset: 0, Color: palette.Color("blue", palette.Shade500), Opacity: 1},
				{Offset: 1, Color: palette.Color("violet", palette.Shade500), Opacity: 1},
			},
		})
		doc.Add(
			scene.Rect{W: Width, H: Height, Fill: scene.Solid(bg)},
			scene.Rect{W: Width, H: 12, Fill: scene.URL("accent")},
		)
		return doc, nil

	case params.TemplateMesh:
		doc := mesh.Gradient(meshKey, Width, Height)
		veil := bg
		veil.A = 150
		doc.Add(scene.Rect{W: Width, H: Height, Fill: scene.Solid(veil)})
		return doc, nil

	case params.TemplateGrid:
		doc := &scene.Document{Width: Width, Height: Height}
		doc.Add(scene.Rect{W: Width, H: Height, Fill: scene.Solid(bg)})
		for x := gridStep; x < Width; x += gridStep {
			doc.Add(scene.Rect{X: float64(x), W: 1, H: Height, Fill: scene.Solid(line)})
		}
		for y := gridStep; y < Height; y += gridStep {
			doc.Add(scene.Rect{Y: float64(y), W: Width, H: 1, Fill: scene.Solid(line)})
		}
		doc.Defs = append(doc.Defs, scene.RadialGradient{
			ID: "spotlight", CX: 0.3, CY: 0.5, R: 0.6,
			Stops: scene.Fade(bg),
		})
		doc.Add(scene.Rect{W: Width, H: Height, Fill: scene.URL("spotlight")})
		return doc, nil
	}
	return nil, errors.New(errors.ErrCodeTemplateNotFound, "unknown template %q", template)
}

// GenerateTemplates draws every stock template in both modes and writes
// them to dir as {template}-{light|dark}.jpg.
func GenerateTemplates(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create assets dir")
	}

	type job struct {
		template string
		dark     bool
	}
	var jobs []job
	for _, t := range params.Templates {
		jobs = append(jobs, job{t, false}, job{t, true})
	}

	paths := make([]string, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := renderTemplate(j.template, j.dark)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, TemplateFile(j.template, j.dark))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderTemplate(template string, dark bool) ([]byte, error) {
	doc, err := TemplateScene(template, dark)
	if err != nil {
		return nil, err
	}
	img, err := scene.Rasterize(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rasterize %s", TemplateFile(template, dark))
	}
	data, err := render.EncodeJPEG(img, color.White)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode %s", TemplateFile(template, dark))
	}
	return data, nil
}
