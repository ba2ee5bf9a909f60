// Package render holds what the image renderers share.
//
// # Overview
//
// Each endpoint has its own subpackage:
//
//   - [chart]: bar charts built as a [scene.Document]
//   - [mesh]: seeded gradient avatars with post-processing
//   - [og]: Open Graph cards composited over template images
//
// All of them finish with [EncodeJPEG], which flattens transparency onto a
// background colour and encodes at [JPEGQuality]. Encoding always buffers the
// complete image so a failed render never produces a partial response.
//
//	doc := chart.Build(p)
//	img, err := scene.Rasterize(doc)
//	jpg, err := render.EncodeJPEG(img, color.White)
//
// [chart]: github.com/meshy-studio/meshy/pkg/render/chart
// [mesh]: github.com/meshy-studio/meshy/pkg/render/mesh
// [og]: github.com/meshy-studio/meshy/pkg/render/og
// [scene.Document]: github.com/meshy-studio/meshy/pkg/scene.Document
package render
