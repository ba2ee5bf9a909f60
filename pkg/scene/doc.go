// Package scene describes images as a small tree of vector primitives.
//
// # Overview
//
// Renderers build a [Document] out of groups, rectangles, paths and text,
// and reference gradients declared in the document's definitions. The same
// tree can then be written out in two ways:
//
//   - [WriteSVG] serializes it as an SVG document (via github.com/ajstarks/svgo)
//   - [Rasterize] paints it into an RGBA image (via github.com/fogleman/gg)
//
// # Coordinates
//
// Coordinates are in user units (pixels). A [Group] translates its children.
// Gradient coordinates are fractions of the filled shape's bounding box, which
// matches the SVG default gradientUnits="objectBoundingBox".
//
//	doc := &scene.Document{Width: 100, Height: 100}
//	doc.Defs = append(doc.Defs, scene.LinearGradient{ID: "g", X2: 1, Stops: stops})
//	doc.Add(scene.Rect{W: 100, H: 100, Fill: scene.URL("g")})
//	img, err := scene.Rasterize(doc)
package scene
