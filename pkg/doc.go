// Package pkg provides the libraries behind the meshy image service.
//
// # Overview
//
// Meshy turns URL parameters into JPEG images: bar charts, seeded
// mesh-gradient avatars and Open Graph cards. The pkg directory is
// organized into four areas:
//
//  1. [params] - Query decoding and validation
//  2. [render] - Drawing (scene graph, charts, meshes, OG cards)
//  3. [pipeline] - Orchestration (decode → render → cache)
//  4. Infrastructure - caching, rate limiting, config, errors, hooks
//
// # Architecture
//
// The data flow for every request:
//
//	raw query string
//	         ↓
//	    [params] package (bracket syntax → typed, validated struct)
//	         ↓
//	    [pipeline] package (cache lookup by hashed params)
//	         ↓
//	    [render/chart], [render/mesh] or [render/og]
//	         ↓
//	    [scene] package (vector drawing → raster)
//	         ↓
//	    JPEG bytes
//
// # Quick Start
//
// Render a chart without the HTTP server:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Query(ctx, pipeline.KindChart, "", "data[0][x]=Jan&data[0][y]=12")
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("chart.jpg", res.Data, 0o644)
//
// # Main Packages
//
// ## Drawing
//
// [scene] - A small retained scene graph (rects, paths with arcs, text,
// linear and radial gradients) rasterized with gg or written as SVG.
//
// [render/chart] - Bar charts: layout of bars, value labels and captions.
//
// [render/mesh] - Mesh avatars: seeded blob placement plus sharp-style
// post-processing (noise overlay, blur, gamma, modulate, negate).
//
// [render/og] - Open Graph cards: text layers composited over template
// images, and the generator for the stock templates.
//
// [palette], [fonts], [seed] - Tailwind colours, embedded Go fonts and the
// deterministic string hash and PRNG used for seeds.
//
// ## Infrastructure
//
// [pipeline] - Decoding, rendering and caching in one call, shared by the
// CLI and the HTTP server.
//
// [cache] - Render cache backends: memory (LRU), Redis, file and null.
//
// [assets] - Template image store with an LRU of decoded images.
//
// [ratelimit] - Fixed-window limiter with in-memory and Redis counters.
//
// [config] - TOML configuration with MESHY_* environment overrides.
//
// [errors] - Coded errors mapped to HTTP statuses.
//
// [observability] - Hooks for render, cache, HTTP and rate limit events.
//
// [snippet] - Framework metadata snippets for OG cards.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/render/...             # Specific packages
//	MESHY_TEST_REDIS_URL=redis://localhost:6379 go test ./pkg/ratelimit
//
// [params]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/params
// [render]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/render
// [render/chart]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/render/chart
// [render/mesh]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/render/mesh
// [render/og]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/render/og
// [pipeline]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/pipeline
// [scene]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/scene
// [palette]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/palette
// [fonts]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/fonts
// [seed]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/seed
// [cache]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/cache
// [assets]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/assets
// [ratelimit]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/ratelimit
// [config]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/config
// [errors]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/errors
// [observability]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/observability
// [snippet]: https://pkg.go.dev/github.com/meshy-studio/meshy/pkg/snippet
package pkg
