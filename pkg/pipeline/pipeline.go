// Package pipeline runs the image renderers for the CLI and the HTTP API.
//
// Every image is produced by the same steps:
//
//  1. Decode: parse the query string and validate it into a parameter record
//  2. Render: build and rasterize the scene, or composite over a template
//  3. Encode: flatten and JPEG-encode the finished image
//
// A [Runner] wraps the renderers with an output cache, logging and
// observability hooks. HTTP handlers and CLI commands call the Runner and
// nothing else, so both entry points behave identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, store, logger)
//	res, err := runner.Query(ctx, pipeline.KindChart, "", "data[0][x]=A&data[0][y]=5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("chart.jpg", res.Data, 0o644)
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/meshy-studio/meshy/pkg/errors"
)

// Kind names one of the image pipelines.
type Kind string

const (
	KindChart Kind = "chart"
	KindMesh  Kind = "mesh"
	KindOG    Kind = "og"
)

// Kinds lists every pipeline.
var Kinds = []Kind{KindChart, KindMesh, KindOG}

// TTLRender bounds how long a rendered image stays cached. Renders never
// change for a given build, so the limit only reclaims space.
const TTLRender = 7 * 24 * time.Hour

// ParseKind validates a pipeline name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Kinds, k) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown image kind %q (want chart, mesh or og)", s)
	}
	return k, nil
}

// Result is a finished image.
type Result struct {
	Kind     Kind
	Data     []byte
	Cached   bool
	Duration time.Duration
}
