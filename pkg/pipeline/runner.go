package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/cache"
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/observability"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render/chart"
	"github.com/meshy-studio/meshy/pkg/render/mesh"
	"github.com/meshy-studio/meshy/pkg/render/og"
)

// Runner executes renders with caching.
//
// The Runner holds no per-request state. Multiple goroutines can safely
// share one Runner.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
	store  *assets.Store
	og     *og.Renderer
}

// NewRunner creates a runner rendering OG cards from store. Without a
// store, OG renders fail.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, log.Default() is used.
func NewRunner(c cache.Cache, store *assets.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{Cache: c, Logger: logger, store: store}
	if store != nil {
		r.og = og.NewRenderer(store)
	}
	return r
}

// Query decodes rawQuery for kind and renders it. seed is only used by
// the mesh pipeline.
func (r *Runner) Query(ctx context.Context, kind Kind, seed, rawQuery string) (*Result, error) {
	v, err := params.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindChart:
		p, err := params.DecodeChart(v)
		if err != nil {
			return nil, err
		}
		return r.Chart(ctx, p)
	case KindMesh:
		p, err := params.DecodeAvatar(v)
		if err != nil {
			return nil, err
		}
		return r.Mesh(ctx, seed, p)
	case KindOG:
		p, err := params.DecodeOG(v)
		if err != nil {
			return nil, err
		}
		return r.OG(ctx, p)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown image kind %q", kind)
}

// Chart renders a bar chart.
func (r *Runner) Chart(ctx context.Context, p params.Chart) (*Result, error) {
	return r.run(ctx, KindChart, p, func() ([]byte, error) {
		return chart.Render(p)
	})
}

// Mesh renders the avatar for seed.
func (r *Runner) Mesh(ctx context.Context, seed string, p params.Avatar) (*Result, error) {
	if err := errors.ValidateSeed(seed); err != nil {
		return nil, err
	}
	key := struct {
		Seed   string
		Avatar params.Avatar
	}{seed, p}
	return r.run(ctx, KindMesh, key, func() ([]byte, error) {
		return mesh.Render(seed, p)
	})
}

// OG renders an Open Graph card. The cache key includes the template
// file's stamp, so regenerated templates are picked up without a restart.
func (r *Runner) OG(ctx context.Context, p params.OG) (*Result, error) {
	if r.og == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no template store configured")
	}
	stamp, err := r.store.Stamp(og.TemplateFile(p.Template, p.DarkMode))
	if err != nil {
		return nil, err
	}
	key := struct {
		Template string
		OG       params.OG
	}{stamp, p}
	return r.run(ctx, KindOG, key, func() ([]byte, error) {
		return r.og.Render(ctx, p)
	})
}

// run serves a render from cache or executes it. Cache failures are logged
// and otherwise ignored: a render is always possible without the cache.
func (r *Runner) run(ctx context.Context, kind Kind, keyParams any, render func() ([]byte, error)) (*Result, error) {
	start := time.Now()
	key := cache.RenderKey(string(kind), keyParams)
	logger := r.Logger.With("kind", kind)

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if err == nil && hit {
		observability.Cache().OnCacheHit(ctx, string(kind))
		res := &Result{Kind: kind, Data: data, Cached: true, Duration: time.Since(start)}
		logger.Debug("served from cache", "bytes", len(data))
		return res, nil
	}
	observability.Cache().OnCacheMiss(ctx, string(kind))

	observability.Render().OnRenderStart(ctx, string(kind))
	data, err = render()
	elapsed := time.Since(start)
	observability.Render().OnRenderComplete(ctx, string(kind), len(data), elapsed, err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", kind)
		}
		logger.Debug("render failed", "err", err, "duration", elapsed)
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, TTLRender); err != nil {
		logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, string(kind), len(data))
	}

	logger.Debug("rendered", "bytes", len(data), "duration", elapsed)
	return &Result{Kind: kind, Data: data, Duration: elapsed}, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
