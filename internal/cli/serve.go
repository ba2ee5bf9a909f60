package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/meshy-studio/meshy/internal/metrics"
	"github.com/meshy-studio/meshy/internal/server"
	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/buildinfo"
	"github.com/meshy-studio/meshy/pkg/cache"
	"github.com/meshy-studio/meshy/pkg/config"
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/observability"
	"github.com/meshy-studio/meshy/pkg/pipeline"
	"github.com/meshy-studio/meshy/pkg/ratelimit"
)

// redisLimitPrefix namespaces rate limit counters in a shared Redis.
const redisLimitPrefix = "meshy:ratelimit:"

type serveOpts struct {
	addr        string
	noRateLimit bool
	noMetrics   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP image API",
		Long: `Serve exposes the image API:

  GET /api/chart          bar charts
  GET /api/mesh/{seed}    mesh avatars (rate limited)
  GET /api/mesh           redirect to a random seed
  GET /api/og             Open Graph cards
  GET /api/og/snippet     metadata snippet for an OG card

plus /healthz and Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.noRateLimit {
				cfg.RateLimit.Enabled = false
			}
			return c.serve(cmd.Context(), cfg, !opts.noMetrics)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.noRateLimit, "no-rate-limit", false, "disable the mesh rate limiter")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) serve(ctx context.Context, cfg config.Config, withMetrics bool) error {
	store, err := assets.NewStore(cfg.Assets.Dir, cfg.Assets.CacheSize)
	if err != nil {
		return err
	}

	renderCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cache.Scoped(renderCache, buildinfo.CacheScope()), store, c.Logger)
	defer runner.Close()

	limiter, err := c.openLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	if limiter != nil {
		defer limiter.Close()
	}

	opts := server.Options{
		Runner:     runner,
		Limiter:    limiter,
		PublicURL:  cfg.PublicURL,
		TrustProxy: cfg.Server.TrustProxy,
		Logger:     c.Logger,
	}
	if withMetrics {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		observability.SetRenderHooks(m)
		observability.SetCacheHooks(m)
		observability.SetHTTPHooks(m)
		observability.SetRateLimitHooks(m)
		defer observability.Reset()
		opts.Metrics = metrics.Handler(reg)
	}

	c.Logger.Info("starting meshy",
		"version", buildinfo.Version,
		"cache", cfg.Cache.Backend,
		"assets", cfg.Assets.Dir,
		"rate_limit", limiter != nil,
	)
	return server.New(opts).ListenAndServe(ctx, cfg.Server)
}

// openCache returns the render cache named by cache.backend.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.Entries)
	case "redis":
		return cache.OpenRedisCache(ctx, cfg.RateLimit.RedisURL)
	case "none":
		return cache.NewNullCache(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", cfg.Cache.Backend)
}

// openLimiter returns nil when rate limiting is disabled. Counters live in
// Redis when a URL is configured so that replicas share one budget.
func (c *CLI) openLimiter(ctx context.Context, cfg config.Config) (*ratelimit.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}
	var counter ratelimit.Counter
	if cfg.RateLimit.RedisURL != "" {
		client, err := cache.DialRedis(ctx, cfg.RateLimit.RedisURL)
		if err != nil {
			return nil, err
		}
		counter = ratelimit.NewRedisCounter(client, redisLimitPrefix)
	} else {
		counter = ratelimit.NewMemCounter()
	}
	rules := ratelimit.DefaultRules(cfg.RateLimit.PerIPHour, cfg.RateLimit.PerIPUAMinute)
	return ratelimit.New(counter, c.Logger, rules...), nil
}
