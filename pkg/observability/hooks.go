// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through package-level hooks; the binary decides what
// receives them. Defaults are no-ops, so the render packages carry no
// dependency on a metrics backend and tests need no setup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := metrics.New(registry)
//	    observability.SetRenderHooks(m)
//	    observability.SetCacheHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, "chart")
//	// ... render ...
//	observability.Render().OnRenderComplete(ctx, "chart", len(data), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the image pipelines. kind is one of
// "chart", "mesh" or "og".
type RenderHooks interface {
	OnRenderStart(ctx context.Context, kind string)
	OnRenderComplete(ctx context.Context, kind string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the render output cache.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, kind string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, kind string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, kind string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives one event per served request. route is the matched
// pattern (e.g. "/api/mesh/{seed}"), not the raw path.
type HTTPHooks interface {
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// Rate Limit Hooks
// =============================================================================

// RateLimitHooks receives decisions of the request rate limiter.
type RateLimitHooks interface {
	OnAllowed(ctx context.Context, rule string)
	OnRejected(ctx context.Context, rule string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// NoopRateLimitHooks is a no-op implementation of RateLimitHooks.
type NoopRateLimitHooks struct{}

func (NoopRateLimitHooks) OnAllowed(context.Context, string)  {}
func (NoopRateLimitHooks) OnRejected(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks    RenderHooks    = NoopRenderHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	rateLimitHooks RateLimitHooks = NoopRateLimitHooks{}
	hooksMu        sync.RWMutex
)

// SetRenderHooks registers custom render hooks. Nil is ignored.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetRateLimitHooks registers custom rate limit hooks. Nil is ignored.
func SetRateLimitHooks(h RateLimitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		rateLimitHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// RateLimit returns the registered rate limit hooks.
func RateLimit() RateLimitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return rateLimitHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
	rateLimitHooks = NoopRateLimitHooks{}
}
