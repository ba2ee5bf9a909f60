package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "chart")
	r.OnRenderComplete(ctx, "chart", 2048, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "mesh")
	c.OnCacheMiss(ctx, "og")
	c.OnCacheSet(ctx, "og", 1024)

	NoopHTTPHooks{}.OnResponse(ctx, "GET", "/api/chart", 200, time.Millisecond)

	l := NoopRateLimitHooks{}
	l.OnAllowed(ctx, "ip")
	l.OnRejected(ctx, "ip-ua")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should default to NoopRenderHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}
	if _, ok := RateLimit().(NoopRateLimitHooks); !ok {
		t.Error("RateLimit() should default to NoopRateLimitHooks")
	}

	rec := &recorder{}
	SetRenderHooks(rec)
	SetCacheHooks(rec)
	SetHTTPHooks(rec)
	SetRateLimitHooks(rec)
	if Render() != rec || Cache() != rec || HTTP() != rec || RateLimit() != rec {
		t.Fatal("setters should install custom hooks")
	}

	Render().OnRenderStart(context.Background(), "mesh")
	if rec.starts != 1 {
		t.Errorf("starts = %d", rec.starts)
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	rec := &recorder{}
	SetRenderHooks(rec)
	SetRenderHooks(nil)
	if Render() != rec {
		t.Error("SetRenderHooks(nil) should be ignored")
	}
}

type recorder struct {
	NoopRenderHooks
	NoopCacheHooks
	NoopHTTPHooks
	NoopRateLimitHooks
	starts int
}

func (r *recorder) OnRenderStart(context.Context, string) { r.starts++ }
