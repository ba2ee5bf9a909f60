package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meshy-studio/meshy/pkg/errors"
)

func TestMemCounterWindow(t *testing.T) {
	c := NewMemCounter()
	defer c.Close()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, reset, _ := c.Increment(ctx, "k", time.Minute)
		if got != want || reset != time.Minute {
			t.Fatalf("Increment = %d, %v; want %d, 1m", got, reset, want)
		}
	}

	now = now.Add(40 * time.Second)
	if _, reset, _ := c.Increment(ctx, "k", time.Minute); reset != 20*time.Second {
		t.Errorf("reset = %v, want 20s", reset)
	}

	now = now.Add(20 * time.Second)
	if got, _, _ := c.Increment(ctx, "k", time.Minute); got != 1 {
		t.Errorf("new window count = %d, want 1", got)
	}

	c.Reset(ctx, "k")
	if got, _, _ := c.Increment(ctx, "k", time.Minute); got != 1 {
		t.Errorf("after reset count = %d, want 1", got)
	}
}

func TestMemCounterSweep(t *testing.T) {
	c := NewMemCounter()
	defer c.Close()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Increment(context.Background(), "a", time.Second)
	now = now.Add(2 * time.Second)
	c.sweep()

	c.mu.Lock()
	n := len(c.vals)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("%d entries left after sweep", n)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules(DefaultPerIPHour, DefaultPerIPUAMinute)
	if len(rules) != 2 {
		t.Fatalf("len = %d", len(rules))
	}
	if rules[0].Limit != 100 || rules[0].Period != time.Hour {
		t.Errorf("ip rule = %+v", rules[0])
	}
	if rules[1].Limit != 50 || rules[1].Period != time.Minute {
		t.Errorf("ip-ua rule = %+v", rules[1])
	}
	if len(DefaultRules(0, 5)) != 1 {
		t.Error("zero limit should disable a rule")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:5123"
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP = %q", got)
	}
	r.RemoteAddr = "203.0.113.9"
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP without port = %q", got)
	}
}

func TestMiddleware(t *testing.T) {
	c := NewMemCounter()
	l := New(c, nil, DefaultRules(100, 2)...)
	defer l.Close()

	var rejected error
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
		rejected = err
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ua string) int {
		r := httptest.NewRequest("GET", "/api/mesh/x", nil)
		r.RemoteAddr = "198.51.100.1:1000"
		r.Header.Set("User-Agent", ua)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	if do("a") != 200 || do("a") != 200 {
		t.Fatal("first two requests should pass")
	}
	if code := do("a"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", code)
	}
	rl, ok := rejected.(*errors.RateLimitedError)
	if !ok || rl.Rule != "ip-ua" || rl.RetryAfter != 60 {
		t.Errorf("rejection = %#v", rejected)
	}
	if !errors.Is(rejected, errors.ErrCodeRateLimited) {
		t.Error("rejection should carry RATE_LIMITED")
	}

	// Another user agent from the same address has its own minute budget.
	if do("b") != 200 {
		t.Error("different user agent should pass")
	}
}

func TestRedisCounter(t *testing.T) {
	url := os.Getenv("MESHY_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MESHY_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	c := NewRedisCounter(redis.NewClient(opts), "meshy-test:")
	defer c.Close()
	ctx := context.Background()
	key := "counter-" + time.Now().Format("150405.000000")
	defer c.Reset(ctx, key)

	n, ttl, err := c.Increment(ctx, key, time.Minute)
	if err != nil || n != 1 || ttl != time.Minute {
		t.Fatalf("first Increment = %d, %v, %v", n, ttl, err)
	}
	n, ttl, err = c.Increment(ctx, key, time.Minute)
	if err != nil || n != 2 || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("second Increment = %d, %v, %v", n, ttl, err)
	}
}
