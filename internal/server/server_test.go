package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshy-studio/meshy/internal/metrics"
	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/cache"
	"github.com/meshy-studio/meshy/pkg/httputil"
	"github.com/meshy-studio/meshy/pkg/observability"
	"github.com/meshy-studio/meshy/pkg/pipeline"
	"github.com/meshy-studio/meshy/pkg/ratelimit"
	"github.com/meshy-studio/meshy/pkg/render/og"
)

func newTestServer(t *testing.T, withTemplates bool, configure ...func(*Options)) *Server {
	t.Helper()
	dir := t.TempDir()
	if withTemplates {
		if _, err := og.GenerateTemplates(context.Background(), dir); err != nil {
			t.Fatal(err)
		}
	}
	store, _ := assets.NewStore(dir, 0)
	c, _ := cache.NewMemoryCache(16)
	logger := log.New(io.Discard)

	counter := ratelimit.NewMemCounter()
	t.Cleanup(func() { counter.Close() })

	opts := Options{
		Runner:    pipeline.NewRunner(c, store, logger),
		Limiter:   ratelimit.New(counter, logger, ratelimit.DefaultRules(100, 2)...),
		PublicURL: "https://meshy.studio",
		Logger:    logger,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	return New(opts)
}

func get(s http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.RemoteAddr = "192.0.2.10:4000"
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	w := get(s, "/api/chart?data[0][x]=A&data[0][y]=5&data[1][x]=B&data[1][y]=10")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if b := w.Body.Bytes(); len(b) < 2 || b[0] != 0xff || b[1] != 0xd8 {
		t.Error("body is not a JPEG")
	}

	// Trailing-slash form used by the preview page.
	if w := get(s, "/api/chart/?data[0][y]=1"); w.Code != http.StatusOK {
		t.Errorf("trailing slash status = %d", w.Code)
	}
}

func TestChartValidationError(t *testing.T) {
	s := newTestServer(t, false)
	w := get(s, "/api/chart?data[0][y]=1&barMargin=0.9")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Code != "INVALID_INPUT" || !strings.HasPrefix(body.Message, "barMargin") {
		t.Errorf("body = %+v", body)
	}
	if w.Header().Get("Content-Type") == "image/jpeg" {
		t.Error("error response must not claim to be an image")
	}
}

func TestMeshRateLimit(t *testing.T) {
	s := newTestServer(t, false)

	for i := 0; i < 2; i++ {
		if w := get(s, "/api/mesh/hello?noise=0", "User-Agent", "test"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d: %s", i, w.Code, w.Body.String())
		}
	}
	w := get(s, "/api/mesh/hello?noise=0", "User-Agent", "test")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if body := decodeError(t, w); body.Code != "RATE_LIMITED" {
		t.Errorf("body = %+v", body)
	}

	// Other endpoints are not limited.
	if w := get(s, "/api/chart?data[0][y]=1", "User-Agent", "test"); w.Code != http.StatusOK {
		t.Errorf("chart status = %d", w.Code)
	}
}

func TestMeshRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, false)

	var codes []int
	for i := 0; i < 6; i++ {
		w := get(s, "/api/mesh/hello?noise=0",
			"User-Agent", "test",
			"X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		codes = append(codes, w.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("rotating X-Forwarded-For escaped the limit: %v", codes)
	}
}

func TestMeshRateLimitTrustProxy(t *testing.T) {
	s := newTestServer(t, false, func(o *Options) { o.TrustProxy = true })

	for i := 0; i < 4; i++ {
		w := get(s, "/api/mesh/hello?noise=0",
			"User-Agent", "test",
			"X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d from distinct forwarded clients: status = %d", i, w.Code)
		}
	}
	w := get(s, "/api/mesh/hello?noise=0", "User-Agent", "test", "X-Forwarded-For", "203.0.113.0")
	if w.Code != http.StatusOK {
		t.Fatalf("second request from 203.0.113.0: status = %d", w.Code)
	}
	w = get(s, "/api/mesh/hello?noise=0", "User-Agent", "test", "X-Forwarded-For", "203.0.113.0")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("third request from 203.0.113.0: status = %d, want 429", w.Code)
	}
}

func TestMeshEscapedSeed(t *testing.T) {
	tests := []struct {
		path string
		seed string
	}{
		{"/api/mesh/a%2Fb", "a/b"},
		{"/api/mesh/100%25", "100%"},
		{"/api/mesh/caf%C3%A9", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			s := newTestServer(t, false)
			w := get(s, tt.path+"?noise=0", "User-Agent", "test")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			want, err := s.runner.Query(context.Background(), pipeline.KindMesh, tt.seed, "noise=0")
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(w.Body.Bytes(), want.Data) {
				t.Errorf("%s did not render the avatar for seed %q", tt.path, tt.seed)
			}
		})
	}
}

func TestMeshBadParams(t *testing.T) {
	s := newTestServer(t, false)
	w := get(s, "/api/mesh/hello?negate=yes")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decodeError(t, w); !strings.HasPrefix(body.Message, "negate") {
		t.Errorf("message = %q", body.Message)
	}
}

func TestRandomMeshRedirect(t *testing.T) {
	s := newTestServer(t, false)
	w := get(s, "/api/mesh?text=hi")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "/api/mesh/") || !strings.HasSuffix(loc, "?text=hi") {
		t.Errorf("Location = %q", loc)
	}
	if other := get(s, "/api/mesh").Header().Get("Location"); other == loc {
		t.Error("each redirect should pick a new seed")
	}
}

func TestOGEndpoint(t *testing.T) {
	missing := newTestServer(t, false)
	w := get(missing, "/api/og?title=Hello")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing template status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Code != "TEMPLATE_NOT_FOUND" {
		t.Errorf("body = %+v", body)
	}

	s := newTestServer(t, true)
	w = get(s, "/api/og?template=mesh&darkMode=true&title=Hello&description=World")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestSnippetEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	w := get(s, "/api/og/snippet?flavor=nextjs&title=Hi&template=grid")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	out := w.Body.String()
	if !strings.Contains(out, "next/head") || !strings.Contains(out, "https://meshy.studio/api/og?") {
		t.Errorf("snippet = %s", out)
	}

	if w := get(s, "/api/og/snippet?flavor=astro"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown flavor status = %d", w.Code)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, false)
	if w := get(s, "/healthz"); w.Code != 200 || w.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}
	w := get(s, "/api/nope")
	if w.Code != http.StatusNotFound || decodeError(t, w).Code != "NOT_FOUND" {
		t.Errorf("not found = %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	observability.SetHTTPHooks(m)

	logger := log.New(io.Discard)
	s := New(Options{Runner: pipeline.NewRunner(nil, nil, logger), Metrics: metrics.Handler(reg), Logger: logger})
	get(s, "/healthz")

	w := get(s, "/metrics")
	if !strings.Contains(w.Body.String(), `meshy_http_requests_total{code="200",method="GET",route="/healthz"} 1`) {
		t.Errorf("metrics missing healthz request:\n%s", w.Body.String())
	}
}
