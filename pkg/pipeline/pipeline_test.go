package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/meshy-studio/meshy/pkg/assets"
	"github.com/meshy-studio/meshy/pkg/cache"
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/observability"
	"github.com/meshy-studio/meshy/pkg/params"
	"github.com/meshy-studio/meshy/pkg/render/og"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"chart", KindChart, false},
		{" Mesh ", KindMesh, false},
		{"og", KindOG, false},
		{"png", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestQueryChart(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Query(context.Background(), KindChart, "", "data[0][x]=A&data[0][y]=5&data[1][x]=B&data[1][y]=10")
	if err != nil {
		t.Fatal(err)
	}
	img, err := imaging.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("size = %v", img.Bounds().Size())
	}
	if res.Kind != KindChart || res.Cached {
		t.Errorf("result = %+v", res)
	}
}

func TestQueryErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		kind  Kind
		seed  string
		query string
		code  errors.Code
	}{
		{"empty chart", KindChart, "", "", errors.ErrCodeInvalidInput},
		{"bad margin", KindChart, "", "data[0][y]=1&barMargin=2", errors.ErrCodeInvalidInput},
		{"bad escape", KindChart, "", "data[0][y]=%zz", errors.ErrCodeInvalidInput},
		{"empty seed", KindMesh, "", "", errors.ErrCodeInvalidSeed},
		{"bad noise", KindMesh, "abc", "noise=99", errors.ErrCodeInvalidInput},
		{"no store", KindOG, "", "", errors.ErrCodeInternal},
		{"bad template", KindOG, "", "template=fancy", errors.ErrCodeInvalidInput},
		{"bad kind", Kind("png"), "", "", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Query(ctx, tt.kind, tt.seed, tt.query)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRunnerCaches(t *testing.T) {
	c, _ := cache.NewMemoryCache(8)
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := r.Mesh(ctx, "hello", params.DefaultAvatar())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Mesh(ctx, "hello", params.DefaultAvatar())
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cached bytes differ from rendered bytes")
	}

	other, _ := r.Mesh(ctx, "world", params.DefaultAvatar())
	if other.Cached {
		t.Error("different seed must not hit the cache")
	}
}

func TestRunnerOG(t *testing.T) {
	dir := t.TempDir()
	if _, err := og.GenerateTemplates(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	store, _ := assets.NewStore(dir, 0)
	r := NewRunner(nil, store, nil)

	res, err := r.Query(context.Background(), KindOG, "", "template=grid&darkMode=true&title=Hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Data) == 0 {
		t.Error("empty image")
	}
}

func TestRunnerOGTemplateChange(t *testing.T) {
	dir := t.TempDir()
	if _, err := og.GenerateTemplates(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	store, _ := assets.NewStore(dir, 0)
	c, _ := cache.NewMemoryCache(8)
	r := NewRunner(c, store, nil)
	ctx := context.Background()
	const query = "template=simple&title=Hello"

	first, err := r.Query(ctx, KindOG, "", query)
	if err != nil {
		t.Fatal(err)
	}
	if second, _ := r.Query(ctx, KindOG, "", query); !second.Cached {
		t.Fatal("unchanged template should hit the cache")
	}

	path := filepath.Join(dir, og.TemplateFile("simple", false))
	bg := imaging.New(og.Width, og.Height, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	if err := imaging.Save(bg, path); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	third, err := r.Query(ctx, KindOG, "", query)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("rewritten template served a stale card from cache")
	}
	if bytes.Equal(first.Data, third.Data) {
		t.Error("card did not change with its template")
	}
}

func TestRunnerHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	rec := &hookRecorder{}
	observability.SetRenderHooks(rec)
	observability.SetCacheHooks(rec)

	c, _ := cache.NewMemoryCache(8)
	r := NewRunner(c, nil, nil)
	p := params.DefaultChart()
	p.Data = []params.Point{{X: "a", Y: 1}}
	r.Chart(context.Background(), p)
	r.Chart(context.Background(), p)

	if rec.renders != 1 || rec.hits != 1 || rec.misses != 1 || rec.sets != 1 {
		t.Errorf("renders=%d hits=%d misses=%d sets=%d", rec.renders, rec.hits, rec.misses, rec.sets)
	}
}

type hookRecorder struct {
	observability.NoopRenderHooks
	observability.NoopCacheHooks
	renders, hits, misses, sets int
}

func (h *hookRecorder) OnRenderStart(context.Context, string)   { h.renders++ }
func (h *hookRecorder) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *hookRecorder) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *hookRecorder) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestVector(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		seed     string
		query    string
		wantCode errors.Code
	}{
		{"chart", KindChart, "", "data[0][x]=A&data[0][y]=5", ""},
		{"mesh", KindMesh, "alice", "text=AL", ""},
		{"mesh without seed", KindMesh, "", "", errors.ErrCodeInvalidSeed},
		{"og", KindOG, "", "", errors.ErrCodeInvalidInput},
		{"bad chart", KindChart, "", "caption=x", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Vector(tt.kind, tt.seed, tt.query)
			if tt.wantCode != "" {
				if got := errors.GetCode(err); got != tt.wantCode {
					t.Fatalf("code = %q, want %q (err %v)", got, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")) || !bytes.Contains(data, []byte("<svg")) {
				t.Errorf("not an SVG document: %.80s", data)
			}
		})
	}
}
