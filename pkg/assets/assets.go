// Package assets loads OG card template images from disk.
//
// Templates are JPEG files named {template}-{light|dark}.jpg inside a single
// directory. A [Store] decodes each file once and keeps the decoded image in
// an LRU cache, keyed by the file's [Store.Stamp] so a template rewritten on
// disk is decoded again. Cached images are shared between requests and must
// be treated as read-only; callers that draw on a template clone it first.
package assets

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/meshy-studio/meshy/pkg/errors"
)

// DefaultCacheSize holds every stock template (three templates, two modes).
const DefaultCacheSize = 6

// Store resolves template names to decoded images.
type Store struct {
	dir    string
	images *lru.Cache[string, entry]
	loads  singleflight.Group
}

type entry struct {
	img   image.Image
	stamp string
}

// NewStore returns a store reading from dir that caches up to size decoded
// images.
func NewStore(dir string, size int) (*Store, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	images, err := lru.New[string, entry](size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create asset cache")
	}
	return &Store{dir: dir, images: images}, nil
}

// Dir returns the directory templates are read from.
func (s *Store) Dir() string { return s.dir }

// Template returns the decoded image for the file name. A missing file is a
// TEMPLATE_NOT_FOUND error. Concurrent misses for the same file version
// share one decode.
func (s *Store) Template(ctx context.Context, name string) (image.Image, error) {
	stamp, err := s.Stamp(name)
	if err != nil {
		return nil, err
	}
	if e, ok := s.images.Get(name); ok && e.stamp == stamp {
		return e.img, nil
	}

	v, err, _ := s.loads.Do(name+"@"+stamp, func() (any, error) {
		if e, ok := s.images.Get(name); ok && e.stamp == stamp {
			return e.img, nil
		}
		img, err := s.load(name)
		if err != nil {
			return nil, err
		}
		s.images.Add(name, entry{img: img, stamp: stamp})
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Stamp identifies the version of name on disk by modification time and
// size. Render caches fold it into OG keys.
func (s *Store) Stamp(name string) (string, error) {
	if err := errors.ValidateAssetName(name); err != nil {
		return "", err
	}
	fi, err := os.Stat(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodeTemplateNotFound, "template %q not found", name)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "stat template %q", name)
	}
	return strconv.FormatInt(fi.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(fi.Size(), 36), nil
}

func (s *Store) load(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeTemplateNotFound, "template %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open template %q", name)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "decode template %q", name)
	}
	return img, nil
}

// Cached reports whether name is currently held in memory.
func (s *Store) Cached(name string) bool {
	return s.images.Contains(name)
}

// Purge drops every cached image, forcing the next lookup to reread disk.
func (s *Store) Purge() {
	s.images.Purge()
}
