package params

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/meshy-studio/meshy/pkg/errors"
)

const (
	// maxDepth bounds bracket nesting; deeper segments stay part of the
	// last key verbatim.
	maxDepth = 5
	// maxIndex bounds numeric keys that turn a map into a list.
	maxIndex = 1000
)

// Values is a decoded query string. Leaves are strings; bracketed keys
// produce nested Values and ordered []any lists.
type Values map[string]any

// ParseQuery decodes a raw query string with bracket syntax:
//
//	caption=Sales           -> {"caption": "Sales"}
//	data[0][x]=A&data[0][y]=5 -> {"data": [{"x": "A", "y": "5"}]}
//	data[][x]=A&data[][y]=5 -> {"data": [{"x": "A", "y": "5"}]}
//
// Maps whose keys are all small non-negative integers become lists ordered
// by index, with gaps removed. When a leaf is repeated the last value wins.
func ParseQuery(raw string) (Values, error) {
	raw = strings.TrimPrefix(raw, "?")
	root := map[string]any{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed query key %q", k)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed value for %q", key)
		}
		path := splitKey(key)
		if path[0] == "" {
			continue
		}
		insert(root, path, val)
	}
	for k, v := range root {
		root[k] = compact(v)
	}
	return Values(root), nil
}

// splitKey turns "a[b][c]" into ["a", "b", "c"].
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 || len(path) > maxDepth {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	if rest != "" {
		path = append(path, rest)
	}
	return path
}

func insert(node map[string]any, path []string, val string) {
	head := path[0]
	if len(path) == 1 {
		node[head] = val
		return
	}
	child, ok := node[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		node[head] = child
	}
	next := path[1:]
	if next[0] == "" {
		next = append([]string{pushIndex(child, len(next) > 1)}, next[1:]...)
	}
	insert(child, next, val)
}

// pushIndex picks the list slot for an empty "[]" segment. Scalars are
// appended. Nested keys merge into the first element while it is an
// object, so data[][x]=A&data[][y]=5 yields one point.
func pushIndex(list map[string]any, nested bool) string {
	if nested {
		first, ok := list["0"]
		if !ok {
			return "0"
		}
		if _, isMap := first.(map[string]any); isMap {
			return "0"
		}
	}
	return strconv.Itoa(len(list))
}

// compact converts index-keyed maps into lists, depth first.
func compact(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = compact(child)
	}

	indices := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i > maxIndex || strconv.Itoa(i) != k {
			return m
		}
		indices = append(indices, i)
	}
	if len(indices) == 0 {
		return m
	}
	slices.Sort(indices)
	list := make([]any, len(indices))
	for n, i := range indices {
		list[n] = m[strconv.Itoa(i)]
	}
	return list
}
