package buildinfo

import (
	"strings"
	"testing"
)

func TestCacheScope(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	Version, Commit = "dev", "none"
	if got := CacheScope(); got != "dev:" {
		t.Errorf("dev scope = %q", got)
	}

	Version, Commit = "v1.2.0", "0123456789abcdef"
	if got := CacheScope(); got != "v1.2.0-0123456:" {
		t.Errorf("release scope = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), Version) {
		t.Error("template should include the version")
	}
	if !strings.HasPrefix(String(), "version: ") {
		t.Errorf("String() = %q", String())
	}
}
