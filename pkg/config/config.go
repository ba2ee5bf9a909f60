// Package config loads the server configuration.
//
// Values come from three layers, later ones winning: [Default], an optional
// TOML file read by [Load], and MESHY_* environment variables applied by
// [Config.ApplyEnv]. Command-line flags are applied by the CLI on top.
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//	trust_proxy = false
//
//	[assets]
//	dir = "assets"
//
//	[rate_limit]
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/meshy-studio/meshy/pkg/errors"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Assets    AssetsConfig    `toml:"assets"`
	Cache     CacheConfig     `toml:"cache"`
	RateLimit RateLimitConfig `toml:"rate_limit"`

	// PublicURL is the externally visible origin used in embed snippets.
	PublicURL string `toml:"public_url"`
}

type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`

	// TrustProxy takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `toml:"trust_proxy"`
}

type AssetsConfig struct {
	Dir       string `toml:"dir"`
	CacheSize int    `toml:"cache_size"`
}

// CacheConfig selects the render output cache. Backend is "memory",
// "redis" or "none"; redis reuses RateLimit.RedisURL.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Entries int    `toml:"entries"`
}

type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	PerIPHour     int64  `toml:"per_ip_hour"`
	PerIPUAMinute int64  `toml:"per_ip_ua_minute"`
	RedisURL      string `toml:"redis_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Assets: AssetsConfig{Dir: "assets", CacheSize: 6},
		Cache:  CacheConfig{Backend: "memory", Entries: 512},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			PerIPHour:     100,
			PerIPUAMinute: 50,
		},
		PublicURL: "http://localhost:8080",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MESHY_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("MESHY_ASSETS_DIR"); ok && v != "" {
		c.Assets.Dir = v
	}
	if v, ok := lookup("MESHY_REDIS_URL"); ok && v != "" {
		c.RateLimit.RedisURL = v
	}
	if v, ok := lookup("MESHY_PUBLIC_URL"); ok && v != "" {
		c.PublicURL = v
	}
	if v, ok := lookup("MESHY_CACHE"); ok && v != "" {
		c.Cache.Backend = v
	}
	if v, ok := lookup("MESHY_RATE_LIMIT"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "MESHY_RATE_LIMIT must be a boolean, got %q", v)
		}
		c.RateLimit.Enabled = enabled
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		problems = append(problems, "server timeouts cannot be negative")
	}
	if c.Assets.Dir == "" {
		problems = append(problems, "assets.dir is required")
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.RateLimit.RedisURL == "" {
			problems = append(problems, "cache.backend redis needs rate_limit.redis_url")
		}
	default:
		problems = append(problems, fmt.Sprintf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend))
	}
	if c.RateLimit.PerIPHour < 0 || c.RateLimit.PerIPUAMinute < 0 {
		problems = append(problems, "rate limits cannot be negative")
	}
	if c.RateLimit.RedisURL != "" {
		if u, err := url.Parse(c.RateLimit.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			problems = append(problems, "rate_limit.redis_url must be a redis:// or rediss:// URL")
		}
	}
	if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "public_url must be an absolute URL")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
