package ratelimit

import (
	"context"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/observability"
)

// Default budgets for the mesh endpoint.
const (
	DefaultPerIPHour     = 100
	DefaultPerIPUAMinute = 50
)

// Rule is one budget: at most Limit requests per Period for each distinct
// value of Key.
type Rule struct {
	Name   string
	Limit  int64
	Period time.Duration
	Key    func(r *http.Request) string
}

// ByIP keys requests by client address.
func ByIP(r *http.Request) string {
	return ClientIP(r)
}

// ByIPAndUserAgent keys requests by client address and User-Agent.
func ByIPAndUserAgent(r *http.Request) string {
	return ClientIP(r) + "|" + r.UserAgent()
}

// ClientIP returns the host part of r.RemoteAddr. The server mounts chi's
// RealIP ahead of the limiter only when server.trust_proxy is set, so by
// default this is the socket peer.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// DefaultRules returns the per-IP hourly and per-IP+User-Agent per-minute
// budgets. A non-positive limit disables that rule.
func DefaultRules(perIPHour, perIPUAMinute int64) []Rule {
	var rules []Rule
	if perIPHour > 0 {
		rules = append(rules, Rule{Name: "ip", Limit: perIPHour, Period: time.Hour, Key: ByIP})
	}
	if perIPUAMinute > 0 {
		rules = append(rules, Rule{Name: "ip-ua", Limit: perIPUAMinute, Period: time.Minute, Key: ByIPAndUserAgent})
	}
	return rules
}

// Limiter checks requests against a set of rules.
type Limiter struct {
	counter Counter
	rules   []Rule
	logger  *log.Logger
}

// New returns a limiter enforcing rules with counter.
func New(counter Counter, logger *log.Logger, rules ...Rule) *Limiter {
	if logger == nil {
		logger = log.Default()
	}
	return &Limiter{counter: counter, rules: rules, logger: logger}
}

// Check counts r against every rule and returns a *errors.RateLimitedError
// for the first exhausted one. Counter failures let the request through.
func (l *Limiter) Check(ctx context.Context, r *http.Request) error {
	for _, rule := range l.rules {
		key := rule.Name + ":" + rule.Key(r)
		count, reset, err := l.counter.Increment(ctx, key, rule.Period)
		if err != nil {
			l.logger.Warn("rate limit counter failed", "rule", rule.Name, "err", err)
			continue
		}
		if count > rule.Limit {
			observability.RateLimit().OnRejected(ctx, rule.Name)
			return &errors.RateLimitedError{
				RetryAfter: int(math.Ceil(reset.Seconds())),
				Rule:       rule.Name,
			}
		}
		observability.RateLimit().OnAllowed(ctx, rule.Name)
	}
	return nil
}

// Middleware rejects over-budget requests with onReject and passes the
// rest to the next handler.
func (l *Limiter) Middleware(onReject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := l.Check(r.Context(), r); err != nil {
				onReject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Close releases the counter.
func (l *Limiter) Close() error {
	return l.counter.Close()
}
