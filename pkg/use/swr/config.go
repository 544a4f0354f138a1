package swr

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Reason tells where the current Data came from.
type Reason string

const (
	ReasonFresh   Reason = "fresh"
	ReasonStale   Reason = "stale"
	ReasonNetwork Reason = "network"
)

const defaultTracerName = "usekit/swr"

// Config controls a UseSWR instance.
type Config struct {
	// MaxAge is how long after a successful fetch the cache is served
	// without revalidating.
	MaxAge time.Duration

	// SWR is how long after MaxAge the cache is still served while a
	// background revalidation runs.
	SWR time.Duration

	// Initial fetches during setup. When false nothing is fetched until
	// doFetch is called.
	Initial bool

	// RevalidateOnFocus refetches when the window becomes visible and
	// focused, at most once per FocusThrottleInterval.
	RevalidateOnFocus     bool
	FocusThrottleInterval time.Duration

	// Timeout after which OnRevalidateTimeout fires. Zero disables it.
	Timeout time.Duration

	// ShouldTimeoutInvalid drops results of requests that hit Timeout.
	ShouldTimeoutInvalid bool

	Cache   Cache
	Metrics *Metrics
	Tracer  trace.Tracer

	onSuccess           func(data any, key string, cfg *Config)
	onError             func(err error, key string, cfg *Config)
	onRevalidateTimeout func(key string, reason Reason, cfg *Config)
}

// DefaultConfig returns the defaults: no freshness windows, initial fetch,
// focus revalidation throttled to 5s and a 5s timeout.
func DefaultConfig() Config {
	return Config{
		Initial:               true,
		RevalidateOnFocus:     true,
		FocusThrottleInterval: 5 * time.Second,
		Timeout:               5 * time.Second,
	}
}

func (c *Config) cache() Cache {
	if c.Cache != nil {
		return c.Cache
	}
	return DefaultCache()
}

func (c *Config) tracer() trace.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}
	return otel.Tracer(defaultTracerName)
}

// Option configures UseSWR.
type Option func(*Config)

// WithConfig replaces the scalar settings with base. Hooks already set are
// kept.
func WithConfig(base Config) Option {
	return func(c *Config) {
		success, fail, timeout := c.onSuccess, c.onError, c.onRevalidateTimeout
		*c = base
		if c.onSuccess == nil {
			c.onSuccess = success
		}
		if c.onError == nil {
			c.onError = fail
		}
		if c.onRevalidateTimeout == nil {
			c.onRevalidateTimeout = timeout
		}
	}
}

// WithMaxAge sets the fresh window.
func WithMaxAge(d time.Duration) Option {
	return func(c *Config) {
		c.MaxAge = d
	}
}

// WithSWR sets the stale-while-revalidate window.
func WithSWR(d time.Duration) Option {
	return func(c *Config) {
		c.SWR = d
	}
}

// WithInitial sets whether the hook fetches during setup.
func WithInitial(initial bool) Option {
	return func(c *Config) {
		c.Initial = initial
	}
}

// WithRevalidateOnFocus enables or disables focus revalidation.
func WithRevalidateOnFocus(enabled bool) Option {
	return func(c *Config) {
		c.RevalidateOnFocus = enabled
	}
}

// WithFocusThrottleInterval sets the minimum gap between focus refetches.
func WithFocusThrottleInterval(d time.Duration) Option {
	return func(c *Config) {
		c.FocusThrottleInterval = d
	}
}

// WithTimeout sets the revalidation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithShouldTimeoutInvalid sets whether timed out requests are dropped.
func WithShouldTimeoutInvalid(invalid bool) Option {
	return func(c *Config) {
		c.ShouldTimeoutInvalid = invalid
	}
}

// WithCache uses cache instead of the process-wide one.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.Cache = cache
	}
}

// WithMetrics records request and revalidation metrics to m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for revalidation spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// OnSuccess is called after a revalidation result has been applied.
func OnSuccess[D any](fn func(data D, key string, cfg *Config)) Option {
	return func(c *Config) {
		c.onSuccess = func(data any, key string, cfg *Config) {
			if d, ok := data.(D); ok {
				fn(d, key, cfg)
			}
		}
	}
}

// OnError is called after a revalidation error has been applied.
func OnError(fn func(err error, key string, cfg *Config)) Option {
	return func(c *Config) {
		c.onError = fn
	}
}

// OnRevalidateTimeout is called when a revalidation exceeds Timeout.
// reason is the Reason at the moment the timeout fired.
func OnRevalidateTimeout(fn func(key string, reason Reason, cfg *Config)) Option {
	return func(c *Config) {
		c.onRevalidateTimeout = fn
	}
}
