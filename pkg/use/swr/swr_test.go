package swr

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/usekit/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxAge != 0 || cfg.SWR != 0 {
		t.Error("freshness windows should default to zero")
	}
	if !cfg.Initial || !cfg.RevalidateOnFocus {
		t.Error("initial fetch and focus revalidation should default on")
	}
	if cfg.FocusThrottleInterval != 5*time.Second || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected intervals: %s %s", cfg.FocusThrottleInterval, cfg.Timeout)
	}
	if cfg.ShouldTimeoutInvalid {
		t.Error("timeouts should not invalidate by default")
	}
}

func TestNetworkFetch(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("user", f.fetch, WithRevalidateOnFocus(false), WithCache(NewMapCache()))
	})
	defer owner.Dispose()

	if s.Reason.Peek() != ReasonNetwork {
		t.Fatalf("initial reason = %s", s.Reason.Peek())
	}
	waitDone(t, env.Loop, s.Fetch())

	if s.Data.Peek() != "v1" {
		t.Errorf("expected v1, got %q", s.Data.Peek())
	}
	if s.Reason.Peek() != ReasonNetwork {
		t.Errorf("expected network, got %s", s.Reason.Peek())
	}
	now := mock.Now().UnixMilli()
	if s.CachedTime() != now {
		t.Errorf("cached time = %d, want %d", s.CachedTime(), now)
	}
	raw, ok, _ := env.Storage.Get(context.Background(), CachedTimeKeyPrefix+"user")
	if !ok || raw != strconv.FormatInt(now, 10) {
		t.Errorf("cached time not persisted: %q", raw)
	}
}

func TestFreshnessWindows(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   time.Duration
		reason    Reason
		networked bool
	}{
		{"fresh", 30 * time.Second, ReasonFresh, false},
		{"fresh boundary", time.Minute, ReasonFresh, false},
		{"stale", 90 * time.Second, ReasonStale, false},
		{"stale boundary", 2 * time.Minute, ReasonStale, false},
		{"expired", 3 * time.Minute, ReasonNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, mock := newTestEnv()
			env.Idle = nil
			f := &fakeFetcher{}
			var s *SWR[string]
			owner := setup(env, func() {
				_, s = UseSWR("k", f.fetch,
					WithRevalidateOnFocus(false),
					WithMaxAge(time.Minute),
					WithSWR(time.Minute),
					WithCache(NewMapCache()),
				)
			})
			defer owner.Dispose()

			waitDone(t, env.Loop, s.Fetch())
			mock.Add(tt.elapsed)

			done := s.Fetch()
			if !tt.networked {
				select {
				case <-done:
				default:
					t.Fatal("cache hit should settle immediately")
				}
			}
			waitDone(t, env.Loop, done)

			if s.Reason.Peek() != tt.reason {
				t.Errorf("reason = %s, want %s", s.Reason.Peek(), tt.reason)
			}
			if tt.networked && s.Data.Peek() != "v2" {
				t.Errorf("expected network data v2, got %q", s.Data.Peek())
			}
			if !tt.networked && s.Data.Peek() != "v1" {
				t.Errorf("expected cached data v1, got %q", s.Data.Peek())
			}
		})
	}
}

func TestStaleRevalidatesWhenIdle(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch,
			WithRevalidateOnFocus(false),
			WithSWR(time.Minute),
			WithCache(NewMapCache()),
		)
	})
	defer owner.Dispose()

	waitDone(t, env.Loop, s.Fetch())
	firstCached := s.CachedTime()
	mock.Add(10 * time.Second)

	<-s.Fetch()
	if s.Reason.Peek() != ReasonStale || s.Data.Peek() != "v1" {
		t.Fatalf("expected stale v1, got %s %q", s.Reason.Peek(), s.Data.Peek())
	}
	if s.generation != 1 {
		t.Fatal("revalidation should wait for idle")
	}

	// Idle callback starts the revalidation; the next task applies it.
	env.Loop.Flush()
	if s.generation != 2 {
		t.Fatalf("expected idle revalidation, generation %d", s.generation)
	}
	step(t, env.Loop)

	if s.Data.Peek() != "v2" {
		t.Errorf("expected revalidated v2, got %q", s.Data.Peek())
	}
	if s.Reason.Peek() != ReasonStale {
		t.Errorf("background revalidation should keep reason stale, got %s", s.Reason.Peek())
	}
	if s.CachedTime() <= firstCached {
		t.Error("cached time should advance")
	}
}

func TestCacheMissGoesToNetwork(t *testing.T) {
	env, mock := newTestEnv()
	_ = env.Storage.Set(context.Background(), CachedTimeKeyPrefix+"k", strconv.FormatInt(mock.Now().UnixMilli(), 10))

	f := &fakeFetcher{}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch,
			WithRevalidateOnFocus(false),
			WithMaxAge(time.Hour),
			WithCache(NewMapCache()),
		)
	})
	defer owner.Dispose()

	waitDone(t, env.Loop, s.Fetch())
	if f.calls.Load() != 1 || s.Reason.Peek() != ReasonNetwork {
		t.Errorf("persisted time without cached data should refetch (calls=%d reason=%s)", f.calls.Load(), s.Reason.Peek())
	}
}

func TestOutOfOrderResultDiscarded(t *testing.T) {
	env, _ := newTestEnv()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))
	f := &fakeFetcher{gated: true}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch,
			WithRevalidateOnFocus(false),
			WithCache(NewMapCache()),
			WithMetrics(metrics),
		)
	})
	defer owner.Dispose()

	first := s.Revalidate()
	f.waitCalls(t, 1)
	second := s.Revalidate()
	f.waitCalls(t, 2)

	f.release(2)
	waitDone(t, env.Loop, second)
	f.release(1)
	waitDone(t, env.Loop, first)

	if s.Data.Peek() != "v2" {
		t.Errorf("older response overwrote newer data: %q", s.Data.Peek())
	}
	if got := testutil.ToFloat64(metrics.revalidations.WithLabelValues(OutcomeDiscarded)); got != 1 {
		t.Errorf("discarded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.revalidations.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		name    string
		invalid bool
		want    string
		outcome string
	}{
		{"kept", false, "v1", OutcomeSuccess},
		{"invalidated", true, "", OutcomeDiscarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, mock := newTestEnv()
			metrics := NewMetrics(WithRegistry(prometheus.NewRegistry()))
			f := &fakeFetcher{gated: true}
			var (
				s        *SWR[string]
				timeouts []Reason
			)
			owner := setup(env, func() {
				_, s = UseSWR("k", f.fetch,
					WithRevalidateOnFocus(false),
					WithCache(NewMapCache()),
					WithMetrics(metrics),
					WithTimeout(time.Second),
					WithShouldTimeoutInvalid(tt.invalid),
					OnRevalidateTimeout(func(key string, reason Reason, _ *Config) {
						timeouts = append(timeouts, reason)
					}),
				)
			})
			defer owner.Dispose()

			done := s.Revalidate()
			mock.Add(time.Second)
			step(t, env.Loop)
			if len(timeouts) != 1 || timeouts[0] != ReasonNetwork {
				t.Fatalf("timeout hook calls: %v", timeouts)
			}

			f.release(1)
			waitDone(t, env.Loop, done)
			if s.Data.Peek() != tt.want {
				t.Errorf("data = %q, want %q", s.Data.Peek(), tt.want)
			}

			if got := testutil.ToFloat64(metrics.timeouts); got != 1 {
				t.Errorf("timeouts = %v, want 1", got)
			}
			// A timed out revalidation still has exactly one outcome.
			if got := testutil.CollectAndCount(metrics.revalidations); got != 1 {
				t.Errorf("outcome series = %d, want 1", got)
			}
			if got := testutil.ToFloat64(metrics.revalidations.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("%s outcomes = %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestZeroTimeoutDisablesHook(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{gated: true}
	called := false
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch,
			WithRevalidateOnFocus(false),
			WithCache(NewMapCache()),
			WithTimeout(0),
			OnRevalidateTimeout(func(string, Reason, *Config) { called = true }),
		)
	})
	defer owner.Dispose()

	done := s.Revalidate()
	mock.Add(time.Minute)
	env.Loop.Flush()
	f.release(1)
	waitDone(t, env.Loop, done)
	if called {
		t.Error("timeout hook ran with timeout disabled")
	}
}

func TestHooks(t *testing.T) {
	env, _ := newTestEnv()
	boom := stderrors.New("boom")
	f := &fakeFetcher{}
	var (
		s       *SWR[string]
		success []string
		failed  []error
	)
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch,
			WithRevalidateOnFocus(false),
			WithCache(NewMapCache()),
			OnSuccess(func(data string, key string, cfg *Config) {
				success = append(success, key+"="+data)
			}),
			OnError(func(err error, key string, cfg *Config) {
				failed = append(failed, err)
			}),
		)
	})
	defer owner.Dispose()

	waitDone(t, env.Loop, s.Revalidate())
	if len(success) != 1 || success[0] != "k=v1" {
		t.Errorf("OnSuccess calls: %v", success)
	}

	f.err = boom
	cached := s.CachedTime()
	waitDone(t, env.Loop, s.Revalidate())
	if len(failed) != 1 || !stderrors.Is(failed[0], boom) {
		t.Errorf("OnError calls: %v", failed)
	}
	if !stderrors.Is(s.Error.Peek(), boom) {
		t.Errorf("Error = %v", s.Error.Peek())
	}
	if s.Data.Peek() != "v1" {
		t.Error("error should keep the previous data")
	}
	if s.CachedTime() != cached {
		t.Error("error should not touch the cached time")
	}
}

func TestSharedDefaultCache(t *testing.T) {
	env, mock := newTestEnv()
	env.Idle = nil
	key := "shared-" + t.Name()
	f := &fakeFetcher{}

	var a, b *SWR[string]
	owner := setup(env, func() {
		_, a = UseSWR(key, f.fetch, WithRevalidateOnFocus(false), WithMaxAge(time.Minute))
		_, b = UseSWR(key, f.fetch, WithRevalidateOnFocus(false), WithMaxAge(time.Minute))
	})
	defer owner.Dispose()

	waitDone(t, env.Loop, a.Fetch())
	// b learns the cached time through the storage event.
	env.Loop.Flush()
	mock.Add(time.Second)
	<-b.Fetch()
	if b.Reason.Peek() != ReasonFresh || b.Data.Peek() != "v1" {
		t.Errorf("second instance should read the shared cache: %s %q", b.Reason.Peek(), b.Data.Peek())
	}
}

func TestInitialFalseLocksFocusRevalidation(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{}
	var (
		doFetch func()
		s       *SWR[string]
	)
	owner := setup(env, func() {
		doFetch, s = UseSWR("k", f.fetch, WithInitial(false), WithCache(NewMapCache()))
	})
	defer owner.Dispose()
	owner.Mount()

	env.Window.Blur()
	env.Window.Focus()
	if s.generation != 0 {
		t.Fatal("locked hook fetched on focus")
	}

	doFetch()
	if s.generation != 1 {
		t.Fatalf("doFetch should fetch, generation %d", s.generation)
	}
	step(t, env.Loop)

	// Leave the fresh window so the focus fetch hits the network.
	mock.Add(time.Millisecond)
	env.Window.Blur()
	env.Window.Focus()
	if s.generation != 2 {
		t.Errorf("unlocked hook should refetch on focus, generation %d", s.generation)
	}
}

func TestFocusRevalidationThrottled(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch, WithCache(NewMapCache()), WithFocusThrottleInterval(5*time.Second))
	})
	defer owner.Dispose()
	owner.Mount()

	if s.generation != 1 {
		t.Fatalf("initial fetch expected, generation %d", s.generation)
	}
	step(t, env.Loop)
	env.Loop.Flush()

	env.Window.Blur()
	env.Window.Focus()
	env.Window.SetVisibility("hidden")
	env.Window.SetVisibility("visible")
	if s.generation != 1 {
		t.Fatalf("focus inside the interval should be throttled, generation %d", s.generation)
	}

	mock.Add(5 * time.Second)
	step(t, env.Loop)
	if s.generation != 2 {
		t.Errorf("trailing focus fetch expected, generation %d", s.generation)
	}
}

func TestFocusIgnoredWhileHidden(t *testing.T) {
	env, mock := newTestEnv()
	f := &fakeFetcher{}
	var s *SWR[string]
	owner := setup(env, func() {
		_, s = UseSWR("k", f.fetch, WithCache(NewMapCache()), WithFocusThrottleInterval(time.Second))
	})
	defer owner.Dispose()
	step(t, env.Loop)

	mock.Add(time.Second)
	env.Loop.Flush()
	env.Window.SetVisibility("hidden")
	env.Window.Blur()
	env.Window.Focus()
	if s.generation != 1 {
		t.Errorf("hidden window should not refetch, generation %d", s.generation)
	}
}

func TestErrRevalidateTimeout(t *testing.T) {
	if errors.Code(ErrRevalidateTimeout) != "U002" {
		t.Errorf("unexpected code %q", errors.Code(ErrRevalidateTimeout))
	}
}
