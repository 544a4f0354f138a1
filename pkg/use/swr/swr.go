package swr

import (
	"context"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
	"github.com/vango-dev/usekit/pkg/use"
)

// CachedTimeKeyPrefix prefixes the storage key holding the time of the last
// successful fetch, in unix milliseconds.
const CachedTimeKeyPrefix = "USE_SWR_CACHED_TIME_"

// ErrRevalidateTimeout is recorded on revalidation spans that exceed
// Config.Timeout.
var ErrRevalidateTimeout = errors.New("U002")

// Fetcher loads the data for a key. ctx is cancelled when the owning
// component is disposed.
type Fetcher[D any] func(ctx context.Context) (D, error)

// SWR is the state of one UseSWR call.
type SWR[D any] struct {
	Data   *reactive.Ref[D]
	Error  *reactive.Ref[error]
	Reason *reactive.Ref[Reason]

	key    string
	fetch  Fetcher[D]
	cfg    *Config
	env    *host.Env
	ctx    context.Context
	logger *slog.Logger

	cachedTime *reactive.Ref[int64]
	maxAge     *reactive.Computed[int64]
	swr        *reactive.Computed[int64]

	// generation tags revalidations; only the latest may apply its result.
	// Loop only.
	generation uint64
	lock       bool
}

// UseSWR fetches key with stale-while-revalidate semantics. doFetch
// releases the lock set by WithInitial(false) and fetches.
func UseSWR[D any](key string, fetch Fetcher[D], opts ...Option) (doFetch func(), s *SWR[D]) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	env := host.Current()
	var zero D
	s = &SWR[D]{
		Data:   reactive.NewRef(zero),
		Error:  reactive.NewRef[error](nil),
		Reason: reactive.NewRef(ReasonNetwork),
		key:    key,
		fetch:  fetch,
		cfg:    &cfg,
		env:    env,
		ctx:    context.Background(),
		logger: env.Logger.With("component", "swr", "key", key),
	}
	if owner := reactive.CurrentOwner(); owner != nil {
		s.ctx = owner.Context()
	}

	s.cachedTime = use.UseLocalStorage[int64](CachedTimeKeyPrefix+key, 0)
	s.maxAge = reactive.NewComputed(func() int64 {
		return s.cachedTime.Get() + cfg.MaxAge.Milliseconds()
	})
	s.swr = reactive.NewComputed(func() int64 {
		return s.maxAge.Get() + cfg.SWR.Milliseconds()
	})

	s.lock = !cfg.Initial
	if cfg.RevalidateOnFocus {
		onFocus := use.Throttle(func() { s.performFetch() }, cfg.FocusThrottleInterval)
		visible := use.UseVisibilityState()
		focused := use.UseWindowFocus()
		reactive.Watch(func() [2]bool {
			return [2]bool{visible.Get(), focused.Get()}
		}, func(v, _ [2]bool) {
			if !s.lock && v[0] && v[1] {
				onFocus.Call()
			}
		}, reactive.LazyIf(!cfg.Initial))
		reactive.OnUnmounted(onFocus.Cancel)
	}

	return func() { s.Fetch() }, s
}

// Key returns the key this instance fetches.
func (s *SWR[D]) Key() string {
	return s.key
}

// CachedTime returns the unix millisecond time of the last successful
// fetch, or 0.
func (s *SWR[D]) CachedTime() int64 {
	return s.cachedTime.Peek()
}

// Fetch releases the initial lock and serves the request from the window
// the current time falls in. The channel closes once Data and Reason are
// settled; for a stale hit that is before the background revalidation
// finishes.
func (s *SWR[D]) Fetch() <-chan struct{} {
	s.lock = false
	return s.performFetch()
}

// Revalidate refetches unconditionally. The channel closes once the result
// has been applied or dropped.
func (s *SWR[D]) Revalidate() <-chan struct{} {
	done := make(chan struct{})
	s.revalidate(func() { close(done) })
	return done
}

func (s *SWR[D]) performFetch() <-chan struct{} {
	start := s.env.NowMillis()

	if start <= s.maxAge.Peek() {
		if data, ok := s.cached(); ok {
			reactive.Batch(func() {
				s.Data.Set(data)
				s.Reason.Set(ReasonFresh)
			})
			s.cfg.Metrics.recordRequest(ReasonFresh)
			return closedChan()
		}
	}

	if start <= s.swr.Peek() {
		if data, ok := s.cached(); ok {
			reactive.Batch(func() {
				s.Reason.Set(ReasonStale)
				s.Data.Set(data)
			})
			s.cfg.Metrics.recordRequest(ReasonStale)
			s.env.RequestIdle(func() { s.revalidate(nil) })
			return closedChan()
		}
	}

	s.cfg.Metrics.recordRequest(ReasonNetwork)
	done := make(chan struct{})
	s.revalidate(func() {
		s.Reason.Set(ReasonNetwork)
		close(done)
	})
	return done
}

func (s *SWR[D]) cached() (D, bool) {
	v, ok := s.cfg.cache().Get(s.key)
	if !ok {
		var zero D
		return zero, false
	}
	data, ok := v.(D)
	return data, ok
}

// revalidate runs fetch off the loop and applies its result on the loop,
// then calls then.
func (s *SWR[D]) revalidate(then func()) {
	s.generation++
	id := s.generation
	started := s.env.Now()
	logger := s.logger.With("request", id)

	ctx, span := s.cfg.tracer().Start(s.ctx, "swr.revalidate", trace.WithAttributes(
		attribute.String("swr.key", s.key),
		attribute.String("swr.request", strconv.FormatUint(id, 10)),
	))

	// The timeout hook runs in its own scope so it can be torn down as soon
	// as this request settles, independent of the component lifetime.
	timedOut := false
	scope := reactive.NewOwner(nil)
	host.Provide(scope, s.env)
	var stopTimeout func()
	reactive.WithOwner(scope, func() {
		stopTimeout, _, _ = use.UseTimeoutFn(func() {
			reason := s.Reason.Peek()
			logger.Warn("revalidation timed out", "timeout", s.cfg.Timeout, "reason", reason)
			span.RecordError(ErrRevalidateTimeout)
			s.cfg.Metrics.recordTimeout()
			if s.cfg.onRevalidateTimeout != nil {
				s.cfg.onRevalidateTimeout(s.key, reason, s.cfg)
			}
			if s.cfg.ShouldTimeoutInvalid {
				timedOut = true
			}
		}, s.cfg.Timeout)
	})
	scope.Mount()
	if s.cfg.Timeout == 0 {
		stopTimeout()
	}

	finish := func(outcome string) {
		span.SetAttributes(attribute.String("swr.outcome", outcome))
		span.End()
		s.cfg.Metrics.recordOutcome(outcome)
		if then != nil {
			then()
		}
	}

	go func() {
		data, err := s.fetch(ctx)
		s.env.Loop.Dispatch(func() {
			stopTimeout()
			scope.Dispose()
			s.cfg.Metrics.recordFetch(s.env.Now().Sub(started))

			if id < s.generation || timedOut {
				logger.Debug("revalidation result dropped", "latest", s.generation, "timed_out", timedOut)
				finish(OutcomeDiscarded)
				return
			}

			if err != nil {
				logger.Error("revalidation failed", "error", errors.FromError(err, "U005"))
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				s.Error.Set(err)
				if s.cfg.onError != nil {
					s.cfg.onError(err, s.key, s.cfg)
				}
				finish(OutcomeError)
				return
			}

			s.Data.Set(data)
			s.cfg.cache().Set(s.key, data)
			if s.cfg.onSuccess != nil {
				s.cfg.onSuccess(data, s.key, s.cfg)
			}
			s.cachedTime.Set(s.env.NowMillis())
			finish(OutcomeSuccess)
		})
	}()
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
