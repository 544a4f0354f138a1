package use

import (
	"context"
	"sync/atomic"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

// AsyncStatus is the lifecycle state of an async operation.
type AsyncStatus string

const (
	StatusPending   AsyncStatus = "pending"
	StatusFulfilled AsyncStatus = "fulfilled"
	StatusRejected  AsyncStatus = "rejected"
)

// AsyncState wraps an asynchronous function in reactive state.
type AsyncState[T any] struct {
	Data  *reactive.Ref[T]
	Error *reactive.Ref[error]
	State *reactive.Ref[AsyncStatus]

	fn  func(context.Context) (T, error)
	env *host.Env
	ctx context.Context
	gen atomic.Uint64
}

// AsyncOption configures UseAsyncState.
type AsyncOption func(*asyncConfig)

type asyncConfig struct {
	immediate bool
}

// Immediate controls whether fn runs during setup. The default is true.
func Immediate(run bool) AsyncOption {
	return func(c *asyncConfig) {
		c.immediate = run
	}
}

// UseAsyncState runs fn off the loop and mirrors its outcome into Data,
// Error and State. Only the latest run's outcome is applied. fn receives
// the owner's context, which is cancelled on dispose.
func UseAsyncState[T any](fn func(context.Context) (T, error), opts ...AsyncOption) *AsyncState[T] {
	cfg := asyncConfig{immediate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	s := &AsyncState[T]{
		Data:  reactive.NewRef(zero),
		Error: reactive.NewRef[error](nil),
		State: reactive.NewRef(StatusPending),
		fn:    fn,
		env:   host.Current(),
		ctx:   ownerContext(),
	}
	if cfg.immediate {
		s.Run()
	}
	return s
}

// Run starts fn again. The returned channel closes once this run's outcome
// has been applied or discarded in favour of a newer run.
func (s *AsyncState[T]) Run() <-chan struct{} {
	id := s.gen.Add(1)
	done := make(chan struct{})
	s.State.Set(StatusPending)

	go func() {
		value, err := s.fn(s.ctx)
		s.env.Loop.Dispatch(func() {
			defer close(done)
			if id != s.gen.Load() {
				return
			}
			if err != nil {
				s.Error.Set(err)
				s.State.Set(StatusRejected)
				return
			}
			reactive.Batch(func() {
				s.Data.Set(value)
				s.Error.Set(nil)
				s.State.Set(StatusFulfilled)
			})
		})
	}()
	return done
}

// ownerContext returns the current owner's context, or Background outside
// an owner.
func ownerContext() context.Context {
	if owner := reactive.CurrentOwner(); owner != nil {
		return owner.Context()
	}
	return context.Background()
}
