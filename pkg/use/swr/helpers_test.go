package swr

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

func newTestEnv() (*host.Env, *clock.Mock) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	env := host.NewEnv()
	env.Clock = mock
	return env, mock
}

func setup(env *host.Env, fn func()) *reactive.Owner {
	owner := reactive.NewOwner(nil)
	host.Provide(owner, env)
	reactive.WithOwner(owner, fn)
	return owner
}

func step(t *testing.T, l *host.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Step(ctx); err != nil {
		t.Fatalf("no task dispatched: %v", err)
	}
}

func waitDone(t *testing.T, l *host.Loop, done <-chan struct{}) {
	t.Helper()
	for {
		select {
		case <-done:
			return
		default:
		}
		step(t, l)
	}
}

// fakeFetcher returns "v1", "v2", ... on successive calls. When gated, each
// call blocks until release is called with its index.
type fakeFetcher struct {
	calls atomic.Int32
	err   error

	mu    sync.Mutex
	gates map[int]chan struct{}
	gated bool
}

func (f *fakeFetcher) gate(n int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[int]chan struct{})
	}
	if f.gates[n] == nil {
		f.gates[n] = make(chan struct{})
	}
	return f.gates[n]
}

func (f *fakeFetcher) release(n int) {
	close(f.gate(n))
}

func (f *fakeFetcher) waitCalls(t *testing.T, n int32) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for f.calls.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("fetch called %d times, want %d", f.calls.Load(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeFetcher) fetch(ctx context.Context) (string, error) {
	n := int(f.calls.Add(1))
	if f.gated {
		<-f.gate(n)
	}
	if f.err != nil {
		return "", f.err
	}
	return "v" + string(rune('0'+n)), nil
}
