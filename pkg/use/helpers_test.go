package use

import (
	"context"
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

// setup runs fn as the setup of a component bound to env. The returned
// owner is not mounted yet.
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
