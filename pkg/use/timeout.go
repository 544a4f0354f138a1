package use

import (
	"sync"
	"time"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

// UseTimeout returns a flag that turns true d after the timer starts.
//
// Inside an owner the timer starts when the owner mounts and is cleared
// when it is disposed; outside an owner it starts immediately. clear
// resets the flag and stops the timer; runAgain clears and restarts it.
//
// A negative d panics with error U001.
func UseTimeout(d time.Duration) (ready *reactive.Ref[bool], clear func(), runAgain func()) {
	if d < 0 {
		panic(errors.New("U001").WithDetailf("UseTimeout received %s", d))
	}

	env := host.Current()
	ready = reactive.NewRef(false)

	var (
		mu    sync.Mutex
		timer *host.Timer
	)
	clear = func() {
		ready.Set(false)
		mu.Lock()
		t := timer
		timer = nil
		mu.Unlock()
		t.Stop()
	}
	setTimer := func() {
		clear()
		t := env.AfterFunc(d, func() {
			ready.Set(true)
		})
		mu.Lock()
		timer = t
		mu.Unlock()
	}

	if owner := reactive.CurrentOwner(); owner != nil {
		owner.OnMounted(setTimer)
		owner.OnCleanup(clear)
	} else {
		setTimer()
	}

	return ready, clear, setTimer
}

// UseTimeoutFn calls cb once the timeout matures. It returns the same
// controls as UseTimeout; runAgain re-arms the timer so cb fires again.
func UseTimeoutFn(cb func(), d time.Duration) (clear func(), runAgain func(), ready *reactive.Ref[bool]) {
	ready, clear, runAgain = UseTimeout(d)
	reactive.Watch(ready.Get, func(mature, _ bool) {
		if mature {
			cb()
		}
	}, reactive.Lazy())
	return clear, runAgain, ready
}
