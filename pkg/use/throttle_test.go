package use

import (
	"testing"
	"time"
)

func newThrottle(t *testing.T, fn func()) (*Throttled, func(time.Duration)) {
	t.Helper()
	env, mock := newTestEnv()
	var th *Throttled
	owner := setup(env, func() {
		th = Throttle(fn, time.Second)
	})
	t.Cleanup(owner.Dispose)
	advance := func(d time.Duration) {
		mock.Add(d)
		step(t, env.Loop)
	}
	return th, advance
}

func TestThrottleLeadingAndTrailing(t *testing.T) {
	calls := 0
	th, advance := newThrottle(t, func() { calls++ })

	th.Call()
	if calls != 1 {
		t.Fatalf("leading call expected, got %d", calls)
	}
	th.Call()
	th.Call()
	if calls != 1 || !th.Pending() {
		t.Fatalf("calls inside the interval should collapse (calls=%d)", calls)
	}

	advance(time.Second)
	if calls != 2 {
		t.Fatalf("expected trailing call, got %d", calls)
	}

	// The trailing call opened a new interval.
	th.Call()
	if calls != 2 {
		t.Fatal("call right after trailing edge should wait")
	}
	advance(time.Second)
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestThrottleQuietIntervalEnds(t *testing.T) {
	calls := 0
	th, advance := newThrottle(t, func() { calls++ })

	th.Call()
	advance(time.Second)
	if calls != 1 {
		t.Fatalf("no trailing call expected, got %d", calls)
	}
	th.Call()
	if calls != 2 {
		t.Errorf("call after quiet interval should be leading, got %d", calls)
	}
}

func TestThrottleCancelAndFlush(t *testing.T) {
	calls := 0
	th, _ := newThrottle(t, func() { calls++ })

	th.Call()
	th.Call()
	th.Cancel()
	if th.Pending() {
		t.Fatal("cancel should drop the trailing call")
	}
	th.Call()
	if calls != 2 {
		t.Fatalf("call after cancel should be leading, got %d", calls)
	}

	th.Call()
	th.Flush()
	if calls != 3 {
		t.Errorf("flush should run the pending call, got %d", calls)
	}
	th.Flush()
	if calls != 3 {
		t.Error("flush with nothing pending should not call")
	}
}

