package reactive

import (
	"errors"
	"testing"
)

func TestRefGetSet(t *testing.T) {
	r := NewRef(1)
	if r.Get() != 1 {
		t.Fatalf("expected 1, got %d", r.Get())
	}
	r.Set(2)
	if r.Peek() != 2 {
		t.Errorf("expected 2, got %d", r.Peek())
	}
	r.Update(func(n int) int { return n * 10 })
	if r.Peek() != 20 {
		t.Errorf("expected 20, got %d", r.Peek())
	}
}

func TestRefSkipsEqualWrites(t *testing.T) {
	r := NewRef("a")
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = r.Get()
		runs++
		return nil
	})
	defer e.Stop()

	r.Set("a")
	if runs != 1 {
		t.Errorf("equal write should not notify, got %d runs", runs)
	}
	r.Set("b")
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestRefErrorEquality(t *testing.T) {
	errA := errors.New("a")
	r := NewRef[error](nil)
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = r.Get()
		runs++
		return nil
	})
	defer e.Stop()

	r.Set(errA)
	r.Set(errA)
	r.Set(nil)
	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
}

func TestRefWithEquals(t *testing.T) {
	r := NewRef([]int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = r.Get()
		runs++
		return nil
	})
	defer e.Stop()

	r.Set([]int{2})
	if runs != 1 {
		t.Errorf("custom equality should suppress notify, got %d runs", runs)
	}
}

func TestPeekDoesNotTrack(t *testing.T) {
	r := NewRef(0)
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = r.Peek()
		runs++
		return nil
	})
	defer e.Stop()

	r.Set(1)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, got %d runs", runs)
	}
}

func TestComputed(t *testing.T) {
	count := NewRef(2)
	computes := 0
	doubled := NewComputed(func() int {
		computes++
		return count.Get() * 2
	})

	if computes != 0 {
		t.Fatal("computed should be lazy")
	}
	if doubled.Get() != 4 {
		t.Errorf("expected 4, got %d", doubled.Get())
	}
	_ = doubled.Get()
	if computes != 1 {
		t.Errorf("expected cached value, got %d computes", computes)
	}

	count.Set(5)
	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
	if computes != 2 {
		t.Errorf("expected 2 computes, got %d", computes)
	}
}

func TestComputedChain(t *testing.T) {
	base := NewRef(int64(1000))
	maxAge := NewComputed(func() int64 { return base.Get() + 500 })
	swr := NewComputed(func() int64 { return maxAge.Get() + 250 })

	if swr.Get() != 1750 {
		t.Fatalf("expected 1750, got %d", swr.Get())
	}
	base.Set(0)
	if swr.Get() != 750 {
		t.Errorf("expected 750, got %d", swr.Get())
	}
}

func TestBatchDeduplicates(t *testing.T) {
	a := NewRef(0)
	b := NewRef(0)
	runs := 0
	e := NewEffect(func() Cleanup {
		_ = a.Get() + b.Get()
		runs++
		return nil
	})
	defer e.Stop()

	Batch(func() {
		a.Set(1)
		b.Set(2)
		if runs != 1 {
			t.Errorf("effect ran inside batch")
		}
	})
	if runs != 2 {
		t.Errorf("expected one run after batch, got %d", runs)
	}
}

func TestUntracked(t *testing.T) {
	r := NewRef(0)
	runs := 0
	e := NewEffect(func() Cleanup {
		Untracked(func() { _ = r.Get() })
		runs++
		return nil
	})
	defer e.Stop()

	r.Set(1)
	if runs != 1 {
		t.Errorf("untracked read subscribed, got %d runs", runs)
	}
}

func TestRefInterfaceValues(t *testing.T) {
	r := NewRef[any](nil)
	runs := 0
	NewEffect(func() Cleanup {
		_ = r.Get()
		runs++
		return nil
	})

	r.Set(1.5)
	r.Set("text")
	r.Set("text")
	r.Set(map[string]any{"a": 1.0})
	r.Set(map[string]any{"a": 1.0})
	if runs != 4 {
		t.Errorf("expected 4 runs, got %d", runs)
	}
}
