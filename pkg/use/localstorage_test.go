package use

import (
	"context"
	"testing"

	"github.com/vango-dev/usekit/pkg/reactive"
)

type prefs struct {
	Theme string `json:"theme"`
	Size  int    `json:"size"`
}

func TestUseLocalStorageReadsStoredValue(t *testing.T) {
	env, _ := newTestEnv()
	ctx := context.Background()
	_ = env.Storage.Set(ctx, "prefs", `{"theme":"dark","size":3}`)

	var ref *reactive.Ref[prefs]
	owner := setup(env, func() {
		ref = UseLocalStorage("prefs", prefs{Theme: "light"})
	})
	defer owner.Dispose()

	if got := ref.Peek(); got.Theme != "dark" || got.Size != 3 {
		t.Errorf("unexpected value %+v", got)
	}
}

func TestUseLocalStorageFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		stored *string
	}{
		{"missing", nil},
		{"invalid", ptr("{not json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newTestEnv()
			if tt.stored != nil {
				_ = env.Storage.Set(context.Background(), "n", *tt.stored)
			}
			var ref *reactive.Ref[int]
			owner := setup(env, func() {
				ref = UseLocalStorage("n", 7)
			})
			defer owner.Dispose()
			if ref.Peek() != 7 {
				t.Errorf("expected initial value, got %d", ref.Peek())
			}
		})
	}
}

func TestUseLocalStorageWritesChanges(t *testing.T) {
	env, _ := newTestEnv()
	var ref *reactive.Ref[int]
	owner := setup(env, func() {
		ref = UseLocalStorage("n", 0)
	})
	defer owner.Dispose()

	if _, ok, _ := env.Storage.Get(context.Background(), "n"); ok {
		t.Fatal("initial value should not be written")
	}
	ref.Set(42)
	env.Loop.Flush()

	raw, ok, _ := env.Storage.Get(context.Background(), "n")
	if !ok || raw != "42" {
		t.Errorf("expected stored 42, got %q (%v)", raw, ok)
	}
	if ref.Peek() != 42 {
		t.Errorf("own write echoed back as %d", ref.Peek())
	}
}

func TestUseLocalStorageExternalChanges(t *testing.T) {
	env, _ := newTestEnv()
	ctx := context.Background()
	var ref *reactive.Ref[int]
	owner := setup(env, func() {
		ref = UseLocalStorage("n", 1)
	})
	defer owner.Dispose()

	_ = env.Storage.Set(ctx, "n", "5")
	env.Loop.Flush()
	if ref.Peek() != 5 {
		t.Fatalf("expected external value 5, got %d", ref.Peek())
	}

	_ = env.Storage.Set(ctx, "other", "9")
	env.Loop.Flush()
	if ref.Peek() != 5 {
		t.Fatal("unrelated key changed the ref")
	}

	_ = env.Storage.Remove(ctx, "n")
	env.Loop.Flush()
	if ref.Peek() != 1 {
		t.Errorf("removal should reset to initial, got %d", ref.Peek())
	}
}

func TestUseLocalStorageStaleEvent(t *testing.T) {
	env, _ := newTestEnv()
	var ref *reactive.Ref[int]
	owner := setup(env, func() {
		ref = UseLocalStorage("n", 0)
	})
	defer owner.Dispose()

	// Both writes queue events before either is handled.
	ref.Set(1)
	ref.Set(2)
	env.Loop.Flush()

	if ref.Peek() != 2 {
		t.Errorf("queued event reverted the ref to %d", ref.Peek())
	}
	raw, _, _ := env.Storage.Get(context.Background(), "n")
	if raw != "2" {
		t.Errorf("storage holds %q", raw)
	}
}

func TestUseLocalStorageUnsubscribesOnDispose(t *testing.T) {
	env, _ := newTestEnv()
	var ref *reactive.Ref[int]
	owner := setup(env, func() {
		ref = UseLocalStorage("n", 0)
	})
	owner.Dispose()

	_ = env.Storage.Set(context.Background(), "n", "3")
	env.Loop.Flush()
	if ref.Peek() != 0 {
		t.Error("disposed hook should ignore storage events")
	}
}

func ptr(s string) *string { return &s }
