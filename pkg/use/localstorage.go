package use

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

// UseLocalStorage returns a ref persisted under key in the env storage.
//
// The stored value is JSON-decoded into the ref; when it is missing or
// undecodable the ref starts at initial and nothing is written until it
// changes. Every change is written back as JSON. Changes made to the key
// by other writers (another process editing the storage file, a Postgres
// notification) are applied to the ref on the loop. Removing the key
// resets the ref to initial.
func UseLocalStorage[T any](key string, initial T) *reactive.Ref[T] {
	env := host.Current()
	ctx := ownerContext()
	logger := env.Logger.With("component", "use.localStorage", "key", key)

	value := initial
	if raw, ok := readStorage(ctx, env, logger, key); ok {
		if decoded, err := decodeStored[T](raw); err != nil {
			logger.Warn("stored value ignored", "error", errors.New("U003").Wrap(err))
		} else {
			value = decoded
		}
	}
	ref := reactive.NewRef(value)

	var lastWritten string
	reactive.Watch(ref.Get, func(v, _ T) {
		data, err := json.Marshal(v)
		if err != nil {
			logger.Error("encode failed", "error", errors.New("U004").Wrap(err))
			return
		}
		lastWritten = string(data)
		if err := env.Storage.Set(ctx, key, lastWritten); err != nil {
			logger.Error("write failed", "error", errors.New("U004").Wrap(err))
		}
	}, reactive.Lazy())

	unsubscribe := env.Storage.Subscribe(func(ev host.StorageEvent) {
		if ev.Key != key {
			return
		}
		env.Loop.Dispatch(func() {
			if ev.Removed {
				lastWritten = ""
				ref.Set(initial)
				return
			}
			if ev.NewValue == lastWritten {
				return
			}
			// Events can arrive after newer local writes; re-read so the
			// ref converges on what storage holds now.
			raw, ok := readStorage(ctx, env, logger, key)
			if !ok || raw == lastWritten {
				return
			}
			decoded, err := decodeStored[T](raw)
			if err != nil {
				logger.Warn("external value ignored", "error", errors.New("U003").Wrap(err))
				return
			}
			lastWritten = raw
			ref.Set(decoded)
		})
	})
	reactive.OnUnmounted(unsubscribe)

	return ref
}

func readStorage(ctx context.Context, env *host.Env, logger *slog.Logger, key string) (string, bool) {
	raw, ok, err := env.Storage.Get(ctx, key)
	if err != nil {
		logger.Error("read failed", "error", err)
		return "", false
	}
	return raw, ok
}

func decodeStored[T any](raw string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}
