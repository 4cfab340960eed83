package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	bdg, err := NewBadger("")
	require.NoError(t, err)

	out := map[string]Backend{
		"memory": NewMemory(),
		"badger": bdg,
	}

	// redis runs only against a live server
	if addr := os.Getenv("MULTIWALLET_TEST_REDIS_ADDR"); addr != "" {
		r, err := DialRedis(context.Background(), addr, "multiwallet.test")
		require.NoError(t, err)
		require.NoError(t, r.Clear(context.Background()))
		out["redis"] = r
	}

	for _, b := range out {
		t.Cleanup(func() { _ = b.Close() })
	}
	return out
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var got sample
			err := b.Get(ctx, "missing", &got)
			require.ErrorIs(t, err, model.ErrNotFound)

			require.NoError(t, b.Set(ctx, "a", sample{Name: "first", Count: 1}))
			require.NoError(t, b.Get(ctx, "a", &got))
			require.Equal(t, sample{Name: "first", Count: 1}, got)

			// overwrite
			require.NoError(t, b.Set(ctx, "a", sample{Name: "second", Count: 2}))
			require.NoError(t, b.Get(ctx, "a", &got))
			require.Equal(t, "second", got.Name)

			require.NoError(t, b.Set(ctx, "b", []string{"x", "y"}))

			require.NoError(t, b.Remove(ctx, "a"))
			require.ErrorIs(t, b.Get(ctx, "a", &got), model.ErrNotFound)
			require.NoError(t, b.Remove(ctx, "a"))

			require.NoError(t, b.Clear(ctx))
			var list []string
			require.ErrorIs(t, b.Get(ctx, "b", &list), model.ErrNotFound)
		})
	}
}

func TestNotifier(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			events, err := b.Subscribe(ctx)
			require.NoError(t, err)

			want := Event{Type: "vault.changed", Key: "vault.entries"}
			require.NoError(t, b.Publish(ctx, want))

			select {
			case got := <-events:
				require.Equal(t, want, got)
			case <-time.After(5 * time.Second):
				t.Fatal("event not delivered")
			}

			cancel()
			require.Eventually(t, func() bool {
				select {
				case _, ok := <-events:
					return !ok
				default:
					return false
				}
			}, 5*time.Second, 10*time.Millisecond)
		})
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	require.NoError(t, m.Publish(context.Background(), Event{Type: "vault.changed"}))
	require.NoError(t, m.Close())
}

func TestCloseEndsSubscriptions(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := m.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, ok := <-events
	require.False(t, ok)

	// a late cancel must not close the channel twice
	cancel()
	time.Sleep(10 * time.Millisecond)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	b, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, b)

	_, err = Open(context.Background(), Options{Backend: "etcd"})
	require.Error(t, err)
}
