// Package store is the key-value persistence port of the wallet with
// in-memory, badger and redis adapters. Values are JSON encoded.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/model"
)

// Store persists JSON values under string keys. Get returns an error
// wrapping model.ErrNotFound for a missing key. Remove of a missing key is
// not an error.
type Store interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Event announces a change to a key.
type Event struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// Notifier fans change events out to subscribers, possibly across
// processes.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of events that is closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Backend is a Store that also notifies about changes and owns resources.
type Backend interface {
	Store
	Notifier
	Close() error
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func notFound(key string) error {
	return fmt.Errorf("%w: key %s", model.ErrNotFound, key)
}
