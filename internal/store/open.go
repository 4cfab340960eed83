package store

import (
	"context"
	"fmt"
)

const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a Backend.
type Options struct {
	Backend      string
	Path         string
	RedisAddr    string
	RedisChannel string
}

// Open creates the Backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendBadger, "":
		return NewBadger(opts.Path)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisChannel)
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
