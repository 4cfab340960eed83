package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

// record is the badgerhold row holding one JSON value.
type record struct {
	Key   string
	Value []byte
}

// Badger is a Backend persisted with badgerhold. Notifications are local to
// the process.
type Badger struct {
	*localNotifier

	store  *badgerhold.Store
	stopGC chan struct{}
}

// NewBadger opens the database in dir, or in memory if dir is empty (to be
// used only for testing purposes).
func NewBadger(dir string) (*Badger, error) {
	isInMemory := len(dir) <= 0

	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{logger.Named("badger").Sugar()}

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	b := &Badger{
		localNotifier: newLocalNotifier(),
		store:         db,
		stopGC:        make(chan struct{}),
	}

	if !isInMemory {
		go b.runGC()
	}

	return b, nil
}

func (b *Badger) runGC() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopGC:
			return
		case <-ticker.C:
			if err := b.store.Badger().RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("badger garbage collector", zap.Error(err))
			}
		}
	}
}

func (b *Badger) Get(_ context.Context, key string, v any) error {
	var rec record
	if err := b.store.Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return notFound(key)
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return decode(key, rec.Value, v)
}

func (b *Badger) Set(_ context.Context, key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	if err := b.store.Upsert(key, record{Key: key, Value: data}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Remove(_ context.Context, key string) error {
	if err := b.store.Delete(key, record{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (b *Badger) Clear(_ context.Context) error {
	if err := b.store.DeleteMatching(&record{}, nil); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	close(b.stopGC)
	b.closeAll()
	return b.store.Close()
}

// badgerLogger routes badger's log output to zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
