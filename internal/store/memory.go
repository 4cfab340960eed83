package store

import (
	"context"
	"sync"
)

// Memory is a Backend kept in process memory. Intended for tests and
// ephemeral sessions.
type Memory struct {
	*localNotifier

	lock *sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		localNotifier: newLocalNotifier(),
		lock:          &sync.RWMutex{},
		data:          make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string, v any) error {
	m.lock.RLock()
	data, ok := m.data[key]
	m.lock.RUnlock()

	if !ok {
		return notFound(key)
	}
	return decode(key, data, v)
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}

	m.lock.Lock()
	m.data[key] = data
	m.lock.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.lock.Lock()
	delete(m.data, key)
	m.lock.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.lock.Lock()
	m.data = make(map[string][]byte)
	m.lock.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.closeAll()
	return nil
}
