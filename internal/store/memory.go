package store

import (
	"context"
	"slices"
	"sync"
)

type memoryWatcher struct {
	keys []string
	fn   func(ChangeEvent)
}

// memoryKV keeps payloads in process. Used for local runs and tests.
type memoryKV struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[int]memoryWatcher
	nextID   int
}

func NewMemoryKV() *memoryKV {
	return &memoryKV{
		data:     make(map[string][]byte),
		watchers: make(map[int]memoryWatcher),
	}
}

func (s *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(payload), nil
}

func (s *memoryKV) Set(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	s.data[key] = slices.Clone(payload)
	var notify []func(ChangeEvent)
	for _, w := range s.watchers {
		if slices.Contains(w.keys, key) {
			notify = append(notify, w.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn(ChangeEvent{Key: key, Payload: slices.Clone(payload)})
	}
	return nil
}

func (s *memoryKV) Watch(ctx context.Context, keys []string, fn func(ChangeEvent)) error {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = memoryWatcher{keys: keys, fn: fn}
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
	return nil
}
