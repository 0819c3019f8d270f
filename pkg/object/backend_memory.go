package object

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend keeps objects in a map. It is used by tests and by callers
// that want a throwaway store.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[Hash][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[Hash][]byte)}
}

func (b *MemoryBackend) Has(h Hash) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[h]
	return ok, nil
}

func (b *MemoryBackend) Get(h Hash) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Put(h Hash, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[h]; ok {
		return nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	b.objects[h] = stored
	return nil
}

func (b *MemoryBackend) List(prefix string) ([]Hash, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Hash
	for h := range b.objects {
		if strings.HasPrefix(string(h), prefix) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

