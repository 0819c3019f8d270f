package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/snap/pkg/fsutil"
)

// FileBackend stores objects as loose files with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type FileBackend struct {
	root string
}

// NewFileBackend creates a FileBackend rooted at the given directory. The
// objects/ subdirectory is created lazily on first write.
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{root: root}
}

func (b *FileBackend) objectsDir() string {
	return filepath.Join(b.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (b *FileBackend) objectPath(h Hash) string {
	return filepath.Join(b.objectsDir(), string(h[:2]), string(h[2:]))
}

func (b *FileBackend) Has(h Hash) (bool, error) {
	return fsutil.Exists(b.objectPath(h))
}

func (b *FileBackend) Get(h Hash) ([]byte, error) {
	data, err := os.ReadFile(b.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return nil, fmt.Errorf("read object %s: %w", h, err)
	}
	return data, nil
}

// Put writes data via temp file + rename. Objects are made read-only once
// in place.
func (b *FileBackend) Put(h Hash, data []byte) error {
	path := b.objectPath(h)
	exists, err := fsutil.Exists(path)
	if err != nil {
		return fmt.Errorf("stat object %s: %w", h, err)
	}
	if exists {
		return nil
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o444); err != nil {
		return fmt.Errorf("write object %s: %w", h, err)
	}
	return nil
}

func (b *FileBackend) List(prefix string) ([]Hash, error) {
	var shards []string
	if len(prefix) >= 2 {
		shards = []string{prefix[:2]}
	} else {
		entries, err := os.ReadDir(b.objectsDir())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() && len(e.Name()) == 2 && isLowerHex(e.Name()) && strings.HasPrefix(e.Name(), prefix) {
				shards = append(shards, e.Name())
			}
		}
	}

	var out []Hash
	for _, shard := range shards {
		entries, err := os.ReadDir(filepath.Join(b.objectsDir(), shard))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list objects %s: %w", shard, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || len(name) != HashLen-2 || !isLowerHex(name) {
				continue
			}
			h := Hash(shard + name)
			if strings.HasPrefix(string(h), prefix) {
				out = append(out, h)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (b *FileBackend) Close() error {
	return nil
}
