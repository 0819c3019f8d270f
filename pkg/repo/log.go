package repo

import (
	"fmt"
	"iter"

	"github.com/odvcencio/snap/pkg/object"
)

// LogEntry pairs a commit with its hash.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log returns an iterator over the first-parent history starting at start,
// newest first. Commits are read lazily; a read failure is yielded once and
// ends the sequence. The iterator can be ranged over more than once.
func (r *Repo) Log(start object.Hash) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		seen := make(map[object.Hash]struct{})
		for h := start; h != ""; {
			if _, dup := seen[h]; dup {
				yield(LogEntry{Hash: h}, fmt.Errorf("log: %w: commit %s is its own ancestor", object.ErrObjectCorrupted, h.Short()))
				return
			}
			seen[h] = struct{}{}

			c, err := r.Store.ReadCommit(h)
			if err != nil {
				yield(LogEntry{Hash: h}, fmt.Errorf("log: read %s: %w", h.Short(), err))
				return
			}
			if !yield(LogEntry{Hash: h, Commit: c}, nil) {
				return
			}
			h = c.Parent
		}
	}
}

// LogN collects at most limit entries of Log(start). A limit <= 0 collects
// the whole history.
func (r *Repo) LogN(start object.Hash, limit int) ([]LogEntry, error) {
	var out []LogEntry
	for entry, err := range r.Log(start) {
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
