package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/snap/pkg/object"
)

// StatusKind classifies one path in a status report.
type StatusKind string

const (
	StatusUntracked  StatusKind = "untracked"
	StatusAdded      StatusKind = "added"
	StatusModified   StatusKind = "modified"
	StatusDeleted    StatusKind = "deleted"
	StatusUnmodified StatusKind = "unmodified"
)

// StatusEntry describes one path. Staged reports that the index differs
// from HEAD for this path. Hashes are empty where the path is absent.
type StatusEntry struct {
	Path      string
	Kind      StatusKind
	Staged    bool
	HeadHash  object.Hash
	IndexHash object.Hash
	WorkHash  object.Hash
}

// Status is the reconciliation of the working tree, the index and HEAD.
type Status struct {
	Branch  string      // empty when HEAD is detached
	Head    object.Hash // empty on an unborn branch
	Entries []StatusEntry
}

// Changes returns the entries that are not Unmodified.
func (s *Status) Changes() []StatusEntry {
	var out []StatusEntry
	for _, e := range s.Entries {
		if e.Kind != StatusUnmodified {
			out = append(out, e)
		}
	}
	return out
}

// Clean reports whether every path is Unmodified.
func (s *Status) Clean() bool {
	return len(s.Changes()) == 0
}

// Status compares the working tree (ignore rules applied), the index and
// the HEAD tree, and returns one entry per path sorted by path.
func (r *Repo) Status() (*Status, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	head, headHash, err := r.headFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	ic, err := NewIgnoreChecker(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.walkWorkingFiles(ic, ".")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	paths := make(map[string]struct{}, len(work)+len(ix.Entries)+len(head))
	for p := range work {
		paths[p] = struct{}{}
	}
	for p := range ix.Entries {
		paths[p] = struct{}{}
	}
	for p := range head {
		paths[p] = struct{}{}
	}

	st := &Status{Branch: branch, Head: headHash}
	for p := range paths {
		entry, err := r.statusEntry(p, head[p], ix.Entries[p], work)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		st.Entries = append(st.Entries, entry)
	}
	sort.Slice(st.Entries, func(i, j int) bool { return st.Entries[i].Path < st.Entries[j].Path })
	return st, nil
}

func (r *Repo) statusEntry(p string, headHash object.Hash, ie *IndexEntry, work map[string]fileStat) (StatusEntry, error) {
	e := StatusEntry{Path: p, HeadHash: headHash}
	if ie != nil {
		e.IndexHash = ie.BlobHash
	}
	e.Staged = e.IndexHash != e.HeadHash

	ws, exists := work[p]
	if !exists && (ie != nil || headHash != "") {
		// Tracked files are checked even when an ignore rule covers them.
		var err error
		ws, exists, err = r.statWorkingFile(p)
		if err != nil {
			return e, err
		}
	}
	if exists {
		h, err := r.workingHash(p, ws, ie)
		if err != nil {
			return e, err
		}
		e.WorkHash = h
	}

	switch {
	case !exists:
		e.Kind = StatusDeleted
	case ie == nil && headHash == "":
		e.Kind = StatusUntracked
	case ie == nil:
		// Removed from the index but still on disk.
		e.Kind = StatusDeleted
	case headHash == "":
		e.Kind = StatusAdded
		if e.WorkHash != e.IndexHash {
			e.Kind = StatusModified
		}
	case e.WorkHash != e.IndexHash || e.IndexHash != e.HeadHash:
		e.Kind = StatusModified
	default:
		e.Kind = StatusUnmodified
	}
	return e, nil
}
