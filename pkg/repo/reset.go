package repo

import (
	"fmt"
)

// Reset unstages paths by restoring index entries to their HEAD versions.
//
// Behavior:
//   - If a path exists in HEAD, its index entry is reset to HEAD's blob.
//   - If a path does not exist in HEAD, its index entry is removed.
//   - If no paths are provided, the entire index is reset to HEAD.
//
// Reset does not modify the working tree.
func (r *Repo) Reset(paths []string) error {
	ix, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	head, _, err := r.headFiles()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	targets := make(map[string]struct{})
	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		matched := 0
		for ip := range ix.Entries {
			if underPath(ip, rel) {
				targets[ip] = struct{}{}
				matched++
			}
		}
		for hp := range head {
			if underPath(hp, rel) {
				targets[hp] = struct{}{}
				matched++
			}
		}
		if matched == 0 && rel != "." {
			return fmt.Errorf("reset: %w: %s is not tracked", ErrPathNotFound, rel)
		}
	}

	for p := range targets {
		h, ok := head[p]
		if !ok {
			delete(ix.Entries, p)
			continue
		}
		// A zero fingerprint forces status to hash the working file.
		ix.Entries[p] = &IndexEntry{Path: p, BlobHash: h, State: StateClean, Size: -1}
	}

	if err := r.WriteIndex(ix); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
