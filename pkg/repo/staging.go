package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/odvcencio/snap/pkg/fsutil"
	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

const indexVersion = 1

// EntryState is the lifecycle state of an index entry.
type EntryState string

const (
	// StateStaged marks content recorded for the next commit that differs
	// from HEAD.
	StateStaged EntryState = "staged"
	// StateClean marks content identical to what HEAD records.
	StateClean EntryState = "clean"
)

// IndexEntry records the staged blob for one path plus the stat
// fingerprint of the working file it was read from. RecordedAt is when the
// fingerprint was taken; zero means it is never trusted.
type IndexEntry struct {
	Path       string      `json:"path"`
	BlobHash   object.Hash `json:"blob_hash"`
	State      EntryState  `json:"state"`
	ModTime    int64       `json:"mod_time"`
	ChangeTime int64       `json:"change_time,omitempty"`
	Size       int64       `json:"size"`
	RecordedAt int64       `json:"recorded_at,omitempty"`
}

func newIndexEntry(p string, h object.Hash, state EntryState, st fileStat) *IndexEntry {
	return &IndexEntry{
		Path:       p,
		BlobHash:   h,
		State:      state,
		ModTime:    st.ModTime,
		ChangeTime: st.ChangeTime,
		Size:       st.Size,
		RecordedAt: time.Now().UnixNano(),
	}
}

// trustsStat reports whether st matches the recorded fingerprint closely
// enough to stand in for the content hash. The file's mtime must be older
// than the recording time by at least racyWindow; otherwise a same-size
// edit in the same timestamp tick would go unnoticed.
func (e *IndexEntry) trustsStat(st fileStat) bool {
	if e == nil || e.RecordedAt == 0 || e.Size < 0 {
		return false
	}
	if e.Size != st.Size || e.ModTime != st.ModTime || e.ChangeTime != st.ChangeTime {
		return false
	}
	return st.ModTime < e.RecordedAt-int64(racyWindow)
}

// Index is the staging area, persisted as JSON in .snap/index.
type Index struct {
	Version int                    `json:"version"`
	Entries map[string]*IndexEntry `json:"entries"`
}

func newIndex() *Index {
	return &Index{Version: indexVersion, Entries: make(map[string]*IndexEntry)}
}

// Paths returns the indexed paths in sorted order.
func (ix *Index) Paths() []string {
	paths := make([]string, 0, len(ix.Entries))
	for p := range ix.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Files returns the path to blob hash mapping a commit of this index would
// record.
func (ix *Index) Files() map[string]object.Hash {
	files := make(map[string]object.Hash, len(ix.Entries))
	for p, e := range ix.Entries {
		files[p] = e.BlobHash
	}
	return files
}

func (r *Repo) indexPath() string {
	return r.metaPath("index")
}

// ReadIndex loads .snap/index. A missing file yields an empty index.
func (r *Repo) ReadIndex() (*Index, error) {
	path := r.indexPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newIndex(), nil
		}
		return nil, fmt.Errorf("read index: %w", ioErr("read", path, err))
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("read index: unmarshal: %w", err)
	}
	if ix.Version != indexVersion {
		return nil, fmt.Errorf("read index: unsupported version %d", ix.Version)
	}
	if ix.Entries == nil {
		ix.Entries = make(map[string]*IndexEntry)
	}
	for p, e := range ix.Entries {
		if e == nil || e.Path != p || !e.BlobHash.Valid() {
			return nil, fmt.Errorf("read index: malformed entry for %q", p)
		}
	}
	return &ix, nil
}

// WriteIndex atomically writes the index to .snap/index.
func (r *Repo) WriteIndex(ix *Index) error {
	ix.Version = indexVersion
	data, err := json.MarshalIndent(ix, "", "  ")
	if err != nil {
		return fmt.Errorf("write index: marshal: %w", err)
	}
	path := r.indexPath()
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", ioErr("write", path, err))
	}
	r.logger.Debug("index written", zap.Int("entries", len(ix.Entries)))
	return nil
}

// Add stages the given paths. Each path may be a file or a directory
// (walked recursively with ignore rules applied; "." is the whole tree) and
// is resolved relative to the current directory, falling back to the
// repository root. For each file the content is written as a blob and the
// entry is recorded as staged, or clean when it matches HEAD. Tracked files
// that no longer exist are dropped from the index. A path that matches
// neither a working file nor an index entry fails with ErrPathNotFound.
func (r *Repo) Add(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("add: no paths given")
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	head, _, err := r.headFiles()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ic, err := NewIgnoreChecker(r.RootDir)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		abs := r.absPath(rel)
		info, err := os.Lstat(abs)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if dropped := r.dropMissing(ix, rel); dropped == 0 {
				return fmt.Errorf("add: %w: %s", ErrPathNotFound, rel)
			}
		case err != nil:
			return fmt.Errorf("add: %w", ioErr("stat", abs, err))
		case info.IsDir():
			files, err := r.walkWorkingFiles(ic, rel)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			for _, fp := range sortedKeys(files) {
				if err := r.stageFile(ix, head, fp); err != nil {
					return fmt.Errorf("add: %w", err)
				}
			}
			r.dropMissing(ix, rel)
		case info.Mode().IsRegular():
			if err := r.stageFile(ix, head, rel); err != nil {
				return fmt.Errorf("add: %w", err)
			}
		default:
			return fmt.Errorf("add: %s is not a regular file", rel)
		}
	}

	if err := r.WriteIndex(ix); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

func (r *Repo) stageFile(ix *Index, head map[string]object.Hash, rel string) error {
	abs := r.absPath(rel)
	info, err := os.Lstat(abs)
	if err != nil {
		return ioErr("stat", abs, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return ioErr("read", abs, err)
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return fmt.Errorf("write blob %q: %w", rel, err)
	}

	state := StateStaged
	if head[rel] == h {
		state = StateClean
	}
	ix.Entries[rel] = newIndexEntry(rel, h, state, statOf(info))
	r.logger.Debug("staged", zap.String("path", rel), zap.String("blob", string(h)), zap.String("state", string(state)))
	return nil
}

// dropMissing removes index entries at or below rel whose working file is
// gone and returns how many were removed.
func (r *Repo) dropMissing(ix *Index, rel string) int {
	dropped := 0
	for p := range ix.Entries {
		if !underPath(p, rel) {
			continue
		}
		if _, ok, err := r.statWorkingFile(p); err == nil && !ok {
			delete(ix.Entries, p)
			dropped++
		}
	}
	return dropped
}

// Remove drops paths (files, or directories matched by prefix) from the
// index. Unless cached is set the working files are deleted too and
// directories left empty are pruned. A path matching no index entry fails
// with ErrPathNotFound.
func (r *Repo) Remove(paths []string, cached bool) error {
	if len(paths) == 0 {
		return fmt.Errorf("rm: no paths given")
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	var targets []string
	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("rm: %w", err)
		}
		matched := 0
		for _, ip := range ix.Paths() {
			if underPath(ip, rel) {
				targets = append(targets, ip)
				matched++
			}
		}
		if matched == 0 {
			return fmt.Errorf("rm: %w: %s is not tracked", ErrPathNotFound, rel)
		}
	}

	for _, p := range targets {
		delete(ix.Entries, p)
	}
	if err := r.WriteIndex(ix); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if cached {
		return nil
	}
	for _, p := range targets {
		abs := r.absPath(p)
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rm: %w", ioErr("remove", abs, err))
		}
		removeEmptyParents(filepath.Dir(abs), r.RootDir)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
