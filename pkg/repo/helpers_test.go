package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/snap/pkg/object"
)

func initRepo(t *testing.T, opts ...Option) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// initRepoWithFile creates a temp repo, writes one file, and stages it.
func initRepoWithFile(t *testing.T, name, content string) *Repo {
	t.Helper()
	r := initRepo(t)
	writeFile(t, r, name, content)
	if err := r.Add([]string{name}); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func fileExists(t *testing.T, r *Repo, rel string) bool {
	t.Helper()
	_, err := os.Lstat(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("Lstat %s: %v", rel, err)
	}
	return false
}

var commitClock = time.Unix(1700000000, 0)

// commitAll stages every working file and commits.
func commitAll(t *testing.T, r *Repo, message string) *CommitResult {
	t.Helper()
	if err := r.Add([]string{"."}); err != nil {
		t.Fatalf("Add(.): %v", err)
	}
	commitClock = commitClock.Add(time.Minute)
	res, err := r.CommitWithOptions(CommitOptions{Message: message, Author: "alice", Timestamp: commitClock})
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return res
}

func headHash(t *testing.T, r *Repo) object.Hash {
	t.Helper()
	h, err := r.ResolveHead()
	if err != nil {
		t.Fatalf("ResolveHead: %v", err)
	}
	return h
}

// corruptObject replaces the stored bytes of h in a file-backed store.
func corruptObject(t *testing.T, r *Repo, h object.Hash) {
	t.Helper()
	path := filepath.Join(r.SnapDir, "objects", string(h[:2]), string(h[2:]))
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if err := os.WriteFile(path, []byte("not an object"), 0o644); err != nil {
		t.Fatalf("corrupt %s: %v", h, err)
	}
}

func statusKinds(t *testing.T, r *Repo) map[string]StatusKind {
	t.Helper()
	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	kinds := make(map[string]StatusKind, len(st.Entries))
	for _, e := range st.Entries {
		kinds[e.Path] = e.Kind
	}
	return kinds
}

// setModTime resets the mtime (and atime) of a working file.
func setModTime(t *testing.T, r *Repo, rel string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(r.RootDir, filepath.FromSlash(rel)), mtime, mtime); err != nil {
		t.Fatalf("Chtimes %s: %v", rel, err)
	}
}
