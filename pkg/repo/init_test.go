package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/snap/pkg/object"
)

func TestInit_CreatesLayout(t *testing.T) {
	r := initRepo(t)

	if r.SnapDir != filepath.Join(r.RootDir, ".snap") {
		t.Fatalf("SnapDir = %q", r.SnapDir)
	}
	for _, dir := range []string{"objects", "refs/heads", "logs/refs/heads"} {
		info, err := os.Stat(filepath.Join(r.SnapDir, filepath.FromSlash(dir)))
		if err != nil || !info.IsDir() {
			t.Errorf("%s: missing directory (err=%v)", dir, err)
		}
	}

	head, err := os.ReadFile(filepath.Join(r.SnapDir, "HEAD"))
	if err != nil {
		t.Fatalf("ReadFile(HEAD): %v", err)
	}
	if string(head) != "ref: refs/heads/main\n" {
		t.Errorf("HEAD = %q, want %q", head, "ref: refs/heads/main\n")
	}
	if _, err := os.Stat(filepath.Join(r.SnapDir, "config.toml")); err != nil {
		t.Errorf("config.toml: %v", err)
	}
	if r.Config.Core.Store != StoreFile {
		t.Errorf("Core.Store = %q, want %q", r.Config.Core.Store, StoreFile)
	}
}

func TestInit_FailsIfExists(t *testing.T) {
	r := initRepo(t)
	if _, err := Init(r.RootDir); !errors.Is(err, ErrRepoExists) {
		t.Fatalf("second Init: err = %v, want ErrRepoExists", err)
	}
}

func TestInit_UnbornHead(t *testing.T) {
	r := initRepo(t)
	if _, err := r.ResolveHead(); !errors.Is(err, ErrUnbornBranch) {
		t.Fatalf("ResolveHead: err = %v, want ErrUnbornBranch", err)
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Fatalf("CurrentBranch = %q, want main", branch)
	}
}

func TestOpen_FindsRepoFromSubdirectory(t *testing.T) {
	r := initRepo(t)
	sub := filepath.Join(r.RootDir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.RootDir != r.RootDir {
		t.Errorf("RootDir = %q, want %q", opened.RootDir, r.RootDir)
	}
	if opened.SnapDir != r.SnapDir {
		t.Errorf("SnapDir = %q, want %q", opened.SnapDir, r.SnapDir)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrRepoNotInitialized) {
		t.Fatalf("Open: err = %v, want ErrRepoNotInitialized", err)
	}
}

func TestInit_SQLiteStore(t *testing.T) {
	r := initRepo(t, WithConfig(&Config{Core: CoreConfig{Store: StoreSQLite}}))
	writeFile(t, r, "a.txt", "hello")
	c1 := commitAll(t, r, "init")

	if _, err := os.Stat(filepath.Join(r.SnapDir, "objects.db")); err != nil {
		t.Fatalf("objects.db: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	if reopened.Config.Core.Store != StoreSQLite {
		t.Fatalf("Core.Store = %q, want sqlite", reopened.Config.Core.Store)
	}
	c, err := reopened.Store.ReadCommit(c1.Hash)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	files, err := reopened.FlattenTree(c.TreeHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 1 || files[0].Path != "a.txt" || files[0].BlobHash != object.HashObject(object.TypeBlob, []byte("hello")) {
		t.Fatalf("files = %+v", files)
	}
}

func TestWithStoreOverridesConfig(t *testing.T) {
	mem := object.NewMemoryStore()
	r := initRepo(t, WithStore(mem))
	writeFile(t, r, "a.txt", "hello")
	commitAll(t, r, "init")

	hashes, err := mem.Backend().List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hashes) != 3 {
		t.Fatalf("memory store holds %d objects, want 3 (blob, tree, commit)", len(hashes))
	}
	entries, err := os.ReadDir(filepath.Join(r.SnapDir, "objects"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("file store was written despite WithStore: %d entries", len(entries))
	}
}
