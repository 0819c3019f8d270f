package repo

import (
	"errors"
	"testing"
)

func TestReset_RestoresHeadVersion(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "v1")
	commitAll(t, r, "init")
	writeFile(t, r, "a.txt", "v2")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Reset([]string{"a.txt"}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if e := ix.Entries["a.txt"]; e.BlobHash != blobHash("v1") || e.State != StateClean {
		t.Fatalf("entry = %+v", e)
	}
	if got := readFile(t, r, "a.txt"); got != "v2" {
		t.Fatalf("Reset touched the working tree: %q", got)
	}

	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if e := st.Entries[0]; e.Kind != StatusModified || e.Staged {
		t.Fatalf("status after reset = %+v", e)
	}
}

func TestReset_UnstagesNewFile(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, r, "init")
	writeFile(t, r, "new.txt", "n")
	if err := r.Add([]string{"new.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ix, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex: %v", err)
	}
	if _, ok := ix.Entries["new.txt"]; ok {
		t.Fatal("new.txt still staged")
	}
	if _, ok := ix.Entries["a.txt"]; !ok {
		t.Fatal("a.txt dropped from index")
	}
	if !fileExists(t, r, "new.txt") {
		t.Fatal("Reset deleted the working file")
	}
}

func TestReset_RestoresRemovedEntry(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, r, "init")
	if err := r.Remove([]string{"a.txt"}, true); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := r.Reset([]string{"a.txt"}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Clean() {
		t.Fatalf("status not clean: %+v", st.Entries)
	}
}

func TestReset_UnknownPath(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, r, "init")
	if err := r.Reset([]string{"nope.txt"}); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("Reset(unknown): err = %v, want ErrPathNotFound", err)
	}
}
