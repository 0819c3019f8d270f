package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/odvcencio/snap/pkg/object"
)

func TestLog_ChainIntegrity(t *testing.T) {
	r := initRepo(t)
	const n = 6
	var hashes []object.Hash
	for i := 0; i < n; i++ {
		writeFile(t, r, "a.txt", fmt.Sprintf("version %d", i))
		hashes = append(hashes, commitAll(t, r, fmt.Sprintf("commit %d", i)).Hash)
	}

	entries, err := r.LogN(headHash(t, r), 0)
	if err != nil {
		t.Fatalf("LogN: %v", err)
	}
	if len(entries) != n {
		t.Fatalf("log has %d entries, want %d", len(entries), n)
	}
	for i, e := range entries {
		want := hashes[n-1-i]
		if e.Hash != want {
			t.Fatalf("entry %d = %s, want %s", i, e.Hash, want)
		}
		if got := object.HashObject(object.TypeCommit, object.MarshalCommit(e.Commit)); got != e.Hash {
			t.Fatalf("entry %d: commit re-hashes to %s, want %s", i, got, e.Hash)
		}
		if e.Commit.Message != fmt.Sprintf("commit %d", n-1-i) {
			t.Fatalf("entry %d message = %q", i, e.Commit.Message)
		}
	}
	if entries[n-1].Commit.Parent != "" {
		t.Fatalf("root commit has parent %s", entries[n-1].Commit.Parent)
	}
}

func TestLog_Restartable(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "1")
	commitAll(t, r, "one")
	writeFile(t, r, "a.txt", "2")
	commitAll(t, r, "two")

	seq := r.Log(headHash(t, r))
	count := func() int {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatalf("Log: %v", err)
			}
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 2 || second != 2 {
		t.Fatalf("ranges yielded %d then %d entries, want 2 and 2", first, second)
	}
}

func TestLog_EarlyBreakAndLimit(t *testing.T) {
	r := initRepo(t)
	for i := 0; i < 4; i++ {
		writeFile(t, r, "a.txt", fmt.Sprint(i))
		commitAll(t, r, fmt.Sprint(i))
	}
	head := headHash(t, r)

	for e, err := range r.Log(head) {
		if err != nil {
			t.Fatalf("Log: %v", err)
		}
		if e.Hash != head {
			t.Fatalf("first entry %s, want HEAD %s", e.Hash, head)
		}
		break
	}
	entries, err := r.LogN(head, 3)
	if err != nil {
		t.Fatalf("LogN: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("LogN(3) returned %d", len(entries))
	}
}

func TestLog_CorruptedParentYieldsError(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "a.txt", "1")
	c1 := commitAll(t, r, "one")
	writeFile(t, r, "a.txt", "2")
	c2 := commitAll(t, r, "two")
	corruptObject(t, r, c1.Hash)

	var seen []object.Hash
	var lastErr error
	for e, err := range r.Log(c2.Hash) {
		if err != nil {
			lastErr = err
			break
		}
		seen = append(seen, e.Hash)
	}
	if len(seen) != 1 || seen[0] != c2.Hash {
		t.Fatalf("seen = %v", seen)
	}
	if !errors.Is(lastErr, object.ErrObjectCorrupted) {
		t.Fatalf("err = %v, want ErrObjectCorrupted", lastErr)
	}
	if _, err := r.LogN(c2.Hash, 0); !errors.Is(err, object.ErrObjectCorrupted) {
		t.Fatalf("LogN err = %v, want ErrObjectCorrupted", err)
	}
}

func TestLog_Empty(t *testing.T) {
	r := initRepo(t)
	entries, err := r.LogN("", 0)
	if err != nil {
		t.Fatalf("LogN: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("LogN(\"\") = %v", entries)
	}
}
