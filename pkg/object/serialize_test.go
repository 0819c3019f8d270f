package object

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	hashA = Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	hashB = Hash("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	hashC = Hash("cccccccccccccccccccccccccccccccccccccccc")
)

func TestMarshalUnmarshalBlob(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	got, err := UnmarshalBlob(MarshalBlob(orig))
	if err != nil {
		t.Fatalf("UnmarshalBlob: %v", err)
	}
	if !bytes.Equal(got.Data, orig.Data) {
		t.Errorf("Blob round-trip mismatch: got %q, want %q", got.Data, orig.Data)
	}
}

func TestMarshalTreeSortsEntries(t *testing.T) {
	forward := &TreeObj{Entries: []TreeEntry{
		{Name: "a.txt", Hash: hashA, Kind: KindBlob},
		{Name: "lib", Hash: hashB, Kind: KindTree},
		{Name: "z.txt", Hash: hashC, Kind: KindBlob},
	}}
	backward := &TreeObj{Entries: []TreeEntry{
		forward.Entries[2], forward.Entries[0], forward.Entries[1],
	}}

	d1, err := MarshalTree(forward)
	if err != nil {
		t.Fatalf("MarshalTree(forward): %v", err)
	}
	d2, err := MarshalTree(backward)
	if err != nil {
		t.Fatalf("MarshalTree(backward): %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Fatalf("tree encoding depends on entry order:\n%s\nvs\n%s", d1, d2)
	}

	want := "blob " + string(hashA) + " a.txt\n" +
		"tree " + string(hashB) + " lib\n" +
		"blob " + string(hashC) + " z.txt\n"
	if string(d1) != want {
		t.Errorf("MarshalTree = %q, want %q", d1, want)
	}
}

func TestMarshalUnmarshalTree(t *testing.T) {
	orig := &TreeObj{Entries: []TreeEntry{
		{Name: "README", Hash: hashA, Kind: KindBlob},
		{Name: "name with spaces.txt", Hash: hashB, Kind: KindBlob},
		{Name: "src", Hash: hashC, Kind: KindTree},
	}}
	data, err := MarshalTree(orig)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("tree round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalTreeEmpty(t *testing.T) {
	data, err := MarshalTree(&TreeObj{})
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("empty tree encoded to %q", data)
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Fatalf("got %d entries, want 0", len(got.Entries))
	}
}

func TestMarshalTreeRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []TreeEntry
	}{
		{"empty name", []TreeEntry{{Name: "", Hash: hashA, Kind: KindBlob}}},
		{"slash in name", []TreeEntry{{Name: "a/b", Hash: hashA, Kind: KindBlob}}},
		{"newline in name", []TreeEntry{{Name: "a\nb", Hash: hashA, Kind: KindBlob}}},
		{"dot dot", []TreeEntry{{Name: "..", Hash: hashA, Kind: KindTree}}},
		{"duplicate", []TreeEntry{
			{Name: "x", Hash: hashA, Kind: KindBlob},
			{Name: "x", Hash: hashB, Kind: KindTree},
		}},
		{"bad kind", []TreeEntry{{Name: "x", Hash: hashA, Kind: "link"}}},
		{"bad hash", []TreeEntry{{Name: "x", Hash: "abc", Kind: KindBlob}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MarshalTree(&TreeObj{Entries: tc.entries})
			if !errors.Is(err, ErrInvalidTree) {
				t.Fatalf("MarshalTree error = %v, want ErrInvalidTree", err)
			}
		})
	}
}

func TestMarshalUnmarshalCommit(t *testing.T) {
	tests := []struct {
		name string
		c    *CommitObj
	}{
		{
			name: "root commit",
			c: &CommitObj{
				TreeHash:  hashA,
				Author:    "alice",
				Timestamp: 1700000000,
				Message:   "init",
			},
		},
		{
			name: "with parent and signature",
			c: &CommitObj{
				TreeHash:  hashA,
				Parent:    hashB,
				Author:    "Alice Example <alice@example.com>",
				Timestamp: 1700000123,
				Signature: "sshsig-v1:ssh-ed25519:AAAA:BBBB",
				Message:   "multi\nline\n\nmessage\n",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UnmarshalCommit(MarshalCommit(tc.c))
			if err != nil {
				t.Fatalf("UnmarshalCommit: %v", err)
			}
			if diff := cmp.Diff(tc.c, got); diff != "" {
				t.Errorf("commit round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalCommitOmitsEmptyParent(t *testing.T) {
	data := MarshalCommit(&CommitObj{TreeHash: hashA, Author: "a", Timestamp: 1, Message: "m"})
	if bytes.Contains(data, []byte("parent")) {
		t.Fatalf("root commit encoding contains a parent line: %q", data)
	}
}

func TestUnmarshalCommitErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no separator", "tree " + string(hashA) + "\nauthor a\n"},
		{"unknown key", "tree " + string(hashA) + "\ncolor blue\n\nmsg"},
		{"bad timestamp", "tree " + string(hashA) + "\ntimestamp soon\n\nmsg"},
		{"two parents", "tree " + string(hashA) + "\nparent " + string(hashB) + "\nparent " + string(hashC) + "\n\nmsg"},
		{"missing tree", "author a\ntimestamp 1\n\nmsg"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalCommit([]byte(tc.data)); err == nil {
				t.Fatalf("UnmarshalCommit(%q) succeeded, want error", tc.data)
			}
		})
	}
}

func TestCommitSigningPayloadExcludesSignature(t *testing.T) {
	c := &CommitObj{TreeHash: hashA, Author: "a", Timestamp: 1, Message: "m", Signature: "sig"}
	payload := CommitSigningPayload(c)
	if bytes.Contains(payload, []byte("signature")) {
		t.Fatalf("signing payload contains signature: %q", payload)
	}
	if c.Signature != "sig" {
		t.Fatal("CommitSigningPayload mutated its argument")
	}
	unsigned := *c
	unsigned.Signature = ""
	if !bytes.Equal(payload, MarshalCommit(&unsigned)) {
		t.Fatal("signing payload differs from unsigned encoding")
	}
}
