package object

// Hash is a 40-character hex-encoded SHA-1 digest of an object's canonical
// encoding.
type Hash string

// ObjectType identifies the kind of object stored. It is the type tag in
// the envelope header and decides how a payload is decoded.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

// EntryKind is the kind of object a tree entry points at.
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Name string
	Hash Hash
	Kind EntryKind
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Kind == KindTree
}

// TreeObj holds a list of tree entries, sorted by Name once serialized.
type TreeObj struct {
	Entries []TreeEntry
}

// Entry returns the entry with the given name.
func (t *TreeObj) Entry(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// CommitObj represents a commit pointing to a tree with metadata. Parent is
// empty for a root commit.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash
	Author    string
	Timestamp int64
	Signature string
	Message   string
}
