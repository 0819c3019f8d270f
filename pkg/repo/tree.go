package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/snap/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path     string
	BlobHash object.Hash
}

type treeNode struct {
	files map[string]object.Hash
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{files: make(map[string]object.Hash), dirs: make(map[string]*treeNode)}
}

// BuildTree converts a flat map of slash-separated paths to blob hashes into
// nested tree objects, writing every subtree before its parent, and returns
// the root tree hash. The result depends only on the map contents. A path
// that is also used as a directory prefix fails with ErrInvalidTree.
func (r *Repo) BuildTree(entries map[string]object.Hash) (object.Hash, error) {
	root := newTreeNode()
	for p, h := range entries {
		if err := validateRepoPath(p); err != nil {
			return "", fmt.Errorf("build tree: %w: %v", object.ErrInvalidTree, err)
		}
		if !h.Valid() {
			return "", fmt.Errorf("build tree: %w: %s: invalid blob hash %q", object.ErrInvalidTree, p, h)
		}
		if err := root.insert(p, h); err != nil {
			return "", fmt.Errorf("build tree: %w", err)
		}
	}
	return r.writeTreeNode(root, "")
}

func (n *treeNode) insert(p string, h object.Hash) error {
	parts := strings.Split(p, "/")
	cur := n
	for i, part := range parts[:len(parts)-1] {
		if _, isFile := cur.files[part]; isFile {
			return fmt.Errorf("%w: %s is both a file and a directory", object.ErrInvalidTree, strings.Join(parts[:i+1], "/"))
		}
		child, ok := cur.dirs[part]
		if !ok {
			child = newTreeNode()
			cur.dirs[part] = child
		}
		cur = child
	}
	name := parts[len(parts)-1]
	if _, isDir := cur.dirs[name]; isDir {
		return fmt.Errorf("%w: %s is both a file and a directory", object.ErrInvalidTree, p)
	}
	cur.files[name] = h
	return nil
}

func (r *Repo) writeTreeNode(n *treeNode, prefix string) (object.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(n.files)+len(n.dirs))
	for name, h := range n.files {
		entries = append(entries, object.TreeEntry{Name: name, Hash: h, Kind: object.KindBlob})
	}
	for name, child := range n.dirs {
		childPath := name
		if prefix != "" {
			childPath = prefix + "/" + name
		}
		h, err := r.writeTreeNode(child, childPath)
		if err != nil {
			return "", err
		}
		entries = append(entries, object.TreeEntry{Name: name, Hash: h, Kind: object.KindTree})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree and returns every file with its full
// slash-separated path, sorted by path. Every tree on the way is read
// through the store's integrity check.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	type frame struct {
		hash   object.Hash
		prefix string
	}
	stack := []frame{{hash: h}}
	var result []TreeFileEntry
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tree, err := r.Store.ReadTree(top.hash)
		if err != nil {
			return nil, fmt.Errorf("flatten tree: read %s: %w", top.hash, err)
		}
		for _, entry := range tree.Entries {
			fullPath := entry.Name
			if top.prefix != "" {
				fullPath = top.prefix + "/" + entry.Name
			}
			if entry.IsDir() {
				stack = append(stack, frame{hash: entry.Hash, prefix: fullPath})
				continue
			}
			result = append(result, TreeFileEntry{Path: fullPath, BlobHash: entry.Hash})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// treeFiles flattens a tree into a path to blob hash map.
func (r *Repo) treeFiles(h object.Hash) (map[string]object.Hash, error) {
	entries, err := r.FlattenTree(h)
	if err != nil {
		return nil, err
	}
	files := make(map[string]object.Hash, len(entries))
	for _, e := range entries {
		files[e.Path] = e.BlobHash
	}
	return files, nil
}

// headFiles returns the files recorded by the HEAD commit and that commit's
// hash. On an unborn branch both are empty.
func (r *Repo) headFiles() (map[string]object.Hash, object.Hash, error) {
	head, err := r.ResolveHead()
	if errors.Is(err, ErrUnbornBranch) {
		return map[string]object.Hash{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	commit, err := r.Store.ReadCommit(head)
	if err != nil {
		return nil, "", fmt.Errorf("read HEAD commit %s: %w", head.Short(), err)
	}
	files, err := r.treeFiles(commit.TreeHash)
	if err != nil {
		return nil, "", err
	}
	return files, head, nil
}

// validateRepoPath checks that p is a clean, relative, slash-separated path
// whose components are valid tree entry names.
func validateRepoPath(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%q is absolute", p)
	}
	for _, part := range strings.Split(p, "/") {
		switch {
		case part == "":
			return fmt.Errorf("%q has an empty component", p)
		case part == "." || part == "..":
			return fmt.Errorf("%q is not clean", p)
		case strings.ContainsAny(part, "\x00\n"):
			return fmt.Errorf("%q contains NUL or newline", p)
		}
	}
	return nil
}
