package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/snap/pkg/object"
)

// Branch is a named pointer to a commit.
type Branch struct {
	Name    string
	Hash    object.Hash
	Current bool
}

// CreateBranch creates a branch at the commit HEAD resolves to. It fails
// with ErrUnbornBranch before the first commit.
func (r *Repo) CreateBranch(name string) error {
	head, err := r.ResolveHead()
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return r.CreateBranchAt(name, head)
}

// CreateBranchAt creates a branch pointing at the given commit. It fails
// with ErrBranchExists if the branch is already present.
func (r *Repo) CreateBranchAt(name string, target object.Hash) error {
	if err := ValidateRefName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	refName := branchRefPrefix + name
	_, exists, err := r.readRef(refName)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if exists {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}
	if _, err := r.Store.ReadCommit(target); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if err := r.UpdateRef(refName, target, "branch: created at "+target.Short()); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// DeleteBranch removes a branch and its reflog. The checked-out branch
// cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch %q: %w", name, ErrCurrentBranch)
	}
	if err := ValidateRefName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}

	refName := branchRefPrefix + name
	_, exists, err := r.readRef(refName)
	if err != nil {
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("delete branch %q: %w", name, ErrBranchNotFound)
	}
	refPath := r.metaPath(filepath.FromSlash(refName))
	if err := os.Remove(refPath); err != nil {
		return fmt.Errorf("delete branch %q: %w", name, ioErr("remove", refPath, err))
	}
	if err := os.Remove(r.reflogPath(refName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete branch %q: %w", name, ioErr("remove", r.reflogPath(refName), err))
	}
	removeEmptyParents(filepath.Dir(refPath), r.metaPath("refs", "heads"))
	removeEmptyParents(filepath.Dir(r.reflogPath(refName)), r.metaPath("logs", "refs", "heads"))
	return nil
}

// ListBranches returns every branch sorted by name, marking the one HEAD
// points at.
func (r *Repo) ListBranches() ([]Branch, error) {
	refs, err := r.ListRefs()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var branches []Branch
	for _, refName := range sortedRefNames(refs) {
		if !strings.HasPrefix(refName, branchRefPrefix) {
			continue
		}
		name := strings.TrimPrefix(refName, branchRefPrefix)
		branches = append(branches, Branch{
			Name:    name,
			Hash:    refs[refName],
			Current: name == current,
		})
	}
	return branches, nil
}

// removeEmptyParents removes dir and its ancestors while they are empty,
// stopping at (and never removing) stop.
func removeEmptyParents(dir, stop string) {
	stop = filepath.Clean(stop)
	for dir = filepath.Clean(dir); dir != stop && strings.HasPrefix(dir, stop+string(filepath.Separator)); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
