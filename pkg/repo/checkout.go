package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/snap/pkg/fsutil"
	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

// CheckoutOptions controls Checkout.
type CheckoutOptions struct {
	// Force discards uncommitted changes instead of refusing.
	Force bool
}

// CheckoutResult describes a completed checkout. Written and Removed hold
// repo-relative paths in sorted order.
type CheckoutResult struct {
	Hash    object.Hash
	Branch  string // empty for a detached checkout
	Written []string
	Removed []string
}

// Checkout materializes the target commit in the working directory.
// The target may be a branch name, "HEAD", a ref path, or a full or
// abbreviated commit hash; branch names attach HEAD, anything else detaches
// it.
//
// Algorithm:
//  1. Resolve the target to a commit.
//  2. Unless forced, refuse with *ConflictError if any path is not
//     Unmodified.
//  3. Flatten the target tree and read every blob, verifying each.
//  4. Remove working files the target does not contain: tracked files
//     always, untracked files unless ignored.
//  5. Write every target file whose content differs.
//  6. Rewrite the index to mirror the target tree.
//  7. Update HEAD.
//
// Untracked ignored files are never removed.
func (r *Repo) Checkout(target string, opts CheckoutOptions) (*CheckoutResult, error) {
	targetHash, branch, err := r.resolveCheckoutTarget(target)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	commit, err := r.Store.ReadCommit(targetHash)
	if err != nil {
		return nil, fmt.Errorf("checkout: read commit %s: %w", targetHash.Short(), err)
	}

	if !opts.Force && !r.Config.Checkout.Force {
		if err := r.ensureClean(target); err != nil {
			return nil, err
		}
	}

	targetFiles, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	contents := make(map[string][]byte, len(targetFiles))
	for _, f := range targetFiles {
		blob, err := r.Store.ReadBlob(f.BlobHash)
		if err != nil {
			return nil, fmt.Errorf("checkout: read blob for %q: %w", f.Path, err)
		}
		contents[f.Path] = blob.Data
	}

	ic, err := NewIgnoreChecker(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	work, err := r.walkWorkingFiles(ic, ".")
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	headTracked, _, err := r.headFiles()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	// Ignore rules exempt untracked files only. Tracked paths missing from
	// the target go even when they match a pattern.
	candidates := make(map[string]bool, len(work)+len(ix.Entries)+len(headTracked))
	for p := range work {
		candidates[p] = true
	}
	for p := range ix.Entries {
		candidates[p] = true
	}
	for p := range headTracked {
		candidates[p] = true
	}

	result := &CheckoutResult{Hash: targetHash, Branch: branch}
	for _, p := range sortedKeys(candidates) {
		if _, keep := contents[p]; keep {
			continue
		}
		if _, walked := work[p]; !walked {
			_, exists, err := r.statWorkingFile(p)
			if err != nil {
				return nil, fmt.Errorf("checkout: %w", err)
			}
			if !exists {
				continue
			}
		}
		abs := r.absPath(p)
		if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("checkout: %w", ioErr("remove", abs, err))
		}
		removeEmptyParents(filepath.Dir(abs), r.RootDir)
		result.Removed = append(result.Removed, p)
		r.logger.Debug("checkout removed", zap.String("path", p))
	}

	newIx := newIndex()
	for _, f := range targetFiles {
		abs := r.absPath(f.Path)
		st, exists, err := r.statWorkingFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
		upToDate := false
		if exists {
			h, err := r.hashWorkingFile(f.Path)
			if err != nil {
				return nil, fmt.Errorf("checkout: %w", err)
			}
			upToDate = h == f.BlobHash
		}
		if !upToDate {
			if err := fsutil.WriteFileAtomic(abs, contents[f.Path], 0o644); err != nil {
				return nil, fmt.Errorf("checkout: %w", ioErr("write", abs, err))
			}
			result.Written = append(result.Written, f.Path)
			r.logger.Debug("checkout wrote", zap.String("path", f.Path), zap.String("blob", string(f.BlobHash)))
			if st, _, err = r.statWorkingFile(f.Path); err != nil {
				return nil, fmt.Errorf("checkout: %w", err)
			}
		}
		newIx.Entries[f.Path] = newIndexEntry(f.Path, f.BlobHash, StateClean, st)
	}
	if err := r.WriteIndex(newIx); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	headTarget := string(targetHash)
	if branch != "" {
		headTarget = branchRefPrefix + branch
	}
	if err := r.SetHead(headTarget, "checkout: moving to "+target); err != nil && !errors.Is(err, ErrRefUpdatedButReflogAppendFailed) {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	r.logger.Info("checked out",
		zap.String("target", target),
		zap.String("hash", string(targetHash)),
		zap.Int("written", len(result.Written)),
		zap.Int("removed", len(result.Removed)),
	)
	return result, nil
}

// resolveCheckoutTarget returns the commit hash for target and, when the
// target names a branch, the branch name.
func (r *Repo) resolveCheckoutTarget(target string) (object.Hash, string, error) {
	target = strings.TrimSpace(target)
	if target == headName {
		h, err := r.ResolveHead()
		if err != nil {
			return "", "", err
		}
		branch, err := r.CurrentBranch()
		return h, branch, err
	}
	name := strings.TrimPrefix(target, branchRefPrefix)
	if ValidateRefName(name) == nil {
		h, ok, err := r.readRef(branchRefPrefix + name)
		if err != nil {
			return "", "", err
		}
		if ok {
			return h, name, nil
		}
	}
	h, err := r.ResolveRevision(target)
	if err != nil {
		return "", "", err
	}
	return h, "", nil
}

// ensureClean refuses with *ConflictError when any path has uncommitted
// changes or is untracked.
func (r *Repo) ensureClean(target string) error {
	st, err := r.Status()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	changes := st.Changes()
	if len(changes) == 0 {
		return nil
	}
	paths := make([]string, len(changes))
	for i, e := range changes {
		paths[i] = e.Path
	}
	return &ConflictError{Target: target, Paths: paths}
}
