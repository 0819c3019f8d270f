package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/snap/pkg/object"
)

var (
	ErrRepoNotInitialized = errors.New("not a snap repository")
	ErrRepoExists         = errors.New("repository already exists")
	ErrUnbornBranch       = errors.New("branch has no commits yet")
	ErrPathNotFound       = errors.New("path not found")
	ErrConflict           = errors.New("uncommitted changes would be overwritten")
	ErrNothingToCommit    = errors.New("nothing to commit")
	ErrBranchExists       = errors.New("branch already exists")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrCurrentBranch      = errors.New("branch is checked out")
	ErrInvalidRefName     = errors.New("invalid ref name")
	ErrIO                 = errors.New("i/o failure")

	ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")
)

// ConflictError lists the working-tree paths that block a checkout.
type ConflictError struct {
	Target string
	Paths  []string
}

func (e *ConflictError) Error() string {
	const maxListed = 10
	paths := e.Paths
	more := ""
	if len(paths) > maxListed {
		more = fmt.Sprintf(" (and %d more)", len(paths)-maxListed)
		paths = paths[:maxListed]
	}
	return fmt.Sprintf("checkout %s: %s: %s%s", e.Target, ErrConflict, strings.Join(paths, ", "), more)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IOError wraps a filesystem failure with the operation and path involved.
// It matches ErrIO and unwraps to the underlying error.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}
