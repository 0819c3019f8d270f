package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitOptions controls CommitWithOptions. A zero Timestamp means now.
type CommitOptions struct {
	Message   string
	Author    string
	Timestamp time.Time
	Signer    CommitSigner
}

// CommitResult describes a newly created commit.
type CommitResult struct {
	Hash     object.Hash
	Parent   object.Hash // empty for a root commit
	TreeHash object.Hash
	Branch   string // empty when HEAD was detached
	Commit   *object.CommitObj
}

// Commit records the index as a new commit on the current branch.
func (r *Repo) Commit(message, author string) (*CommitResult, error) {
	return r.CommitWithOptions(CommitOptions{Message: message, Author: author})
}

// CommitWithOptions creates a commit from the index:
//
//  1. Build the tree from the index.
//  2. Resolve HEAD for the parent (none on an unborn branch).
//  3. Write the commit object.
//  4. Move the current branch, or a detached HEAD, to the new commit.
//  5. Mark every index entry clean.
//
// It fails with ErrNothingToCommit when the tree equals the parent's tree,
// or when the index is empty on an unborn branch.
func (r *Repo) CommitWithOptions(opts CommitOptions) (*CommitResult, error) {
	if strings.TrimSpace(opts.Message) == "" {
		return nil, fmt.Errorf("commit: empty commit message")
	}
	author := strings.TrimSpace(opts.Author)
	if author == "" {
		return nil, fmt.Errorf("commit: author is required")
	}
	if strings.ContainsAny(author, "\n\x00") {
		return nil, fmt.Errorf("commit: author must be a single line")
	}

	ix, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	parent, err := r.ResolveHead()
	if errors.Is(err, ErrUnbornBranch) {
		parent = ""
	} else if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if parent == "" && len(ix.Entries) == 0 {
		return nil, fmt.Errorf("commit: %w: index is empty", ErrNothingToCommit)
	}

	treeHash, err := r.BuildTree(ix.Files())
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if parent != "" {
		parentCommit, err := r.Store.ReadCommit(parent)
		if err != nil {
			return nil, fmt.Errorf("commit: read parent %s: %w", parent.Short(), err)
		}
		if parentCommit.TreeHash == treeHash {
			return nil, fmt.Errorf("commit: %w: tree matches %s", ErrNothingToCommit, parent.Short())
		}
	}

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	commitObj := &object.CommitObj{
		TreeHash:  treeHash,
		Parent:    parent,
		Author:    author,
		Timestamp: ts.Unix(),
		Message:   opts.Message,
	}
	if opts.Signer != nil {
		signature, err := opts.Signer(object.CommitSigningPayload(commitObj))
		if err != nil {
			return nil, fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = strings.TrimSpace(signature)
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return nil, fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	reason := "commit: " + firstLine(opts.Message)
	if parent == "" {
		reason = "commit (initial): " + firstLine(opts.Message)
	}
	branch := ""
	if strings.HasPrefix(head, "refs/") {
		branch = strings.TrimPrefix(head, branchRefPrefix)
		err = r.UpdateRef(head, commitHash, reason)
	} else {
		err = r.SetHead(string(commitHash), reason)
	}
	if err != nil && !errors.Is(err, ErrRefUpdatedButReflogAppendFailed) {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if err != nil {
		r.logger.Warn("reflog append failed", zap.Error(err))
	}

	for _, e := range ix.Entries {
		e.State = StateClean
	}
	if err := r.WriteIndex(ix); err != nil {
		return nil, fmt.Errorf("commit %s: %w", commitHash.Short(), err)
	}

	r.logger.Info("committed",
		zap.String("hash", string(commitHash)),
		zap.String("branch", branch),
		zap.String("parent", string(parent)),
	)
	return &CommitResult{
		Hash:     commitHash,
		Parent:   parent,
		TreeHash: treeHash,
		Branch:   branch,
		Commit:   commitObj,
	}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
