package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/snap/pkg/fsutil"
	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

const (
	symrefPrefix    = "ref: "
	branchRefPrefix = "refs/heads/"
	headName        = "HEAD"
)

// Head reads .snap/HEAD. For a symbolic HEAD it returns the ref path (e.g.
// "refs/heads/main"); for a detached HEAD it returns the commit hash.
func (r *Repo) Head() (string, error) {
	path := r.metaPath(headName)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("head: %w", ioErr("read", path, err))
	}
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, symrefPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(content, symrefPrefix)), nil
	}
	if !object.Hash(content).Valid() {
		return "", fmt.Errorf("head: malformed HEAD %q", content)
	}
	return content, nil
}

// CurrentBranch returns the branch HEAD points at, or "" when HEAD is
// detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(head, branchRefPrefix) {
		return strings.TrimPrefix(head, branchRefPrefix), nil
	}
	return "", nil
}

// ResolveHead dereferences HEAD to a commit hash. It fails with
// ErrUnbornBranch if HEAD names a branch that has no commits yet.
func (r *Repo) ResolveHead() (object.Hash, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(head, "refs/") {
		return object.Hash(head), nil
	}
	h, ok, err := r.readRef(head)
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("resolve HEAD: %s: %w", strings.TrimPrefix(head, branchRefPrefix), ErrUnbornBranch)
	}
	return h, nil
}

// ResolveRef resolves a ref name to a commit hash.
//
// Resolution order:
//  1. "HEAD" resolves through ResolveHead.
//  2. A name starting with "refs/" is read from .snap/<name>.
//  3. Anything else is read from .snap/refs/heads/<name>.
//
// A missing branch fails with ErrBranchNotFound.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == headName {
		return r.ResolveHead()
	}
	refName := qualifyRef(name)
	h, ok, err := r.readRef(refName)
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	if !ok {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrBranchNotFound)
	}
	return h, nil
}

// ResolveRevision resolves a user-supplied revision to a commit hash. It
// accepts "HEAD", a branch name, a full ref path, or a full or abbreviated
// object hash. Branch names take precedence over hash prefixes.
func (r *Repo) ResolveRevision(rev string) (object.Hash, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return "", fmt.Errorf("resolve revision: empty revision: %w", object.ErrObjectNotFound)
	}
	if rev == headName {
		return r.ResolveHead()
	}
	if strings.HasPrefix(rev, "refs/") {
		return r.ResolveRef(rev)
	}
	if ValidateRefName(rev) == nil {
		h, ok, err := r.readRef(branchRefPrefix + rev)
		if err != nil {
			return "", fmt.Errorf("resolve revision %q: %w", rev, err)
		}
		if ok {
			return h, nil
		}
	}
	h, err := r.Store.ResolvePrefix(rev)
	if err != nil {
		return "", fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return h, nil
}

// UpdateRef atomically points the named ref at h and appends a reflog
// entry. The ref file is written before the reflog; if only the reflog
// append fails a *RefUpdateReflogError is returned and the ref keeps its new
// value.
func (r *Repo) UpdateRef(name string, h object.Hash, reason string) error {
	if !h.Valid() {
		return fmt.Errorf("update ref %q: invalid hash %q", name, h)
	}
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("update ref %q: %w: must start with refs/", name, ErrInvalidRefName)
	}
	if err := ValidateRefName(strings.TrimPrefix(name, "refs/")); err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}

	oldHash, _, err := r.readRef(name)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}

	path := r.metaPath(filepath.FromSlash(name))
	if err := fsutil.WriteFileAtomic(path, []byte(string(h)+"\n"), 0o644); err != nil {
		return fmt.Errorf("update ref %q: %w", name, ioErr("write", path, err))
	}
	r.logger.Debug("ref updated",
		zap.String("ref", name),
		zap.String("old", string(oldHash)),
		zap.String("new", string(h)),
	)

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{Ref: name, OldHash: oldHash, NewHash: h, Err: err}
	}
	return nil
}

// SetHead rewrites HEAD. A target starting with "refs/heads/" makes HEAD
// symbolic; any other target must be a full commit hash and detaches HEAD.
// Detached moves are recorded in the HEAD reflog.
func (r *Repo) SetHead(target, reason string) error {
	path := r.metaPath(headName)
	if strings.HasPrefix(target, branchRefPrefix) {
		if err := ValidateRefName(strings.TrimPrefix(target, branchRefPrefix)); err != nil {
			return fmt.Errorf("set HEAD: %w", err)
		}
		if err := fsutil.WriteFileAtomic(path, []byte(symrefPrefix+target+"\n"), 0o644); err != nil {
			return fmt.Errorf("set HEAD: %w", ioErr("write", path, err))
		}
		r.logger.Debug("HEAD attached", zap.String("ref", target))
		return nil
	}

	h := object.Hash(target)
	if !h.Valid() {
		return fmt.Errorf("set HEAD: %q is neither a branch ref nor a commit hash", target)
	}
	oldHash, err := r.ResolveHead()
	if err != nil && !errors.Is(err, ErrUnbornBranch) {
		return fmt.Errorf("set HEAD: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, []byte(target+"\n"), 0o644); err != nil {
		return fmt.Errorf("set HEAD: %w", ioErr("write", path, err))
	}
	r.logger.Debug("HEAD detached", zap.String("hash", target))
	if err := r.appendReflog(headName, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{Ref: headName, OldHash: oldHash, NewHash: h, Err: err}
	}
	return nil
}

// ListRefs lists references under .snap/refs. Names are full ref paths,
// e.g. "refs/heads/main".
func (r *Repo) ListRefs() (map[string]object.Hash, error) {
	root := r.metaPath("refs")
	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(r.SnapDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		h, _, err := r.readRef(name)
		if err != nil {
			return err
		}
		refs[name] = h
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// readRef reads the hash stored in a ref file. ok is false when the ref does
// not exist.
func (r *Repo) readRef(name string) (h object.Hash, ok bool, err error) {
	path := r.metaPath(filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return "", false, nil
		}
		return "", false, ioErr("read", path, err)
	}
	h = object.Hash(strings.TrimSpace(string(data)))
	if !h.Valid() {
		return "", false, fmt.Errorf("ref %s: malformed hash %q", name, h)
	}
	return h, true, nil
}

func qualifyRef(name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	return branchRefPrefix + name
}

// ValidateRefName checks a branch name (or a ref path below refs/) against
// the rules git applies to ref names.
func ValidateRefName(name string) error {
	bad := func(why string) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidRefName, name, why)
	}
	switch {
	case name == "":
		return bad("empty")
	case name == headName:
		return bad("reserved")
	case strings.HasPrefix(name, "-"):
		return bad("starts with '-'")
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return bad("leading or trailing '/'")
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock"):
		return bad("ends with '.' or '.lock'")
	case strings.Contains(name, "..") || strings.Contains(name, "//") || strings.Contains(name, "@{"):
		return bad("contains '..', '//' or '@{'")
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f || strings.ContainsRune(" ~^:?*[\\", c) {
			return bad(fmt.Sprintf("contains %q", c))
		}
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return bad("component starts with '.'")
		}
	}
	return nil
}

func sortedRefNames(refs map[string]object.Hash) []string {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
