package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/odvcencio/snap/pkg/object"
)

// racyWindow is the timestamp granularity assumed for the filesystem. A
// file modified within racyWindow of the moment its index entry was
// recorded may have changed again in the same tick, so its stat
// fingerprint is not trusted.
const racyWindow = 2 * time.Second

// fileStat is the fingerprint recorded in the index for a working file.
// ChangeTime is the inode change time where the platform exposes it, and 0
// elsewhere; it moves when content is written or mtime is reset.
type fileStat struct {
	Size       int64
	ModTime    int64 // unix nanoseconds
	ChangeTime int64 // unix nanoseconds
}

func statOf(info fs.FileInfo) fileStat {
	return fileStat{
		Size:       info.Size(),
		ModTime:    info.ModTime().UnixNano(),
		ChangeTime: changeTime(info),
	}
}

func (r *Repo) absPath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}

// repoRelPath converts a path (absolute, or relative to the current
// directory) into a clean slash-separated path relative to the repository
// root. A relative path that resolves outside the repository from the
// current directory is taken as already repo-relative. The root itself is
// returned as ".".
func (r *Repo) repoRelPath(p string) (string, error) {
	var rel string
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
	} else {
		rel = filepath.Clean(p)
		if cwd, err := os.Getwd(); err == nil {
			if fromCwd, err := filepath.Rel(r.RootDir, filepath.Join(cwd, p)); err == nil && !isOutside(fromCwd) {
				rel = fromCwd
			}
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if isOutside(rel) {
		return "", fmt.Errorf("%w: %s is outside repository %s", ErrPathNotFound, p, r.RootDir)
	}
	if rel == MetaDirName || strings.HasPrefix(rel, MetaDirName+"/") {
		return "", fmt.Errorf("%w: %s is inside %s", ErrPathNotFound, p, MetaDirName)
	}
	return rel, nil
}

func isOutside(rel string) bool {
	rel = filepath.ToSlash(rel)
	return rel == ".." || strings.HasPrefix(rel, "../") || filepath.IsAbs(rel)
}

// underPath reports whether p equals dir or lies below it. "." contains
// every path.
func underPath(p, dir string) bool {
	return dir == "." || p == dir || strings.HasPrefix(p, dir+"/")
}

// walkWorkingFiles returns the regular, non-ignored files below relDir
// ("." for the whole tree), keyed by repo-relative path. Ignored
// directories are not descended into; symlinks and other special files are
// skipped.
func (r *Repo) walkWorkingFiles(ic *IgnoreChecker, relDir string) (map[string]fileStat, error) {
	files := make(map[string]fileStat)
	root := r.absPath(relDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return ioErr("walk", path, walkErr)
		}
		relOS, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(relOS)
		if d.IsDir() {
			if rel != "." && ic.IsIgnoredDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ic.IsIgnored(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return ioErr("stat", path, err)
		}
		files[rel] = statOf(info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// statWorkingFile stats a single working file. ok is false when nothing, or
// something other than a regular file, is at rel.
func (r *Repo) statWorkingFile(rel string) (st fileStat, ok bool, err error) {
	abs := r.absPath(rel)
	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return fileStat{}, false, nil
		}
		return fileStat{}, false, ioErr("stat", abs, err)
	}
	if !info.Mode().IsRegular() {
		return fileStat{}, false, nil
	}
	return statOf(info), true, nil
}

// workingHash returns the blob hash of the working file at rel. The
// indexed hash is reused only when the entry's fingerprint matches and the
// file was last modified well before the entry was recorded.
func (r *Repo) workingHash(rel string, st fileStat, entry *IndexEntry) (object.Hash, error) {
	if entry.trustsStat(st) {
		return entry.BlobHash, nil
	}
	return r.hashWorkingFile(rel)
}

// hashWorkingFile reads the working file at rel and returns its blob hash.
func (r *Repo) hashWorkingFile(rel string) (object.Hash, error) {
	abs := r.absPath(rel)
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", ioErr("read", abs, err)
	}
	return object.HashObject(object.TypeBlob, data), nil
}
