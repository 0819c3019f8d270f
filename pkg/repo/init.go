package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/snap/pkg/fsutil"
	"go.uber.org/zap"
)

// DefaultBranch is the branch HEAD points at in a fresh repository.
const DefaultBranch = "main"

// Init creates a new repository at path. It creates the .snap/ directory
// structure (HEAD, config.toml, objects/, refs/heads/, logs/) and opens the
// configured object store. It fails with ErrRepoExists if .snap/ is already
// present.
func Init(path string, opts ...Option) (*Repo, error) {
	o := newOptions(opts)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	snapDir := filepath.Join(abs, MetaDirName)

	exists, err := fsutil.Exists(snapDir)
	if err != nil {
		return nil, fmt.Errorf("init: %w", ioErr("stat", snapDir, err))
	}
	if exists {
		return nil, fmt.Errorf("init: %w at %s", ErrRepoExists, snapDir)
	}

	dirs := []string{
		filepath.Join(snapDir, "objects"),
		filepath.Join(snapDir, "refs", "heads"),
		filepath.Join(snapDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: %w", ioErr("mkdir", d, err))
		}
	}

	cfg := o.config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := writeConfig(snapDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	headPath := filepath.Join(snapDir, "HEAD")
	if err := fsutil.WriteFileAtomic(headPath, []byte(symrefPrefix+branchRefPrefix+DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: %w", ioErr("write", headPath, err))
	}

	r, err := newRepo(abs, snapDir, cfg, o)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	r.logger.Info("initialized repository", zap.String("path", snapDir), zap.String("store", cfg.Core.Store))
	return r, nil
}

// Open searches upward from path for a .snap/ directory and opens the
// repository. It fails with ErrRepoNotInitialized if none is found.
func Open(path string, opts ...Option) (*Repo, error) {
	o := newOptions(opts)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		snapDir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(snapDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(snapDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r, err := newRepo(cur, snapDir, cfg, o)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open: %w", ioErr("stat", snapDir, err))
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w (or any parent up to %s): %s", ErrRepoNotInitialized, cur, abs)
		}
		cur = parent
	}
}

func newRepo(root, snapDir string, cfg *Config, o *options) (*Repo, error) {
	store := o.store
	if store == nil {
		var err error
		store, err = openStore(snapDir, cfg, o.logger.Named("object"))
		if err != nil {
			return nil, err
		}
	}
	return &Repo{
		RootDir: root,
		SnapDir: snapDir,
		Store:   store,
		Config:  cfg,
		logger:  o.logger,
	}, nil
}
