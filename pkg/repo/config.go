package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/snap/pkg/fsutil"
	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

const configFileName = "config.toml"

// Object store kinds accepted in [core] store.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

const sqliteFileName = "objects.db"

// Config is the repository-local configuration in .snap/config.toml.
type Config struct {
	Core     CoreConfig     `toml:"core"`
	User     UserConfig     `toml:"user"`
	Checkout CheckoutConfig `toml:"checkout"`
}

type CoreConfig struct {
	Store string `toml:"store"`
}

type UserConfig struct {
	Name string `toml:"name,omitempty"`
}

type CheckoutConfig struct {
	// Force makes every checkout skip the uncommitted-changes check.
	Force bool `toml:"force"`
}

// DefaultConfig returns the configuration written by Init when none is given.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{Store: StoreFile}}
}

func (c *Config) validate() error {
	switch c.Core.Store {
	case StoreFile, StoreSQLite:
		return nil
	case "":
		c.Core.Store = StoreFile
		return nil
	default:
		return fmt.Errorf("core.store: unknown store %q (want %q or %q)", c.Core.Store, StoreFile, StoreSQLite)
	}
}

// ReadConfig reads config.toml from snapDir. A missing file yields the
// default configuration.
func ReadConfig(snapDir string) (*Config, error) {
	path := filepath.Join(snapDir, configFileName)
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", ioErr("read", path, err))
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig validates cfg and atomically writes it to .snap/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if err := writeConfig(r.SnapDir, cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

func writeConfig(snapDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	path := filepath.Join(snapDir, configFileName)
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", ioErr("write", path, err))
	}
	return nil
}

// openStore opens the object store selected by cfg.Core.Store.
func openStore(snapDir string, cfg *Config, logger *zap.Logger) (*object.Store, error) {
	switch cfg.Core.Store {
	case StoreSQLite:
		backend, err := object.OpenSQLiteBackend(filepath.Join(snapDir, sqliteFileName))
		if err != nil {
			return nil, err
		}
		return object.NewStore(backend, logger), nil
	default:
		return object.NewStore(object.NewFileBackend(snapDir), logger), nil
	}
}
