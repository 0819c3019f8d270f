// Package repo implements a snapshot repository on top of the object store:
// refs and HEAD, the staging index, commits, status and checkout.
package repo

import (
	"path/filepath"

	"github.com/odvcencio/snap/pkg/object"
	"go.uber.org/zap"
)

// MetaDirName is the name of the metadata directory at the working-tree root.
const MetaDirName = ".snap"

// Repo represents an opened snap repository.
type Repo struct {
	RootDir string        // working directory root
	SnapDir string        // .snap/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config       // contents of .snap/config.toml

	logger *zap.Logger
}

// Option configures Init and Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
	store  *object.Store
	config *Config
}

// WithLogger sets the logger used by the repository and its object store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore overrides the object store selected by the repository config.
func WithStore(store *object.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithConfig sets the configuration written by Init. Open ignores it.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Logger returns the repository logger.
func (r *Repo) Logger() *zap.Logger {
	return r.logger
}

// Close releases the object store.
func (r *Repo) Close() error {
	return r.Store.Close()
}

func (r *Repo) metaPath(elem ...string) string {
	return filepath.Join(append([]string{r.SnapDir}, elem...)...)
}
