package object

// Backend is the raw persistence layer under a Store: an abstract mapping
// from hash to compressed object bytes. Backends never interpret the bytes;
// hashing, compression and integrity checks live in Store.
type Backend interface {
	// Has reports whether bytes are stored under h.
	Has(h Hash) (bool, error)

	// Get returns the bytes stored under h, or an error wrapping
	// ErrObjectNotFound.
	Get(h Hash) ([]byte, error)

	// Put stores data under h. Implementations must be atomic: a reader
	// never sees partial data under h. Putting an existing key is a no-op.
	Put(h Hash, data []byte) error

	// List returns the stored hashes that start with prefix, sorted.
	List(prefix string) ([]Hash, error)

	Close() error
}
