package object

import "errors"

var (
	// ErrObjectNotFound is returned when no object is stored under a hash.
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectCorrupted is returned when stored bytes fail to decode or no
	// longer hash to the key they are stored under.
	ErrObjectCorrupted = errors.New("object corrupted")

	// ErrTypeMismatch is returned by the typed readers when the stored object
	// has a different type tag.
	ErrTypeMismatch = errors.New("object type mismatch")

	// ErrAmbiguousHash is returned when an abbreviated hash matches more than
	// one object.
	ErrAmbiguousHash = errors.New("ambiguous object hash")

	// ErrInvalidTree is returned for trees with empty, duplicate, or
	// malformed entry names.
	ErrInvalidTree = errors.New("invalid tree")
)
