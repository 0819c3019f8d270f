package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// minPrefixLen is the shortest abbreviated hash ResolvePrefix accepts.
const minPrefixLen = 4

// Store is a content-addressed object store. It computes hashes, skips
// writes of objects it already holds, compresses each object independently,
// and re-checks the hash of everything it reads back. Persistence is
// delegated to a Backend.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore creates a Store over the given backend. A nil logger disables
// logging.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// NewFileStore creates a Store with loose objects under root/objects.
func NewFileStore(root string) *Store {
	return NewStore(NewFileBackend(root), nil)
}

// NewMemoryStore creates a Store backed by memory.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryBackend(), nil)
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) (bool, error) {
	if !h.Valid() {
		return false, nil
	}
	return s.backend.Has(h)
}

// Write stores an object and returns its content hash. If an object with
// the same hash is already stored the write is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if !objType.Valid() {
		return "", fmt.Errorf("object write: unknown type %q", objType)
	}
	h := HashObject(objType, data)

	exists, err := s.backend.Has(h)
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if exists {
		s.logger.Debug("object exists", zap.String("hash", string(h)), zap.String("type", string(objType)))
		return h, nil
	}

	raw := make([]byte, 0, len(data)+len(objType)+12)
	raw = append(raw, envelopeHeader(objType, len(data))...)
	raw = append(raw, data...)

	compressed, err := compressZstd(raw)
	if err != nil {
		return "", fmt.Errorf("object write %s: compress: %w", h, err)
	}
	if err := s.backend.Put(h, compressed); err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	s.logger.Debug("object written",
		zap.String("hash", string(h)),
		zap.String("type", string(objType)),
		zap.Int("size", len(data)),
		zap.Int("stored", len(compressed)),
	)
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content. The
// decoded envelope is re-hashed and must match h.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !h.Valid() {
		return "", nil, fmt.Errorf("%w: invalid hash %q", ErrObjectNotFound, h)
	}
	compressed, err := s.backend.Get(h)
	if err != nil {
		return "", nil, err
	}
	raw, err := decompressZstd(compressed)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: decompress: %v", ErrObjectCorrupted, h, err)
	}
	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrObjectCorrupted, h, err)
	}
	if actual := HashObject(objType, content); actual != h {
		return "", nil, fmt.Errorf("%w: %s: content hashes to %s", ErrObjectCorrupted, h, actual)
	}
	return objType, content, nil
}

// parseEnvelope splits "type len\0content" and checks the declared length.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, errors.New("invalid format (no NUL)")
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typ, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("invalid header %q", header)
	}
	objType := ObjectType(typ)
	if !objType.Valid() {
		return "", nil, fmt.Errorf("unknown type %q", typ)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid length %q: %w", lenStr, err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("length mismatch (header=%d, actual=%d)", length, len(content))
	}
	return objType, content, nil
}

// ResolvePrefix expands an abbreviated hash to the single stored hash that
// starts with it.
func (s *Store) ResolvePrefix(prefix string) (Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < minPrefixLen || len(prefix) > HashLen || !isLowerHex(prefix) {
		return "", fmt.Errorf("%w: %q is not a hash or hash prefix", ErrObjectNotFound, prefix)
	}
	if len(prefix) == HashLen {
		h := Hash(prefix)
		ok, err := s.backend.Has(h)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return h, nil
	}

	matches, err := s.backend.List(prefix)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no object starts with %s", ErrObjectNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d objects", ErrAmbiguousHash, prefix, len(matches))
	}
}

// Verify reads back every stored object through the integrity check and
// returns how many were verified.
func (s *Store) Verify() (int, error) {
	hashes, err := s.backend.List("")
	if err != nil {
		return 0, err
	}
	for _, h := range hashes {
		if _, _, err := s.Read(h); err != nil {
			return 0, fmt.Errorf("verify: %w", err)
		}
	}
	return len(hashes), nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("%w: object %s is %q, want %q", ErrTypeMismatch, h, objType, want)
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrObjectCorrupted, h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrObjectCorrupted, h, err)
	}
	return c, nil
}

// compressZstd compresses data using zstd.
func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// decompressZstd decompresses zstd-compressed data.
func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
