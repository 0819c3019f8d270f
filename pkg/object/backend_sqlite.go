package object

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/multierr"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS objects (
	hash TEXT PRIMARY KEY,
	data BLOB NOT NULL
) WITHOUT ROWID;
`

// SQLiteBackend stores all objects in a single SQLite database file. Each
// Put runs in its own transaction, so an interrupted write never leaves a
// row visible.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLiteBackend opens (creating if needed) the database at path and
// ensures the objects table exists.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite backend: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("sqlite backend: open %s: %w", path, err)
	}
	// One writer, one process: a single connection keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		sqliteSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, multierr.Append(fmt.Errorf("sqlite backend: init %s: %w", path, err), db.Close())
		}
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Has(h Hash) (bool, error) {
	var one int
	err := b.db.QueryRow("SELECT 1 FROM objects WHERE hash = ?", string(h)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite backend: has %s: %w", h, err)
	}
	return true, nil
}

func (b *SQLiteBackend) Get(h Hash) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow("SELECT data FROM objects WHERE hash = ?", string(h)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite backend: get %s: %w", h, err)
	}
	return data, nil
}

func (b *SQLiteBackend) Put(h Hash, data []byte) (retErr error) {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite backend: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, tx.Rollback())
		}
	}()

	if _, err := tx.Exec("INSERT OR IGNORE INTO objects (hash, data) VALUES (?, ?)", string(h), data); err != nil {
		return fmt.Errorf("sqlite backend: put %s: %w", h, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite backend: commit %s: %w", h, err)
	}
	return nil
}

func (b *SQLiteBackend) List(prefix string) ([]Hash, error) {
	rows, err := b.db.Query("SELECT hash FROM objects WHERE hash LIKE ? ORDER BY hash", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("sqlite backend: list: %w", err)
	}
	defer rows.Close()

	var out []Hash
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("sqlite backend: list: %w", err)
		}
		out = append(out, Hash(h))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite backend: list: %w", err)
	}
	return out, nil
}

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return fmt.Errorf("sqlite backend: close %s: %w", b.path, err)
	}
	return nil
}
