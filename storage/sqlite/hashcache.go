package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/benedoc-inc/pdfdiff/core/compare"
	"github.com/benedoc-inc/pdfdiff/storage/sqlite/migrations"
)

// Ensure HashCache implements the interface.
var _ compare.HashCache = (*HashCache)(nil)

// DefaultFileName is the database file created inside a cache directory
const DefaultFileName = "hashes.db"

// HashCache stores perceptual hashes in a SQLite database
type HashCache struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path. If path is empty the
// cache lives in the user cache directory.
func Open(path string) (*HashCache, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("getting cache directory: %w", err)
		}
		path = filepath.Join(dir, "pdfdiff", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &HashCache{
		db:   db,
		path: path,
	}

	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *HashCache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *HashCache) Path() string {
	return c.path
}

// Get returns the hash stored for digest
func (c *HashCache) Get(ctx context.Context, digest string) (uint64, bool, error) {
	var stored int64
	err := c.db.QueryRowContext(ctx,
		`SELECT phash FROM image_hashes WHERE digest = ?`, digest).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying hash: %w", err)
	}
	// SQLite integers are signed; the hash bits are stored unchanged
	return uint64(stored), true, nil
}

// Put stores the hash for digest, replacing any previous value
func (c *HashCache) Put(ctx context.Context, digest string, hash uint64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO image_hashes (digest, phash)
		VALUES (?, ?)
		ON CONFLICT(digest) DO UPDATE SET
			phash = excluded.phash
	`, digest, int64(hash))
	if err != nil {
		return fmt.Errorf("storing hash: %w", err)
	}
	return nil
}

// Count returns the number of cached hashes
func (c *HashCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM image_hashes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting hashes: %w", err)
	}
	return n, nil
}

// migrate runs all pending migrations.
func (c *HashCache) migrate(fsys fs.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_image_hashes.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
