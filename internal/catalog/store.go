package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"spool/internal/fingerprint"
	"spool/internal/video"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. A mismatched database
// must be cleared rather than migrated; cached frames are reproducible.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different schema
// version.
var ErrSchemaMismatch = errors.New("catalog: schema version mismatch")

// Entry is one persisted (fingerprint, format) -> artifact mapping.
type Entry struct {
	Fingerprint fingerprint.Fingerprint
	Format      video.PixelFormat
	RelPath     string
	SizeBytes   int64
	CreatedAt   time.Time
}

// Store manages the cache-entry index backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the catalog database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: ensure directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("catalog: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("catalog: check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("catalog: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (clear the frame cache)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("catalog: create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("catalog: record schema version: %w", err)
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Put records a completed artifact. Re-recording the same (fingerprint,
// format) replaces the row; equal fingerprints name bit-identical content,
// so the replacement is indistinguishable.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.Fingerprint == "" {
		return errors.New("catalog: empty fingerprint")
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO cache_entries
            (fingerprint, pixel_format, rel_path, size_bytes, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		entry.Fingerprint.String(),
		entry.Format.String(),
		entry.RelPath,
		entry.SizeBytes,
		createdAt.Format(time.RFC3339Nano),
	)
}

// Has reports whether an artifact is recorded for the fingerprint at the
// given format.
func (s *Store) Has(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM cache_entries WHERE fingerprint = ? AND pixel_format = ?",
		fp.String(), format.String(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("catalog: query entry: %w", err)
	}
	return count > 0, nil
}

// Get returns the recorded entry, or nil when absent.
func (s *Store) Get(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, pixel_format, rel_path, size_bytes, created_at
         FROM cache_entries WHERE fingerprint = ? AND pixel_format = ?`,
		fp.String(), format.String(),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove is the explicit invalidation hook: it forgets the artifact for
// (fingerprint, format). Removing an absent entry is not an error.
func (s *Store) Remove(ctx context.Context, fp fingerprint.Fingerprint, format video.PixelFormat) error {
	return s.execWithRetry(ctx,
		"DELETE FROM cache_entries WHERE fingerprint = ? AND pixel_format = ?",
		fp.String(), format.String(),
	)
}

// List returns all entries ordered oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fingerprint, pixel_format, rel_path, size_bytes, created_at
         FROM cache_entries ORDER BY created_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate entries: %w", err)
	}
	return entries, nil
}

// TotalSize returns the summed artifact sizes across all entries.
func (s *Store) TotalSize(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT SUM(size_bytes) FROM cache_entries").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("catalog: sum sizes: %w", err)
	}
	return total.Int64, nil
}

// Clear forgets every entry.
func (s *Store) Clear(ctx context.Context) error {
	return s.execWithRetry(ctx, "DELETE FROM cache_entries")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		fpRaw      string
		formatRaw  string
		relPath    string
		sizeBytes  int64
		createdRaw string
	)
	if err := row.Scan(&fpRaw, &formatRaw, &relPath, &sizeBytes, &createdRaw); err != nil {
		return nil, err
	}

	format, err := video.ParsePixelFormat(formatRaw)
	if err != nil {
		return nil, fmt.Errorf("catalog: corrupt pixel format %q: %w", formatRaw, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("catalog: corrupt timestamp %q: %w", createdRaw, err)
	}

	return &Entry{
		Fingerprint: fingerprint.Fingerprint(fpRaw),
		Format:      format,
		RelPath:     relPath,
		SizeBytes:   sizeBytes,
		CreatedAt:   createdAt,
	}, nil
}
