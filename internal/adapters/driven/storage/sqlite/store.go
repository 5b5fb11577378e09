package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/epistle-sh/epistle/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/epistle-sh/epistle/internal/core/domain"
	"github.com/epistle-sh/epistle/internal/core/ports/driven"
)

// Store is a SQLite-backed cache database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.epistle/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".epistle", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HeaderCacheStore returns a HeaderCacheStore interface backed by this store.
func (s *Store) HeaderCacheStore() driven.HeaderCacheStore {
	return &headerCacheStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// headerCacheStore implements driven.HeaderCacheStore.
type headerCacheStore struct {
	store *Store
}

var _ driven.HeaderCacheStore = (*headerCacheStore)(nil)

// Save stores or updates one cached header, keyed by
// (account, mailbox, sequence number).
func (s *headerCacheStore) Save(ctx context.Context, header domain.CachedHeader) error {
	flagsJSON, err := json.Marshal(header.Envelope.Flags)
	if err != nil {
		return fmt.Errorf("marshalling flags: %w", err)
	}

	if header.FetchedAt.IsZero() {
		header.FetchedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO cached_headers
			(id, account, mailbox, seq_num, from_addr, to_addr, subject, date, flags, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account, mailbox, seq_num) DO UPDATE SET
			id = excluded.id,
			from_addr = excluded.from_addr,
			to_addr = excluded.to_addr,
			subject = excluded.subject,
			date = excluded.date,
			flags = excluded.flags,
			fetched_at = excluded.fetched_at
	`, header.ID, header.Account, header.Mailbox, header.Envelope.SeqNum,
		header.Envelope.From, header.Envelope.To, header.Envelope.Subject,
		header.Envelope.Date, string(flagsJSON), header.FetchedAt)

	if err != nil {
		return fmt.Errorf("saving cached header: %w", err)
	}
	return nil
}

// List returns the cached headers for a mailbox ordered by sequence number.
func (s *headerCacheStore) List(ctx context.Context, account, mailbox string) ([]domain.CachedHeader, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, account, mailbox, seq_num, from_addr, to_addr, subject, date, flags, fetched_at
		FROM cached_headers
		WHERE account = ? AND mailbox = ?
		ORDER BY seq_num
	`, account, mailbox)
	if err != nil {
		return nil, fmt.Errorf("listing cached headers: %w", err)
	}
	defer rows.Close()

	var headers []domain.CachedHeader
	for rows.Next() {
		var h domain.CachedHeader
		var flagsJSON string
		if err := rows.Scan(&h.ID, &h.Account, &h.Mailbox, &h.Envelope.SeqNum,
			&h.Envelope.From, &h.Envelope.To, &h.Envelope.Subject, &h.Envelope.Date,
			&flagsJSON, &h.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning cached header: %w", err)
		}
		if err := json.Unmarshal([]byte(flagsJSON), &h.Envelope.Flags); err != nil {
			return nil, fmt.Errorf("unmarshalling flags: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached headers: %w", err)
	}
	return headers, nil
}

// Purge drops all cached headers for a mailbox.
func (s *headerCacheStore) Purge(ctx context.Context, account, mailbox string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cached_headers WHERE account = ? AND mailbox = ?",
		account, mailbox)
	if err != nil {
		return fmt.Errorf("purging cached headers: %w", err)
	}
	return nil
}
