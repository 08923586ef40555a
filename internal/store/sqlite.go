package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/serroba/url-mapper/internal/shortener"
	"golang.org/x/xerrors"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS url_mappings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		full_url   TEXT      NOT NULL,
		short_url  TEXT      UNIQUE,
		shortened  BOOLEAN   NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS url_mappings_full_url_idx ON url_mappings (full_url);
`

const sqliteColumns = `id, full_url, short_url, shortened, created_at, updated_at`

// SQLiteStore is a shortener.Repository backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	l  *sync.Mutex // serializes access from concurrent requests
}

// NewSQLiteStore opens the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, xerrors.Errorf("could not open SQLite database: %w", err)
	}

	return &SQLiteStore{
		db: db,
		l:  new(sync.Mutex),
	}, nil
}

// Migrate creates the mapping table and its indexes if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.l.Lock()
	defer s.l.Unlock()

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return xerrors.Errorf("could not migrate SQLite database: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]shortener.Mapping, error) {
	s.l.Lock()
	defer s.l.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM url_mappings ORDER BY id`)
	if err != nil {
		return nil, xerrors.Errorf("error listing mappings: %w", err)
	}
	defer rows.Close()

	mappings := []shortener.Mapping{}

	for rows.Next() {
		m, err := scanSQLiteMapping(rows)
		if err != nil {
			return nil, xerrors.Errorf("error scanning mapping: %w", err)
		}

		mappings = append(mappings, *m)
	}

	return mappings, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id shortener.ID) (*shortener.Mapping, error) {
	return s.queryOne(ctx, `SELECT `+sqliteColumns+` FROM url_mappings WHERE id = ?`, int64(id))
}

func (s *SQLiteStore) Exists(ctx context.Context, id shortener.ID) (bool, error) {
	s.l.Lock()
	defer s.l.Unlock()

	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM url_mappings WHERE id = ?)`, int64(id),
	).Scan(&exists)
	if err != nil {
		return false, xerrors.Errorf("error checking mapping %d: %w", id, err)
	}

	return exists, nil
}

func (s *SQLiteStore) FindByFullURL(ctx context.Context, fullURL string) (*shortener.Mapping, error) {
	query := `SELECT ` + sqliteColumns + ` FROM url_mappings WHERE full_url = ? ORDER BY id LIMIT 1`

	return s.queryOne(ctx, query, fullURL)
}

func (s *SQLiteStore) FindByShortURL(ctx context.Context, shortURL string) (*shortener.Mapping, error) {
	return s.queryOne(ctx, `SELECT `+sqliteColumns+` FROM url_mappings WHERE short_url = ?`, shortURL)
}

func (s *SQLiteStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	s.l.Lock()
	defer s.l.Unlock()

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO url_mappings (full_url, short_url, shortened, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		m.FullURL, nullableString(m.ShortURL), m.Shortened, now, now,
	)
	if err != nil {
		return translateSQLiteError(err, "error adding mapping to database")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return xerrors.Errorf("error getting ID of added mapping: %w", err)
	}

	m.ID = shortener.ID(id)
	m.CreatedAt = now
	m.UpdatedAt = now

	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, m *shortener.Mapping) error {
	s.l.Lock()
	defer s.l.Unlock()

	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE url_mappings SET full_url = ?, short_url = ?, shortened = ?, updated_at = ? WHERE id = ?`,
		m.FullURL, nullableString(m.ShortURL), m.Shortened, now, int64(m.ID),
	)
	if err != nil {
		return translateSQLiteError(err, "error updating mapping")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return xerrors.Errorf("error reading affected rows: %w", err)
	}

	if n == 0 {
		return shortener.ErrStaleRecord
	}

	m.UpdatedAt = now

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id shortener.ID) error {
	s.l.Lock()
	defer s.l.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM url_mappings WHERE id = ?`, int64(id))
	if err != nil {
		return xerrors.Errorf("error deleting mapping %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return xerrors.Errorf("error reading affected rows: %w", err)
	}

	if n == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// DeleteAll removes every mapping and resets the id sequence in one transaction.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	s.l.Lock()
	defer s.l.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("error starting transaction: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM url_mappings`); err == nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'url_mappings'`)
	}

	if err != nil {
		_ = tx.Rollback()

		return xerrors.Errorf("error deleting all mappings: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, arg any) (*shortener.Mapping, error) {
	s.l.Lock()
	defer s.l.Unlock()

	m, err := scanSQLiteMapping(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, xerrors.Errorf("error resolving mapping in database: %w", err)
	}

	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMapping(row rowScanner) (*shortener.Mapping, error) {
	var (
		m        shortener.Mapping
		id       int64
		shortURL sql.NullString
	)

	if err := row.Scan(&id, &m.FullURL, &shortURL, &m.Shortened, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	m.ID = shortener.ID(id)
	m.ShortURL = shortURL.String

	return &m, nil
}

func translateSQLiteError(err error, msg string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return xerrors.Errorf("%s: %w", msg, shortener.ErrShortURLTaken)
	}

	return xerrors.Errorf("%s: %w", msg, err)
}

var _ shortener.Repository = (*SQLiteStore)(nil)
