package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-mapper/internal/shortener"
)

const pgErrCodeUniqueViolation = "23505"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS url_mappings (
		id         BIGSERIAL PRIMARY KEY,
		full_url   TEXT        NOT NULL,
		short_url  TEXT        UNIQUE,
		shortened  BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS url_mappings_full_url_idx ON url_mappings (full_url)`,
}

const postgresColumns = `id, full_url, short_url, shortened, created_at, updated_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed mapping store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the mapping table and its indexes if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}

	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) List(ctx context.Context) ([]shortener.Mapping, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+postgresColumns+` FROM url_mappings ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortener.Mapping, error) {
		m, err := scanMapping(row)
		if err != nil {
			return shortener.Mapping{}, err
		}

		return *m, nil
	})
}

func (p *PostgresStore) Get(ctx context.Context, id shortener.ID) (*shortener.Mapping, error) {
	query := `SELECT ` + postgresColumns + ` FROM url_mappings WHERE id = $1`

	return p.queryOne(ctx, query, int64(id))
}

func (p *PostgresStore) Exists(ctx context.Context, id shortener.ID) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM url_mappings WHERE id = $1)`, int64(id),
	).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) FindByFullURL(ctx context.Context, fullURL string) (*shortener.Mapping, error) {
	query := `
		SELECT ` + postgresColumns + `
		FROM url_mappings
		WHERE full_url = $1
		ORDER BY id
		LIMIT 1
	`

	return p.queryOne(ctx, query, fullURL)
}

func (p *PostgresStore) FindByShortURL(ctx context.Context, shortURL string) (*shortener.Mapping, error) {
	query := `SELECT ` + postgresColumns + ` FROM url_mappings WHERE short_url = $1`

	return p.queryOne(ctx, query, shortURL)
}

func (p *PostgresStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	query := `
		INSERT INTO url_mappings (full_url, short_url, shortened)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	var id int64

	err := p.pool.QueryRow(ctx, query,
		m.FullURL,
		nullableString(m.ShortURL),
		m.Shortened,
	).Scan(&id, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translatePostgresError(err)
	}

	m.ID = shortener.ID(id)

	return nil
}

func (p *PostgresStore) Update(ctx context.Context, m *shortener.Mapping) error {
	query := `
		UPDATE url_mappings
		SET full_url = $2, short_url = $3, shortened = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := p.pool.QueryRow(ctx, query,
		int64(m.ID),
		m.FullURL,
		nullableString(m.ShortURL),
		m.Shortened,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shortener.ErrStaleRecord
	}

	if err != nil {
		return translatePostgresError(err)
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id shortener.ID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM url_mappings WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// DeleteAll truncates the table in one statement and restarts id assignment.
func (p *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE url_mappings RESTART IDENTITY`)

	return err
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, arg any) (*shortener.Mapping, error) {
	m, err := scanMapping(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return m, nil
}

func scanMapping(row pgx.Row) (*shortener.Mapping, error) {
	var (
		m        shortener.Mapping
		id       int64
		shortURL *string
	)

	err := row.Scan(&id, &m.FullURL, &shortURL, &m.Shortened, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	m.ID = shortener.ID(id)

	if shortURL != nil {
		m.ShortURL = *shortURL
	}

	return &m, nil
}

func translatePostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
		return fmt.Errorf("%w: %s", shortener.ErrShortURLTaken, pgErr.ConstraintName)
	}

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

var _ shortener.Repository = (*PostgresStore)(nil)
