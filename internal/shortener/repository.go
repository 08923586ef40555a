package shortener

import (
	"context"
	"errors"
)

var (
	ErrNotFound               = errors.New("url not found")
	ErrMalformedURL           = errors.New("url is in wrong format")
	ErrNoToken                = errors.New("no token could be generated")
	ErrIDMismatch             = errors.New("id does not match mapping")
	ErrShortURLTaken          = errors.New("short url already taken")
	ErrCollisionExhausted     = errors.New("no free short url within attempt budget")
	ErrStaleRecord            = errors.New("no record was modified")
	ErrConcurrentModification = errors.New("mapping was modified concurrently")
)

// Repository defines the interface for mapping storage operations.
//
// Stores must keep ShortURL unique and report a violation as ErrShortURLTaken.
type Repository interface {
	List(ctx context.Context) ([]Mapping, error)
	Get(ctx context.Context, id ID) (*Mapping, error)
	Exists(ctx context.Context, id ID) (bool, error)

	// FindByFullURL returns the lowest-id mapping for fullURL, or ErrNotFound.
	FindByFullURL(ctx context.Context, fullURL string) (*Mapping, error)
	// FindByShortURL returns the mapping owning shortURL, or ErrNotFound.
	FindByShortURL(ctx context.Context, shortURL string) (*Mapping, error)

	// Insert stores a new mapping and sets its ID and timestamps.
	Insert(ctx context.Context, m *Mapping) error
	// Update overwrites the mapping with m.ID. It returns ErrStaleRecord
	// when no row was modified.
	Update(ctx context.Context, m *Mapping) error

	Delete(ctx context.Context, id ID) error
	DeleteAll(ctx context.Context) error
}
