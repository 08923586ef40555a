package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 8

	saltLength = 12
)

// persistFunc writes a mapping once its short URL has been assigned.
type persistFunc func(ctx context.Context, m *Mapping) error

// Resolver assigns collision-free short URLs and resolves mappings in both directions.
type Resolver struct {
	store       Repository
	generator   TokenGenerator
	maxAttempts int
	salt        func() string
	logger      *zap.Logger
}

// NewResolver creates a resolver over store. A non-positive maxAttempts
// falls back to DefaultMaxAttempts.
func NewResolver(store Repository, generator TokenGenerator, maxAttempts int, logger *zap.Logger) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	salt, err := nanoid.Standard(saltLength)
	if err != nil {
		panic(err)
	}

	return &Resolver{
		store:       store,
		generator:   generator,
		maxAttempts: maxAttempts,
		salt:        salt,
		logger:      logger,
	}
}

// Shorten returns m with a short URL that no other stored mapping holds.
// Nothing is persisted.
func (r *Resolver) Shorten(ctx context.Context, m Mapping) (*Mapping, error) {
	return r.assign(ctx, m, nil)
}

// Create shortens m and stores it as a new mapping.
func (r *Resolver) Create(ctx context.Context, m Mapping) (*Mapping, error) {
	m.ID = 0

	return r.assign(ctx, m, r.store.Insert)
}

// Update shortens m unless it already is, and overwrites the mapping with id.
func (r *Resolver) Update(ctx context.Context, id ID, m Mapping) (*Mapping, error) {
	if id != m.ID {
		return nil, ErrIDMismatch
	}

	updated, err := r.assign(ctx, m, r.store.Update)
	if !errors.Is(err, ErrStaleRecord) {
		return updated, err
	}

	exists, err := r.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, ErrNotFound
	}

	return nil, fmt.Errorf("%w: id %d", ErrConcurrentModification, id)
}

func (r *Resolver) Get(ctx context.Context, id ID) (*Mapping, error) {
	return r.store.Get(ctx, id)
}

func (r *Resolver) List(ctx context.Context) ([]Mapping, error) {
	return r.store.List(ctx)
}

func (r *Resolver) Delete(ctx context.Context, id ID) error {
	return r.store.Delete(ctx, id)
}

func (r *Resolver) DeleteAll(ctx context.Context) error {
	return r.store.DeleteAll(ctx)
}

// ResolveForward returns the short URL of the first mapping whose full URL
// equals fullURL. The input is taken as already decoded.
func (r *Resolver) ResolveForward(ctx context.Context, fullURL string) (string, error) {
	m, err := r.store.FindByFullURL(ctx, fullURL)
	if err != nil {
		return "", err
	}

	return m.ShortURL, nil
}

// ResolveReverse returns the full URL of the mapping owning shortURL.
func (r *Resolver) ResolveReverse(ctx context.Context, shortURL string) (string, error) {
	m, err := r.store.FindByShortURL(ctx, shortURL)
	if err != nil {
		return "", err
	}

	return m.FullURL, nil
}

// assign derives a free short URL for m and hands it to persist. A candidate
// held by another mapping, or rejected by the store's unique index, costs one
// attempt. Retries hash the full URL plus a per-call random salt, so mappings
// sharing a last segment do not walk the same candidate chain.
func (r *Resolver) assign(ctx context.Context, m Mapping, persist persistFunc) (*Mapping, error) {
	prefix, segment, err := SplitURL(m.FullURL)
	if err != nil {
		return nil, err
	}

	if m.Shortened {
		if persist != nil {
			if err := persist(ctx, &m); err != nil {
				return nil, err
			}
		}

		return &m, nil
	}

	input := segment

	for attempt := range r.maxAttempts {
		if attempt == 1 {
			input = m.FullURL + "#" + r.salt()
		}

		token := r.generator.Generate(input, attempt)
		if token == "" {
			return nil, fmt.Errorf("%w: %w", ErrMalformedURL, ErrNoToken)
		}

		candidate := prefix + token

		taken, err := r.taken(ctx, candidate, m.ID)
		if err != nil {
			return nil, err
		}

		if taken {
			r.logger.Debug("short url collision",
				zap.String("shortUrl", candidate),
				zap.Int("attempt", attempt),
			)

			continue
		}

		m.ShortURL = candidate
		m.Shortened = true

		if persist == nil {
			return &m, nil
		}

		err = persist(ctx, &m)
		if errors.Is(err, ErrShortURLTaken) {
			r.logger.Debug("short url taken concurrently",
				zap.String("shortUrl", candidate),
				zap.Int("attempt", attempt),
			)

			continue
		}

		if err != nil {
			return nil, err
		}

		return &m, nil
	}

	r.logger.Warn("short url attempts exhausted",
		zap.String("fullUrl", m.FullURL),
		zap.Int("maxAttempts", r.maxAttempts),
	)

	return nil, ErrCollisionExhausted
}

func (r *Resolver) taken(ctx context.Context, shortURL string, self ID) (bool, error) {
	existing, err := r.store.FindByShortURL(ctx, shortURL)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return existing.ID != self, nil
}
