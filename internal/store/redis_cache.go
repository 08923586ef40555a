package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-mapper/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
//
// Entries are populated only from store reads, so the cached full URL index
// always points at the lowest id. Writes evict the keys they touch.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "mapping:",
		ttl:    ttl,
	}
}

func (r *RedisCacheRepository) List(ctx context.Context) ([]shortener.Mapping, error) {
	return r.store.List(ctx)
}

func (r *RedisCacheRepository) Exists(ctx context.Context, id shortener.ID) (bool, error) {
	return r.store.Exists(ctx, id)
}

// Get retrieves a mapping by id, checking cache first.
func (r *RedisCacheRepository) Get(ctx context.Context, id shortener.ID) (*shortener.Mapping, error) {
	if m, err := r.getFromCache(ctx, id); err == nil {
		return m, nil
	}

	m, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m, false)

	return m, nil
}

// FindByFullURL resolves through the cached full URL index first.
func (r *RedisCacheRepository) FindByFullURL(ctx context.Context, fullURL string) (*shortener.Mapping, error) {
	if m, err := r.getByIndex(ctx, r.fullKey(fullURL)); err == nil && m.FullURL == fullURL {
		return m, nil
	}

	m, err := r.store.FindByFullURL(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m, true)

	return m, nil
}

// FindByShortURL resolves through the cached short URL index first.
func (r *RedisCacheRepository) FindByShortURL(ctx context.Context, shortURL string) (*shortener.Mapping, error) {
	if m, err := r.getByIndex(ctx, r.shortKey(shortURL)); err == nil && m.ShortURL == shortURL {
		return m, nil
	}

	m, err := r.store.FindByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m, false)

	return m, nil
}

func (r *RedisCacheRepository) Insert(ctx context.Context, m *shortener.Mapping) error {
	return r.store.Insert(ctx, m)
}

// Update writes to the store and evicts both the old and the new index keys.
func (r *RedisCacheRepository) Update(ctx context.Context, m *shortener.Mapping) error {
	r.evict(ctx, m.ID)

	if err := r.store.Update(ctx, m); err != nil {
		return err
	}

	_ = r.client.Del(ctx, r.fullKey(m.FullURL), r.shortKey(m.ShortURL)).Err()

	return nil
}

func (r *RedisCacheRepository) Delete(ctx context.Context, id shortener.ID) error {
	r.evict(ctx, id)

	return r.store.Delete(ctx, id)
}

// DeleteAll clears the store, then sweeps every cache key under the prefix.
func (r *RedisCacheRepository) DeleteAll(ctx context.Context) error {
	if err := r.store.DeleteAll(ctx); err != nil {
		return err
	}

	var keys []string

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCacheRepository) idKey(id shortener.ID) string {
	return r.prefix + "id:" + strconv.FormatInt(int64(id), 10)
}

func (r *RedisCacheRepository) fullKey(fullURL string) string {
	return r.prefix + "full:" + fullURL
}

func (r *RedisCacheRepository) shortKey(shortURL string) string {
	return r.prefix + "short:" + shortURL
}

func (r *RedisCacheRepository) getByIndex(ctx context.Context, key string) (*shortener.Mapping, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}

	return r.getFromCache(ctx, shortener.ID(id))
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, id shortener.ID) (*shortener.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.idKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	m := &shortener.Mapping{
		ID:        id,
		FullURL:   result["full_url"],
		ShortURL:  result["short_url"],
		Shortened: result["shortened"] == "1",
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		m.CreatedAt = time.Unix(0, nanos)
	}

	if nanos, err := strconv.ParseInt(result["updated_at"], 10, 64); err == nil {
		m.UpdatedAt = time.Unix(0, nanos)
	}

	return m, nil
}

// cacheMapping stores m and its short URL index. The full URL index is only
// written for answers of FindByFullURL, which are the lowest id by contract.
func (r *RedisCacheRepository) cacheMapping(ctx context.Context, m *shortener.Mapping, indexFullURL bool) {
	pipe := r.client.Pipeline()
	key := r.idKey(m.ID)

	shortened := "0"
	if m.Shortened {
		shortened = "1"
	}

	pipe.HSet(ctx, key, map[string]interface{}{
		"full_url":   m.FullURL,
		"short_url":  m.ShortURL,
		"shortened":  shortened,
		"created_at": m.CreatedAt.UnixNano(),
		"updated_at": m.UpdatedAt.UnixNano(),
	})
	if indexFullURL {
		pipe.Set(ctx, r.fullKey(m.FullURL), int64(m.ID), r.ttl)
	}

	if m.ShortURL != "" {
		pipe.Set(ctx, r.shortKey(m.ShortURL), int64(m.ID), r.ttl)
	}

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// evict drops the cached record for id and the index keys it was reachable through.
func (r *RedisCacheRepository) evict(ctx context.Context, id shortener.ID) {
	keys := []string{r.idKey(id)}

	if cached, err := r.getFromCache(ctx, id); err == nil {
		keys = append(keys, r.fullKey(cached.FullURL), r.shortKey(cached.ShortURL))
	}

	_ = r.client.Del(ctx, keys...).Err()
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
