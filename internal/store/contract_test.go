package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/serroba/url-mapper/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises the behavior every shortener.Repository must share.
// newStore must return an empty store.
func runRepositoryContract(t *testing.T, newStore func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("insert assigns increasing ids", func(t *testing.T) {
		s := newStore(t)

		first := &shortener.Mapping{FullURL: "http://example.com/a", ShortURL: "http://example.com/1", Shortened: true}
		second := &shortener.Mapping{FullURL: "http://example.com/b", ShortURL: "http://example.com/2", Shortened: true}

		require.NoError(t, s.Insert(ctx, first))
		require.NoError(t, s.Insert(ctx, second))

		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("insert rejects a taken short url", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Insert(ctx, &shortener.Mapping{FullURL: "http://a.com/x", ShortURL: "http://a.com/T"}))

		err := s.Insert(ctx, &shortener.Mapping{FullURL: "http://a.com/y", ShortURL: "http://a.com/T"})

		assert.ErrorIs(t, err, shortener.ErrShortURLTaken)
	})

	t.Run("get returns stored mapping", func(t *testing.T) {
		s := newStore(t)
		m := &shortener.Mapping{FullURL: "http://example.com/foo/bar", ShortURL: "http://example.com/abc", Shortened: true}
		require.NoError(t, s.Insert(ctx, m))

		got, err := s.Get(ctx, m.ID)

		require.NoError(t, err)
		assert.Equal(t, m.FullURL, got.FullURL)
		assert.Equal(t, m.ShortURL, got.ShortURL)
		assert.True(t, got.Shortened)
	})

	t.Run("get returns ErrNotFound for unknown id", func(t *testing.T) {
		s := newStore(t)

		got, err := s.Get(ctx, 4242)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("find by full url returns lowest id", func(t *testing.T) {
		s := newStore(t)
		first := &shortener.Mapping{FullURL: "http://dup.com/x", ShortURL: "http://dup.com/1"}
		second := &shortener.Mapping{FullURL: "http://dup.com/x", ShortURL: "http://dup.com/2"}
		require.NoError(t, s.Insert(ctx, first))
		require.NoError(t, s.Insert(ctx, second))

		got, err := s.FindByFullURL(ctx, "http://dup.com/x")

		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("find by short url", func(t *testing.T) {
		s := newStore(t)
		m := &shortener.Mapping{FullURL: "http://example.com/q", ShortURL: "http://example.com/Q1"}
		require.NoError(t, s.Insert(ctx, m))

		got, err := s.FindByShortURL(ctx, "http://example.com/Q1")
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)

		_, err = s.FindByShortURL(ctx, "http://example.com/none")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("update overwrites and keeps id", func(t *testing.T) {
		s := newStore(t)
		m := &shortener.Mapping{FullURL: "http://example.com/old", ShortURL: "http://example.com/O"}
		require.NoError(t, s.Insert(ctx, m))

		m.FullURL = "http://example.com/new"
		m.ShortURL = "http://example.com/N"
		require.NoError(t, s.Update(ctx, m))

		got, err := s.Get(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/new", got.FullURL)

		_, err = s.FindByShortURL(ctx, "http://example.com/O")
		assert.ErrorIs(t, err, shortener.ErrNotFound, "old short url must be released")
	})

	t.Run("update of missing record is stale", func(t *testing.T) {
		s := newStore(t)

		err := s.Update(ctx, &shortener.Mapping{ID: 99, FullURL: "http://example.com/x"})

		assert.ErrorIs(t, err, shortener.ErrStaleRecord)
	})

	t.Run("update rejects short url held by another record", func(t *testing.T) {
		s := newStore(t)
		a := &shortener.Mapping{FullURL: "http://example.com/a", ShortURL: "http://example.com/A"}
		b := &shortener.Mapping{FullURL: "http://example.com/b", ShortURL: "http://example.com/B"}
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, b))

		b.ShortURL = "http://example.com/A"

		assert.ErrorIs(t, s.Update(ctx, b), shortener.ErrShortURLTaken)
	})

	t.Run("exists", func(t *testing.T) {
		s := newStore(t)
		m := &shortener.Mapping{FullURL: "http://example.com/e", ShortURL: "http://example.com/E"}
		require.NoError(t, s.Insert(ctx, m))

		ok, err := s.Exists(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Exists(ctx, m.ID+100)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete removes record", func(t *testing.T) {
		s := newStore(t)
		m := &shortener.Mapping{FullURL: "http://example.com/d", ShortURL: "http://example.com/D"}
		require.NoError(t, s.Insert(ctx, m))

		require.NoError(t, s.Delete(ctx, m.ID))

		_, err := s.Get(ctx, m.ID)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, m.ID), shortener.ErrNotFound)
	})

	t.Run("delete all empties the store", func(t *testing.T) {
		s := newStore(t)
		for _, suffix := range []string{"1", "2", "3"} {
			require.NoError(t, s.Insert(ctx, &shortener.Mapping{
				FullURL:  "http://example.com/" + suffix,
				ShortURL: "http://example.com/S" + suffix,
			}))
		}

		require.NoError(t, s.DeleteAll(ctx))

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		s := newStore(t)
		for _, suffix := range []string{"c", "a", "b"} {
			require.NoError(t, s.Insert(ctx, &shortener.Mapping{
				FullURL:  "http://example.com/" + suffix,
				ShortURL: "http://example.com/L" + suffix,
			}))
		}

		all, err := s.List(ctx)

		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "http://example.com/c", all[0].FullURL)
		assert.Less(t, all[0].ID, all[1].ID)
		assert.Less(t, all[1].ID, all[2].ID)
	})

	t.Run("concurrent inserts of one short url admit a single winner", func(t *testing.T) {
		s := newStore(t)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)

		for range 8 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := s.Insert(ctx, &shortener.Mapping{FullURL: "http://race.com/x", ShortURL: "http://race.com/R"})
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}
