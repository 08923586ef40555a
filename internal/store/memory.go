package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/serroba/url-mapper/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu      sync.RWMutex
	lastID  shortener.ID
	records map[shortener.ID]shortener.Mapping
	shorts  map[string]shortener.ID // shortURL -> id, the unique index
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[shortener.ID]shortener.Mapping),
		shorts:  make(map[string]shortener.ID),
	}
}

func (m *MemoryStore) List(_ context.Context) ([]shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(), nil
}

func (m *MemoryStore) Get(_ context.Context, id shortener.ID) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &record, nil
}

func (m *MemoryStore) Exists(_ context.Context, id shortener.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.records[id]

	return ok, nil
}

func (m *MemoryStore) FindByFullURL(_ context.Context, fullURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.sorted() {
		if record.FullURL == fullURL {
			return &record, nil
		}
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryStore) FindByShortURL(_ context.Context, shortURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.shorts[shortURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	record := m.records[id]

	return &record, nil
}

func (m *MemoryStore) Insert(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.shorts[mapping.ShortURL]; taken && mapping.ShortURL != "" {
		return shortener.ErrShortURLTaken
	}

	m.lastID++
	now := time.Now()
	mapping.ID = m.lastID
	mapping.CreatedAt = now
	mapping.UpdatedAt = now

	m.records[mapping.ID] = *mapping
	if mapping.ShortURL != "" {
		m.shorts[mapping.ShortURL] = mapping.ID
	}

	return nil
}

func (m *MemoryStore) Update(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[mapping.ID]
	if !ok {
		return shortener.ErrStaleRecord
	}

	if owner, taken := m.shorts[mapping.ShortURL]; taken && owner != mapping.ID {
		return shortener.ErrShortURLTaken
	}

	delete(m.shorts, current.ShortURL)

	mapping.CreatedAt = current.CreatedAt
	mapping.UpdatedAt = time.Now()

	m.records[mapping.ID] = *mapping
	if mapping.ShortURL != "" {
		m.shorts[mapping.ShortURL] = mapping.ID
	}

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id shortener.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return shortener.ErrNotFound
	}

	delete(m.shorts, record.ShortURL)
	delete(m.records, id)

	return nil
}

// DeleteAll drops every mapping and restarts id assignment.
func (m *MemoryStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[shortener.ID]shortener.Mapping)
	m.shorts = make(map[string]shortener.ID)
	m.lastID = 0

	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// sorted returns the records ordered by id. Callers must hold the lock.
func (m *MemoryStore) sorted() []shortener.Mapping {
	records := make([]shortener.Mapping, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}

	slices.SortFunc(records, func(a, b shortener.Mapping) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return records
}

var _ shortener.Repository = (*MemoryStore)(nil)
