package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kozaktomas/trip-albums/internal/album"
)

// MemoryStore is an in-memory album store and embedding cache. Used by
// tests and by CLI runs without a configured database.
type MemoryStore struct {
	mu         sync.RWMutex
	albums     map[string]album.TripAlbum
	embeddings map[string][]float32
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		albums:     make(map[string]album.TripAlbum),
		embeddings: make(map[string][]float32),
	}
}

func (m *MemoryStore) SaveAlbum(ctx context.Context, alb album.TripAlbum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.albums[alb.ID] = alb
	return nil
}

func (m *MemoryStore) GetAlbum(ctx context.Context, id string) (*album.TripAlbum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	alb, ok := m.albums[id]
	if !ok {
		return nil, ErrAlbumNotFound
	}
	return &alb, nil
}

func (m *MemoryStore) ListAlbums(ctx context.Context) ([]AlbumSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]AlbumSummary, 0, len(m.albums))
	for _, alb := range m.albums {
		summaries = append(summaries, Summarize(alb))
	}

	// Newest trips first, ties broken by ID for stable output.
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].StartDate != summaries[j].StartDate {
			return summaries[i].StartDate > summaries[j].StartDate
		}
		return summaries[i].ID < summaries[j].ID
	})

	return summaries, nil
}

func (m *MemoryStore) DeleteAlbum(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.albums[id]; !ok {
		return ErrAlbumNotFound
	}
	delete(m.albums, id)
	return nil
}

// Get returns the cached embedding for an asset, or nil when absent.
func (m *MemoryStore) Get(ctx context.Context, assetID string) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.embeddings[assetID], nil
}

// Put stores an embedding for an asset.
func (m *MemoryStore) Put(ctx context.Context, assetID string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.embeddings[assetID] = vec
	return nil
}

// Verify interface compliance
var _ AlbumStore = (*MemoryStore)(nil)
var _ album.EmbeddingCache = (*MemoryStore)(nil)
