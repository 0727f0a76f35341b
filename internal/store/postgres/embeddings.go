package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/trip-albums/internal/album"
)

// EmbeddingRepository caches computed image embeddings in pgvector so
// repeated pipeline runs over the same library skip the embedding
// server entirely.
type EmbeddingRepository struct {
	pool *Pool
	dim  int
}

// NewEmbeddingRepository creates a new PostgreSQL embedding repository.
// dim is the expected vector width; Put rejects vectors of any other
// width before they reach the database. Zero disables the check.
func NewEmbeddingRepository(pool *Pool, dim int) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool, dim: dim}
}

// Get retrieves a cached embedding, returns nil if not found.
func (r *EmbeddingRepository) Get(ctx context.Context, assetID string) ([]float32, error) {
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx,
		"SELECT embedding FROM asset_embeddings WHERE asset_id = $1", assetID).Scan(&vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return vec.Slice(), nil
}

// Put stores an embedding (upsert).
func (r *EmbeddingRepository) Put(ctx context.Context, assetID string, embedding []float32) error {
	if r.dim > 0 && len(embedding) != r.dim {
		return fmt.Errorf("embedding for %s has %d dimensions, expected %d", assetID, len(embedding), r.dim)
	}

	query := `
		INSERT INTO asset_embeddings (asset_id, embedding, dim)
		VALUES ($1, $2::vector, $3)
		ON CONFLICT (asset_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim,
			created_at = NOW()
	`
	vec := pgvector.NewVector(embedding)
	if _, err := r.pool.Exec(ctx, query, assetID, vec, len(embedding)); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// GetAll returns every cached embedding as a photo asset carrying only
// ID and embedding. Used to build the in-memory photo index.
func (r *EmbeddingRepository) GetAll(ctx context.Context) ([]album.PhotoAsset, error) {
	rows, err := r.pool.Query(ctx, "SELECT asset_id, embedding FROM asset_embeddings ORDER BY asset_id")
	if err != nil {
		return nil, fmt.Errorf("query all embeddings: %w", err)
	}
	defer rows.Close()

	var assets []album.PhotoAsset
	for rows.Next() {
		var asset album.PhotoAsset
		var vec pgvector.Vector
		if err := rows.Scan(&asset.ID, &vec); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		asset.Embedding = vec.Slice()
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	return assets, nil
}

// Count returns the number of cached embeddings.
func (r *EmbeddingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM asset_embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// FindSimilar returns asset IDs ordered by cosine distance to the
// query embedding.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]string, []float64, error) {
	query := `
		SELECT asset_id, embedding <=> $1::vector AS distance
		FROM asset_embeddings
		ORDER BY distance
		LIMIT $2
	`

	vec := pgvector.NewVector(embedding)
	rows, err := r.pool.Query(ctx, query, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar embeddings: %w", err)
	}
	defer rows.Close()

	var ids []string
	var distances []float64
	for rows.Next() {
		var id string
		var dist float64
		if err := rows.Scan(&id, &dist); err != nil {
			return nil, nil, fmt.Errorf("scan similar embedding: %w", err)
		}
		ids = append(ids, id)
		distances = append(distances, dist)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate similar embeddings: %w", err)
	}

	return ids, distances, nil
}

// Verify interface compliance
var _ album.EmbeddingCache = (*EmbeddingRepository)(nil)
