package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kozaktomas/trip-albums/internal/album"
	"github.com/kozaktomas/trip-albums/internal/store"
)

// AlbumRepository provides PostgreSQL-backed album storage.
type AlbumRepository struct {
	pool *Pool
}

// NewAlbumRepository creates a new PostgreSQL album repository.
func NewAlbumRepository(pool *Pool) *AlbumRepository {
	return &AlbumRepository{pool: pool}
}

// SaveAlbum stores an album (upsert). The full structure goes into the
// payload column; list columns are denormalized for cheap listing.
func (r *AlbumRepository) SaveAlbum(ctx context.Context, alb album.TripAlbum) error {
	payload, err := json.Marshal(alb)
	if err != nil {
		return fmt.Errorf("marshal album: %w", err)
	}

	summary := store.Summarize(alb)

	query := `
		INSERT INTO albums (id, title, start_date, end_date, day_count, moment_count, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			day_count = EXCLUDED.day_count,
			moment_count = EXCLUDED.moment_count,
			payload = EXCLUDED.payload,
			created_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query,
		alb.ID, alb.Title, summary.StartDate, summary.EndDate, summary.Days, summary.Moments, payload)
	if err != nil {
		return fmt.Errorf("save album: %w", err)
	}
	return nil
}

// GetAlbum retrieves the full album structure by ID.
func (r *AlbumRepository) GetAlbum(ctx context.Context, id string) (*album.TripAlbum, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, "SELECT payload FROM albums WHERE id = $1", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query album: %w", err)
	}

	var alb album.TripAlbum
	if err := json.Unmarshal(payload, &alb); err != nil {
		return nil, fmt.Errorf("unmarshal album: %w", err)
	}
	return &alb, nil
}

// ListAlbums returns summaries of all stored albums, newest trips first.
func (r *AlbumRepository) ListAlbums(ctx context.Context) ([]store.AlbumSummary, error) {
	query := `
		SELECT id, title, start_date, end_date, day_count, moment_count
		FROM albums
		ORDER BY start_date DESC, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var summaries []store.AlbumSummary
	for rows.Next() {
		var s store.AlbumSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.StartDate, &s.EndDate, &s.Days, &s.Moments); err != nil {
			return nil, fmt.Errorf("scan album summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return summaries, nil
}

// DeleteAlbum removes an album by ID.
func (r *AlbumRepository) DeleteAlbum(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM albums WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return store.ErrAlbumNotFound
	}
	return nil
}

// DeleteAlbums removes multiple albums in a single statement.
func (r *AlbumRepository) DeleteAlbums(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.pool.Exec(ctx, "DELETE FROM albums WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete albums: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Verify interface compliance
var _ store.AlbumStore = (*AlbumRepository)(nil)
