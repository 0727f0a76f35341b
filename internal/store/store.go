// Package store persists generated trip albums and cached photo
// embeddings. The memory store backs tests and single-shot CLI runs;
// the postgres subpackage holds the durable implementation.
package store

import (
	"context"
	"errors"

	"github.com/kozaktomas/trip-albums/internal/album"
)

// ErrAlbumNotFound is returned when an album ID does not exist.
var ErrAlbumNotFound = errors.New("album not found")

// AlbumSummary is the list view of a stored album.
type AlbumSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Moments   int    `json:"moments"`
}

// AlbumStore persists generated albums.
type AlbumStore interface {
	SaveAlbum(ctx context.Context, alb album.TripAlbum) error
	GetAlbum(ctx context.Context, id string) (*album.TripAlbum, error)
	ListAlbums(ctx context.Context) ([]AlbumSummary, error)
	DeleteAlbum(ctx context.Context, id string) error
}

// Summarize builds the list view for an album.
func Summarize(alb album.TripAlbum) AlbumSummary {
	summary := AlbumSummary{
		ID:    alb.ID,
		Title: alb.Title,
		Days:  len(alb.Days),
	}
	if len(alb.Days) > 0 {
		summary.StartDate = alb.Days[0].Date
		summary.EndDate = alb.Days[len(alb.Days)-1].Date
	}
	for _, day := range alb.Days {
		summary.Moments += len(day.Moments)
	}
	return summary
}
