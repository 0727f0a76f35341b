// Package places looks up categorized place candidates near a
// coordinate. The lookup service decides search radius and filtering;
// callers only get back candidates it considered nearby.
package places

import (
	"context"

	"github.com/kozaktomas/trip-albums/internal/geo"
)

// Candidate is a named place near a queried coordinate.
type Candidate struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CategoryTags []string       `json:"category_tags"`
	Location     geo.Coordinate `json:"location"`
}

// Provider fetches place candidates near a coordinate.
type Provider interface {
	FetchCandidates(ctx context.Context, coord geo.Coordinate) ([]Candidate, error)
}
