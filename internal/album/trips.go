package album

import (
	"time"

	"github.com/kozaktomas/trip-albums/internal/geo"
)

// Trip-level gap defaults. Consecutive assets further apart than either
// gap start a new trip.
const (
	DefaultTripTemporalGap    = 48 * time.Hour
	DefaultTripSpatialGapKm   = 150.0
	defaultTripSpatialGapMtrs = DefaultTripSpatialGapKm * 1000
)

// TripDetector splits a time-ordered asset sequence into independent
// trip-level groups by coarse time and location gaps.
type TripDetector struct {
	TemporalGap      time.Duration
	SpatialGapMeters float64
}

// NewTripDetector creates a detector with the default gaps.
func NewTripDetector() *TripDetector {
	return &TripDetector{
		TemporalGap:      DefaultTripTemporalGap,
		SpatialGapMeters: defaultTripSpatialGapMtrs,
	}
}

// Detect partitions assets into trips. Input must be sorted ascending
// by timestamp. A new trip opens when an asset is at least the temporal
// gap after, or at least the spatial gap away from, the previous asset.
// Single forward pass; assets never move between trips.
func (d *TripDetector) Detect(assets []PhotoAsset) [][]PhotoAsset {
	if len(assets) == 0 {
		return nil
	}

	var trips [][]PhotoAsset
	current := []PhotoAsset{assets[0]}

	for _, asset := range assets[1:] {
		prev := current[len(current)-1]
		timeGap := asset.Timestamp.Sub(prev.Timestamp)
		distance := geo.DistanceMeters(prev.Location, asset.Location)

		if timeGap >= d.TemporalGap || distance >= d.SpatialGapMeters {
			trips = append(trips, current)
			current = []PhotoAsset{asset}
			continue
		}
		current = append(current, asset)
	}

	return append(trips, current)
}
