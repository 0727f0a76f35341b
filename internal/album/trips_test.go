package album

import (
	"testing"
	"time"

	"github.com/kozaktomas/trip-albums/internal/geo"
)

func TestTripDetector_Detect(t *testing.T) {
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	prague := geo.Coordinate{Lat: 50.0755, Lon: 14.4378}
	vienna := geo.Coordinate{Lat: 48.2082, Lon: 16.3738}

	tests := []struct {
		name     string
		assets   []PhotoAsset
		expected []int // trip sizes
	}{
		{
			name:     "empty",
			assets:   nil,
			expected: []int{},
		},
		{
			name: "one continuous trip",
			assets: []PhotoAsset{
				{ID: "a", Location: prague, Timestamp: base},
				{ID: "b", Location: prague, Timestamp: base.Add(2 * time.Hour)},
				{ID: "c", Location: prague, Timestamp: base.Add(26 * time.Hour)},
			},
			expected: []int{3},
		},
		{
			name: "time gap starts a new trip",
			assets: []PhotoAsset{
				{ID: "a", Location: prague, Timestamp: base},
				{ID: "b", Location: prague, Timestamp: base.Add(DefaultTripTemporalGap)},
			},
			expected: []int{1, 1},
		},
		{
			name: "location jump starts a new trip",
			assets: []PhotoAsset{
				{ID: "a", Location: prague, Timestamp: base},
				{ID: "b", Location: vienna, Timestamp: base.Add(3 * time.Hour)}, // ~250km
			},
			expected: []int{1, 1},
		},
		{
			name: "two trips with a quiet week between",
			assets: []PhotoAsset{
				{ID: "a", Location: prague, Timestamp: base},
				{ID: "b", Location: prague, Timestamp: base.Add(time.Hour)},
				{ID: "c", Location: vienna, Timestamp: base.Add(7 * 24 * time.Hour)},
				{ID: "d", Location: vienna, Timestamp: base.Add(7*24*time.Hour + time.Hour)},
			},
			expected: []int{2, 2},
		},
	}

	detector := NewTripDetector()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trips := detector.Detect(tc.assets)
			if len(trips) != len(tc.expected) {
				t.Fatalf("got %d trips; want %d", len(trips), len(tc.expected))
			}
			for i, trip := range trips {
				if len(trip) != tc.expected[i] {
					t.Errorf("trip %d has %d assets; want %d", i, len(trip), tc.expected[i])
				}
			}
		})
	}
}

func TestTripDetector_GapJustUnderThresholdJoins(t *testing.T) {
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	loc := geo.Coordinate{Lat: 50.0755, Lon: 14.4378}

	assets := []PhotoAsset{
		{ID: "a", Location: loc, Timestamp: base},
		{ID: "b", Location: loc, Timestamp: base.Add(DefaultTripTemporalGap - time.Minute)},
	}

	trips := NewTripDetector().Detect(assets)
	if len(trips) != 1 {
		t.Fatalf("got %d trips; want 1", len(trips))
	}
}

func TestTripDetector_ChainedDaysStayOneTrip(t *testing.T) {
	// Each day within the gap of the previous one keeps the trip open
	// even though the first and last photos are weeks apart.
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	loc := geo.Coordinate{Lat: 50.0755, Lon: 14.4378}

	var assets []PhotoAsset
	for day := 0; day < 14; day++ {
		assets = append(assets, PhotoAsset{
			ID:        string(rune('a' + day)),
			Location:  loc,
			Timestamp: base.Add(time.Duration(day) * 24 * time.Hour),
		})
	}

	trips := NewTripDetector().Detect(assets)
	if len(trips) != 1 {
		t.Fatalf("got %d trips; want 1", len(trips))
	}
	if len(trips[0]) != 14 {
		t.Errorf("trip has %d assets; want 14", len(trips[0]))
	}
}
