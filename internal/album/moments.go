package album

import (
	"time"

	"github.com/kozaktomas/trip-albums/internal/geo"
)

// Visit-level clustering defaults.
const (
	DefaultSpatialThresholdMeters = 175.0
	DefaultTemporalThreshold      = 10800 * time.Second
)

// MomentClusterer groups consecutive assets of one trip into visit
// clusters by spatial and temporal proximity.
type MomentClusterer struct {
	SpatialThresholdMeters float64
	TemporalThreshold      time.Duration
}

// NewMomentClusterer creates a clusterer with the default thresholds.
func NewMomentClusterer() *MomentClusterer {
	return &MomentClusterer{
		SpatialThresholdMeters: DefaultSpatialThresholdMeters,
		TemporalThreshold:      DefaultTemporalThreshold,
	}
}

// Cluster partitions assets into visit clusters in original order.
// Input must be sorted ascending by timestamp and every asset must
// carry a location.
//
// Streaming greedy: each asset is compared only against the currently
// open cluster — against its fixed anchor location and its current end
// time. An asset joins when distance < spatial threshold AND time gap
// < temporal threshold, both strict; otherwise it closes the cluster
// and anchors a new one. A later asset can never rejoin an earlier,
// already-closed cluster. O(n).
func (m *MomentClusterer) Cluster(assets []PhotoAsset) []*VisitCluster {
	if len(assets) == 0 {
		return nil
	}

	var clusters []*VisitCluster
	current := newVisitCluster(assets[0])

	for _, asset := range assets[1:] {
		distance := geo.DistanceMeters(current.AnchorLocation, asset.Location)
		timeGap := asset.Timestamp.Sub(current.EndTime)

		if distance < m.SpatialThresholdMeters && timeGap < m.TemporalThreshold {
			current.add(asset)
			continue
		}
		clusters = append(clusters, current)
		current = newVisitCluster(asset)
	}

	return append(clusters, current)
}
