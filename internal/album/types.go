package album

import (
	"time"

	"github.com/kozaktomas/trip-albums/internal/geo"
	"github.com/kozaktomas/trip-albums/internal/places"
)

// PhotoAsset is a single geotagged photo in the input sequence.
// Sequences fed to TripDetector and MomentClusterer must be sorted
// ascending by Timestamp. The embedding is attached by the pipeline's
// enrichment step and is nil when the embedding provider failed for
// this asset.
type PhotoAsset struct {
	ID        string
	Location  geo.Coordinate
	Timestamp time.Time
	Embedding []float32
}

// VisitCluster is the transient builder for a Moment: a run of
// consecutive assets that share one place/event visit. It is created
// during moment clustering, mutated during place ranking, and consumed
// when converted into a Moment.
type VisitCluster struct {
	Assets []PhotoAsset

	// AnchorLocation is the location of the first asset, fixed at
	// cluster creation. Spatial threshold tests always compare against
	// the anchor, never a running centroid.
	AnchorLocation geo.Coordinate

	StartTime time.Time
	EndTime   time.Time

	// CoverAsset is the representative asset used for place
	// identification.
	CoverAsset PhotoAsset

	IdentifiedName   string
	RankedCandidates []RankedPlaceCandidate

	Highlights     []Highlight
	OptionalAssets []PhotoAsset
	Caption        string
}

func newVisitCluster(first PhotoAsset) *VisitCluster {
	return &VisitCluster{
		Assets:         []PhotoAsset{first},
		AnchorLocation: first.Location,
		StartTime:      first.Timestamp,
		EndTime:        first.Timestamp,
		CoverAsset:     first,
	}
}

func (c *VisitCluster) add(asset PhotoAsset) {
	c.Assets = append(c.Assets, asset)
	c.EndTime = asset.Timestamp
}

// RankedPlaceCandidate is a scored place candidate, produced fresh per
// ranking call.
type RankedPlaceCandidate struct {
	Place          places.Candidate `json:"place"`
	DistanceMeters float64          `json:"distance_meters"`
	EmbeddingScore float64          `json:"embedding_score"`
	FinalScore     float64          `json:"final_score"`
}

// Highlight is a group of at least two visually similar photos within
// a Moment.
type Highlight struct {
	ID                    string   `json:"id"`
	RepresentativeAssetID string   `json:"representative_asset_id"`
	AssetIDs              []string `json:"asset_ids"`
}

// Moment is a clustered visit to one place/event within a day.
type Moment struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	TimeLabel             string                 `json:"time_label"`
	RepresentativeAssetID string                 `json:"representative_asset_id"`
	Highlights            []Highlight            `json:"highlights"`
	OptionalAssetIDs      []string               `json:"optional_asset_ids"`
	POICandidates         []RankedPlaceCandidate `json:"poi_candidates"`
	Caption               string                 `json:"caption,omitempty"`
	VoiceNoteRef          string                 `json:"voice_note_ref,omitempty"`
}

// Day groups the Moments of one calendar date.
type Day struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"` // YYYY-MM-DD
	CoverAssetID string   `json:"cover_asset_id"`
	Summary      string   `json:"summary"`
	Moments      []Moment `json:"moments"`
}

// TripAlbum is the top-level persisted artifact. It exclusively owns
// its Days, which own their Moments, which own their Highlights.
type TripAlbum struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Days  []Day  `json:"days"`
}
