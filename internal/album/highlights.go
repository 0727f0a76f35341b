package album

import (
	"sort"

	"github.com/google/uuid"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a
// photo to join an existing highlight group.
const DefaultSimilarityThreshold = 0.85

// HighlightClusterer groups the photos of one visit by embedding
// similarity. Groups of two or more become Highlights; singletons stay
// optional photos.
type HighlightClusterer struct {
	SimilarityThreshold float64
}

// NewHighlightClusterer creates a clusterer with the default threshold.
func NewHighlightClusterer() *HighlightClusterer {
	return &HighlightClusterer{SimilarityThreshold: DefaultSimilarityThreshold}
}

type highlightGroup struct {
	representative []float32
	members        []PhotoAsset
}

// Cluster partitions assets into highlight groups and optional photos.
// Only assets carrying an embedding participate; embedding-less assets
// are excluded from both outputs.
//
// Each asset is compared against the representative embedding (the
// first member) of every open group and joins the group with the
// highest similarity when that similarity exceeds the threshold,
// otherwise it opens a new singleton group. Optional photos come back
// sorted ascending by timestamp. O(n*k) for k open groups.
func (h *HighlightClusterer) Cluster(assets []PhotoAsset) ([]Highlight, []PhotoAsset) {
	var groups []*highlightGroup

	for _, asset := range assets {
		if len(asset.Embedding) == 0 {
			continue
		}

		bestIdx := -1
		bestSim := 0.0
		for i, group := range groups {
			if sim := CosineSimilarity(asset.Embedding, group.representative); sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestSim > h.SimilarityThreshold {
			groups[bestIdx].members = append(groups[bestIdx].members, asset)
			continue
		}
		groups = append(groups, &highlightGroup{
			representative: asset.Embedding,
			members:        []PhotoAsset{asset},
		})
	}

	var highlights []Highlight
	var optional []PhotoAsset
	for _, group := range groups {
		if len(group.members) < 2 {
			optional = append(optional, group.members[0])
			continue
		}
		ids := make([]string, len(group.members))
		for i, member := range group.members {
			ids[i] = member.ID
		}
		highlights = append(highlights, Highlight{
			ID:                    uuid.New().String(),
			RepresentativeAssetID: group.members[0].ID,
			AssetIDs:              ids,
		})
	}

	sort.Slice(optional, func(i, j int) bool {
		return optional[i].Timestamp.Before(optional[j].Timestamp)
	})

	return highlights, optional
}
