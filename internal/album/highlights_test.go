package album

import (
	"testing"
	"time"
)

func embeddedAsset(id string, minutes int, embedding []float32) PhotoAsset {
	return PhotoAsset{
		ID:        id,
		Timestamp: clusterBase.Add(time.Duration(minutes) * time.Minute),
		Embedding: embedding,
	}
}

func TestHighlightClusterer_SimilarPhotosGroup(t *testing.T) {
	// Cosine similarity between these two is ~0.90, above the 0.85
	// threshold.
	clusterer := NewHighlightClusterer()
	assets := []PhotoAsset{
		embeddedAsset("a", 0, []float32{1, 0, 0}),
		embeddedAsset("b", 1, []float32{0.9, 0.436, 0}),
	}

	highlights, optional := clusterer.Cluster(assets)

	if len(highlights) != 1 {
		t.Fatalf("got %d highlights; want 1", len(highlights))
	}
	if len(optional) != 0 {
		t.Errorf("got %d optional assets; want 0", len(optional))
	}
	h := highlights[0]
	if h.RepresentativeAssetID != "a" {
		t.Errorf("representative = %s; want a (first member)", h.RepresentativeAssetID)
	}
	if len(h.AssetIDs) != 2 || h.AssetIDs[0] != "a" || h.AssetIDs[1] != "b" {
		t.Errorf("asset ids = %v; want [a b] in insertion order", h.AssetIDs)
	}
}

func TestHighlightClusterer_DissimilarPhotosStayOptional(t *testing.T) {
	clusterer := NewHighlightClusterer()
	assets := []PhotoAsset{
		embeddedAsset("a", 0, []float32{1, 0, 0}),
		embeddedAsset("b", 1, []float32{0, 1, 0}),
		embeddedAsset("c", 2, []float32{0, 0, 1}),
	}

	highlights, optional := clusterer.Cluster(assets)

	if len(highlights) != 0 {
		t.Fatalf("got %d highlights; want 0", len(highlights))
	}
	if len(optional) != 3 {
		t.Fatalf("got %d optional assets; want 3", len(optional))
	}
}

func TestHighlightClusterer_JoinsBestMatchingGroup(t *testing.T) {
	clusterer := NewHighlightClusterer()
	// Two open groups; the third asset is similar to both but closer
	// to the second, so it must join that one.
	assets := []PhotoAsset{
		embeddedAsset("a", 0, []float32{1, 0.30, 0}),
		embeddedAsset("b", 1, []float32{1, -0.30, 0}),
		embeddedAsset("c", 2, []float32{1, -0.25, 0}),
	}

	highlights, optional := clusterer.Cluster(assets)

	if len(highlights) != 1 {
		t.Fatalf("got %d highlights; want 1", len(highlights))
	}
	if highlights[0].RepresentativeAssetID != "b" {
		t.Errorf("representative = %s; want b", highlights[0].RepresentativeAssetID)
	}
	if len(optional) != 1 || optional[0].ID != "a" {
		t.Errorf("optional = %v; want just a", optional)
	}
}

func TestHighlightClusterer_PartitionProperty(t *testing.T) {
	clusterer := NewHighlightClusterer()
	assets := []PhotoAsset{
		embeddedAsset("a", 0, []float32{1, 0, 0}),
		embeddedAsset("b", 1, []float32{0.99, 0.1, 0}),
		embeddedAsset("c", 2, []float32{0, 1, 0}),
		embeddedAsset("d", 3, []float32{0.1, 0.99, 0}),
		embeddedAsset("e", 4, []float32{0, 0, 1}),
		{ID: "no-embedding", Timestamp: clusterBase},
	}

	highlights, optional := clusterer.Cluster(assets)

	seen := make(map[string]int)
	for _, h := range highlights {
		if len(h.AssetIDs) < 2 {
			t.Errorf("highlight %s has %d members; want >= 2", h.ID, len(h.AssetIDs))
		}
		for _, id := range h.AssetIDs {
			seen[id]++
		}
	}
	for _, a := range optional {
		seen[a.ID]++
	}

	// The union over highlights and optional assets, restricted to
	// assets with embeddings, is exactly the input set.
	for _, a := range assets {
		if len(a.Embedding) == 0 {
			if seen[a.ID] != 0 {
				t.Errorf("embedding-less asset %s leaked into output", a.ID)
			}
			continue
		}
		if seen[a.ID] != 1 {
			t.Errorf("asset %s appears %d times; want exactly once", a.ID, seen[a.ID])
		}
	}
}

func TestHighlightClusterer_OptionalSortedByTimestamp(t *testing.T) {
	clusterer := NewHighlightClusterer()
	// All dissimilar, deliberately out of timestamp order relative to
	// their insertion.
	assets := []PhotoAsset{
		embeddedAsset("late", 30, []float32{1, 0, 0, 0}),
		embeddedAsset("early", 5, []float32{0, 1, 0, 0}),
		embeddedAsset("middle", 15, []float32{0, 0, 1, 0}),
	}

	_, optional := clusterer.Cluster(assets)

	expected := []string{"early", "middle", "late"}
	if len(optional) != len(expected) {
		t.Fatalf("got %d optional assets; want %d", len(optional), len(expected))
	}
	for i, id := range expected {
		if optional[i].ID != id {
			t.Errorf("position %d: got %s; want %s", i, optional[i].ID, id)
		}
	}
}

func TestHighlightClusterer_ThresholdIsStrict(t *testing.T) {
	clusterer := &HighlightClusterer{SimilarityThreshold: 1.0}
	// Identical embeddings give similarity exactly 1.0, which does not
	// exceed a threshold of 1.0.
	assets := []PhotoAsset{
		embeddedAsset("a", 0, []float32{1, 0}),
		embeddedAsset("b", 1, []float32{1, 0}),
	}

	highlights, optional := clusterer.Cluster(assets)
	if len(highlights) != 0 || len(optional) != 2 {
		t.Errorf("similarity equal to threshold must not join: highlights=%d optional=%d", len(highlights), len(optional))
	}
}

func TestHighlightClusterer_EmptyInput(t *testing.T) {
	highlights, optional := NewHighlightClusterer().Cluster(nil)
	if len(highlights) != 0 || len(optional) != 0 {
		t.Errorf("expected empty outputs, got %d highlights, %d optional", len(highlights), len(optional))
	}
}
