package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/trip-albums/internal/album"
)

const (
	// HNSWMaxNeighbors is the M parameter of the graph.
	HNSWMaxNeighbors = 16
)

// PhotoIndex wraps an HNSW graph over photo embeddings for fast
// similar-photo lookups across the whole library. Keys are asset IDs.
type PhotoIndex struct {
	graph      *hnsw.Graph[string]
	savedGraph *hnsw.SavedGraph[string] // For persistence
	idToVec    map[string][]float32
	mu         sync.RWMutex
	path       string
}

// NewPhotoIndex creates a new empty photo index.
func NewPhotoIndex() *PhotoIndex {
	return &PhotoIndex{
		idToVec: make(map[string][]float32),
	}
}

// SimilarPhoto is one similarity search hit.
type SimilarPhoto struct {
	AssetID    string
	Similarity float64
}

// Build populates the index from assets that carry embeddings. Assets
// without embeddings are skipped.
func (p *PhotoIndex) Build(assets []album.PhotoAsset) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance

	p.idToVec = make(map[string][]float32, len(assets))

	for _, asset := range assets {
		if len(asset.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(asset.ID, asset.Embedding))
		p.idToVec[asset.ID] = asset.Embedding
	}

	p.graph = g
	p.savedGraph = nil
	return nil
}

// Search finds the k most similar photos to the query embedding.
func (p *PhotoIndex) Search(query []float32, k int) ([]SimilarPhoto, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.graph == nil && p.savedGraph == nil {
		return nil, fmt.Errorf("index not initialized")
	}

	var neighbors []hnsw.Node[string]
	if p.savedGraph != nil {
		neighbors = p.savedGraph.Search(query, k)
	} else {
		neighbors = p.graph.Search(query, k)
	}

	results := make([]SimilarPhoto, 0, len(neighbors))
	for _, n := range neighbors {
		hit := SimilarPhoto{AssetID: n.Key}
		if vec, ok := p.idToVec[n.Key]; ok {
			hit.Similarity = album.CosineSimilarity(query, vec)
		}
		results = append(results, hit)
	}

	return results, nil
}

// Embedding returns the indexed embedding for an asset, or nil.
func (p *PhotoIndex) Embedding(assetID string) []float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.idToVec[assetID]
}

// Count returns the number of indexed photos.
func (p *PhotoIndex) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.idToVec)
}

// Save persists the graph to the configured path.
func (p *PhotoIndex) Save(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.path = path
	if path == "" {
		return nil
	}

	if p.graph == nil {
		// Remove existing file if index is empty
		os.Remove(path)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create photo index file: %w", err)
	}
	defer f.Close()

	return p.graph.Export(f)
}

// Load restores the graph from disk. The idToVec map stays empty;
// similarity values in search results are zero until Build is called.
func (p *PhotoIndex) Load(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("index file not found: %s", path)
	}

	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return fmt.Errorf("failed to load photo index: %w", err)
	}

	p.savedGraph = saved
	return nil
}
