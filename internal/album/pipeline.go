package album

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kozaktomas/trip-albums/internal/places"
)

// ErrNoAssets is returned when the asset source has nothing geotagged
// to process. It terminates the run with a descriptive status, not a
// fault.
var ErrNoAssets = errors.New("no geotagged assets to process")

// AssetSource supplies the photo library. ListAssets returns geotagged
// assets; FetchImage may fail for remote-only assets, which degrades
// the affected asset rather than the run.
type AssetSource interface {
	ListAssets(ctx context.Context) ([]PhotoAsset, error)
	FetchImage(ctx context.Context, assetID string) ([]byte, error)
}

// Embedder converts images and text prompts into vectors in a shared
// similarity space.
type Embedder interface {
	EncodeImage(ctx context.Context, imageData []byte) ([]float32, error)
	EncodeTextBatch(ctx context.Context, prompts []string) ([][]float32, error)
}

// EmbeddingCache persists computed image embeddings across runs.
// Get returns nil without error on a miss.
type EmbeddingCache interface {
	Get(ctx context.Context, assetID string) ([]float32, error)
	Put(ctx context.Context, assetID string, embedding []float32) error
}

// CaptionProvider generates a short caption for a moment's cover photo.
type CaptionProvider interface {
	MomentCaption(ctx context.Context, imageData []byte, placeName string) (string, error)
}

// ProgressInfo describes one progress callback.
type ProgressInfo struct {
	Phase    string // "detecting", "clustering", "ranking", "assembling"
	Current  int
	Total    int
	Progress float64 // 0..1
	Message  string
}

// RunOptions tunes one pipeline run.
type RunOptions struct {
	SpatialThresholdMeters float64
	TemporalThresholdSecs  int
	SimilarityThreshold    float64
	OnProgress             func(ProgressInfo) // fire-and-forget, never drives control flow
}

// RunResult accumulates albums and the degraded-path errors of a run.
type RunResult struct {
	Albums          []TripAlbum
	ProcessedAssets int
	ProcessedTrips  int
	Errors          []error
}

// Pipeline turns a geotagged photo library into trip albums. Clusters
// within a trip are processed sequentially; each cluster's place
// identification completes before the next cluster begins, which keeps
// progress reporting ordered and cluster state single-writer.
type Pipeline struct {
	source   AssetSource
	embedder Embedder
	lookup   places.Provider
	captions CaptionProvider
	cache    EmbeddingCache
	logger   *zap.Logger

	trips      *TripDetector
	moments    *MomentClusterer
	ranker     *PlaceRanker
	highlights *HighlightClusterer
	builder    *StructureBuilder
}

// NewPipeline creates a pipeline. The embedder and lookup may be nil;
// the pipeline then degrades per the failure taxonomy instead of
// crashing.
func NewPipeline(source AssetSource, embedder Embedder, lookup places.Provider, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source:     source,
		embedder:   embedder,
		lookup:     lookup,
		logger:     logger,
		trips:      NewTripDetector(),
		moments:    NewMomentClusterer(),
		ranker:     NewPlaceRanker(embedder),
		highlights: NewHighlightClusterer(),
		builder:    NewStructureBuilder(),
	}
}

// SetCaptionProvider enables optional moment caption generation.
func (p *Pipeline) SetCaptionProvider(captions CaptionProvider) {
	p.captions = captions
}

// SetEmbeddingCache enables persistent embedding reuse across runs.
func (p *Pipeline) SetEmbeddingCache(cache EmbeddingCache) {
	p.cache = cache
}

// Run executes the full pipeline. Per-asset and per-cluster failures
// degrade into sentinel names or excluded assets and accumulate in
// RunResult.Errors; only pipeline-level failures (no input, cancelled
// context) terminate the run. A cancelled run returns the albums of
// trips already completed; a partially processed trip is never
// published.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	p.applyOptions(opts)
	result := &RunResult{}

	assets, err := p.source.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	// Drop assets without a usable location and enforce the timestamp
	// ordering invariant the clusterers depend on.
	geotagged := assets[:0:0]
	for _, asset := range assets {
		if asset.Location.IsZero() || asset.Timestamp.IsZero() {
			continue
		}
		geotagged = append(geotagged, asset)
	}
	if len(geotagged) == 0 {
		return nil, ErrNoAssets
	}
	sort.SliceStable(geotagged, func(i, j int) bool {
		return geotagged[i].Timestamp.Before(geotagged[j].Timestamp)
	})
	result.ProcessedAssets = len(geotagged)

	trips := p.trips.Detect(geotagged)
	p.report(opts, ProgressInfo{
		Phase: "detecting", Total: len(trips), Progress: 0,
		Message: fmt.Sprintf("detected %d trips in %d assets", len(trips), len(geotagged)),
	})

	totalClusters := 0
	tripClusters := make([][]*VisitCluster, len(trips))
	for i, trip := range trips {
		tripClusters[i] = p.moments.Cluster(trip)
		totalClusters += len(tripClusters[i])
	}

	done := 0
	runEmbeddings := make(map[string][]float32)
	for i, clusters := range tripClusters {
		p.logger.Info("processing trip",
			zap.Int("trip", i+1),
			zap.Int("clusters", len(clusters)),
			zap.Int("assets", len(trips[i])))

		for _, cluster := range clusters {
			if ctx.Err() != nil {
				// The in-flight cluster is never finalized and the
				// partial trip never published.
				return result, ctx.Err()
			}

			p.processCluster(ctx, cluster, runEmbeddings, result)

			done++
			p.report(opts, ProgressInfo{
				Phase:    "ranking",
				Current:  done,
				Total:    totalClusters,
				Progress: float64(done) / float64(totalClusters),
				Message:  fmt.Sprintf("identified %q", cluster.IdentifiedName),
			})
		}

		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		alb, ok := p.builder.Build(clusters)
		if !ok {
			p.logger.Info("trip produced no valid days, skipping", zap.Int("trip", i+1))
			continue
		}
		result.Albums = append(result.Albums, alb)
		result.ProcessedTrips++
	}

	p.report(opts, ProgressInfo{
		Phase: "assembling", Current: len(result.Albums), Total: len(trips), Progress: 1,
		Message: fmt.Sprintf("built %d albums", len(result.Albums)),
	})
	return result, nil
}

func (p *Pipeline) applyOptions(opts RunOptions) {
	if opts.SpatialThresholdMeters > 0 {
		p.moments.SpatialThresholdMeters = opts.SpatialThresholdMeters
	}
	if opts.TemporalThresholdSecs > 0 {
		p.moments.TemporalThreshold = time.Duration(opts.TemporalThresholdSecs) * time.Second
	}
	if opts.SimilarityThreshold > 0 {
		p.highlights.SimilarityThreshold = opts.SimilarityThreshold
	}
}

// processCluster runs place identification, highlight clustering and
// caption generation for one cluster. One cluster is the unit of
// atomicity: every failure inside degrades this cluster's data and
// never touches its siblings.
func (p *Pipeline) processCluster(ctx context.Context, cluster *VisitCluster, runEmbeddings map[string][]float32, result *RunResult) {
	coverImage := p.fetchImage(ctx, cluster.CoverAsset.ID, result)
	coverEmbedding := p.assetEmbedding(ctx, cluster.CoverAsset, coverImage, runEmbeddings, result)

	p.identifyPlace(ctx, cluster, coverEmbedding)

	// Attach embeddings to every asset; assets whose image or embedding
	// is unavailable stay embedding-less and drop out of highlight
	// clustering.
	for i := range cluster.Assets {
		asset := &cluster.Assets[i]
		var image []byte
		if asset.ID == cluster.CoverAsset.ID {
			image = coverImage
		} else {
			image = p.fetchImage(ctx, asset.ID, result)
		}
		asset.Embedding = p.assetEmbedding(ctx, *asset, image, runEmbeddings, result)
	}

	cluster.Highlights, cluster.OptionalAssets = p.highlights.Cluster(cluster.Assets)

	if p.captions != nil && len(coverImage) > 0 {
		caption, err := p.captions.MomentCaption(ctx, coverImage, cluster.IdentifiedName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("caption for cluster at %s: %w", cluster.StartTime, err))
		} else {
			cluster.Caption = caption
		}
	}
}

// identifyPlace assigns the cluster's name and ranked candidates,
// degrading to sentinels per the failure taxonomy.
func (p *Pipeline) identifyPlace(ctx context.Context, cluster *VisitCluster, coverEmbedding []float32) {
	if p.lookup == nil {
		cluster.IdentifiedName = NameUnknownPlace
		return
	}

	candidates, err := p.lookup.FetchCandidates(ctx, cluster.CoverAsset.Location)
	if err != nil {
		p.logger.Warn("place lookup failed",
			zap.Time("cluster_start", cluster.StartTime),
			zap.Error(err))
		cluster.IdentifiedName = NameSearchFailed
		return
	}
	if len(candidates) == 0 {
		cluster.IdentifiedName = NameNoCandidates
		return
	}

	ranked := p.ranker.Rank(ctx, coverEmbedding, cluster.CoverAsset.Location, candidates)
	if len(ranked) == 0 {
		// Ranking yielded nothing usable; fall back to the raw nearest
		// candidate.
		if nearest, ok := NearestCandidate(cluster.CoverAsset.Location, candidates); ok {
			cluster.IdentifiedName = nearest.Name
		} else {
			cluster.IdentifiedName = NameNoCandidates
		}
		return
	}

	cluster.IdentifiedName = ranked[0].Place.Name
	cluster.RankedCandidates = ranked
}

// fetchImage returns nil on failure after recording the degraded path.
func (p *Pipeline) fetchImage(ctx context.Context, assetID string, result *RunResult) []byte {
	image, err := p.source.FetchImage(ctx, assetID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to fetch image %s: %w", assetID, err))
		return nil
	}
	return image
}

// assetEmbedding returns the asset's image embedding, consulting the
// run-local map, then the persistent cache, then the embedder. Returns
// nil when no embedding can be obtained.
func (p *Pipeline) assetEmbedding(ctx context.Context, asset PhotoAsset, image []byte, runEmbeddings map[string][]float32, result *RunResult) []float32 {
	if vec, ok := runEmbeddings[asset.ID]; ok {
		return vec
	}

	if p.cache != nil {
		vec, err := p.cache.Get(ctx, asset.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("embedding cache get %s: %w", asset.ID, err))
		} else if len(vec) > 0 {
			runEmbeddings[asset.ID] = vec
			return vec
		}
	}

	if p.embedder == nil || len(image) == 0 {
		runEmbeddings[asset.ID] = nil
		return nil
	}

	vec, err := p.embedder.EncodeImage(ctx, image)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to embed image %s: %w", asset.ID, err))
		runEmbeddings[asset.ID] = nil
		return nil
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, asset.ID, vec); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("embedding cache put %s: %w", asset.ID, err))
		}
	}
	runEmbeddings[asset.ID] = vec
	return vec
}

func (p *Pipeline) report(opts RunOptions, info ProgressInfo) {
	if opts.OnProgress != nil {
		opts.OnProgress(info)
	}
}
