package album

import (
	"context"
	_ "embed"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/trip-albums/internal/geo"
	"github.com/kozaktomas/trip-albums/internal/places"
)

//go:embed ranking.yaml
var rankingYAML []byte

// Sentinel names assigned when place identification degrades.
const (
	NameNoCandidates = "no candidates nearby"
	NameSearchFailed = "search failed"
	NameUnknownPlace = "unknown place"
)

// MaxRankedCandidates is the number of ranked candidates persisted per
// moment.
const MaxRankedCandidates = 8

// Score weights. Embedding similarity is noisier than raw distance, so
// distance dominates the blend.
const (
	embeddingWeight = 0.3
	distanceWeight  = 0.7

	distanceDecayMeters = 100.0

	hotelProximityBonus  = 0.25
	hotelProximityMeters = 80.0
	closeProximityBonus  = 0.20
	closeProximityMeters = 40.0
)

// TextEmbedder converts a batch of text prompts into embedding vectors,
// one vector per prompt, order preserved.
type TextEmbedder interface {
	EncodeTextBatch(ctx context.Context, prompts []string) ([][]float32, error)
}

type rankingRules struct {
	GenericTags    []string `yaml:"generic_tags"`
	PromptTemplate string   `yaml:"prompt_template"`
	PriorityTiers  []struct {
		Bonus float64  `yaml:"bonus"`
		Tags  []string `yaml:"tags"`
	} `yaml:"priority_tiers"`
}

// PlaceRanker scores place candidates for a visit cluster by combining
// visual-semantic similarity, distance decay, and category heuristics.
type PlaceRanker struct {
	embedder TextEmbedder
	rules    rankingRules
	generic  map[string]bool
}

// NewPlaceRanker creates a ranker. The embedder may be nil; ranking
// then degrades to distance and category signals only.
func NewPlaceRanker(embedder TextEmbedder) *PlaceRanker {
	var rules rankingRules
	if err := yaml.Unmarshal(rankingYAML, &rules); err != nil {
		// Embedded file, parse failure is a build defect.
		panic("failed to unmarshal embedded ranking.yaml: " + err.Error())
	}

	generic := make(map[string]bool, len(rules.GenericTags))
	for _, tag := range rules.GenericTags {
		generic[tag] = true
	}

	return &PlaceRanker{embedder: embedder, rules: rules, generic: generic}
}

// Rank scores candidates against the cluster's cover photo and returns
// up to MaxRankedCandidates sorted descending by final score. When the
// top final score is exactly zero the embedding signal is absent and
// the order falls back to ascending raw distance instead of an
// arbitrary zero-score ordering. Pure and deterministic for equal
// inputs. Never returns an error; missing embedding signal degrades the
// score to distance and category terms.
func (r *PlaceRanker) Rank(ctx context.Context, coverEmbedding []float32, coverLocation geo.Coordinate, candidates []places.Candidate) []RankedPlaceCandidate {
	if len(candidates) == 0 {
		return nil
	}

	tagVectors := r.embedCategoryTags(ctx, coverEmbedding, candidates)

	ranked := make([]RankedPlaceCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		distance := geo.DistanceMeters(coverLocation, candidate.Location)
		embeddingScore := r.embeddingScore(coverEmbedding, candidate, tagVectors)

		distanceScore := math.Exp(-distance / distanceDecayMeters)
		finalScore := embeddingScore*embeddingWeight +
			distanceScore*distanceWeight +
			r.priorityBonus(candidate) +
			proximityBonus(candidate, distance)

		ranked = append(ranked, RankedPlaceCandidate{
			Place:          candidate,
			DistanceMeters: distance,
			EmbeddingScore: embeddingScore,
			FinalScore:     finalScore,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if ranked[0].FinalScore == 0.0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DistanceMeters < ranked[j].DistanceMeters
		})
	}

	if len(ranked) > MaxRankedCandidates {
		ranked = ranked[:MaxRankedCandidates]
	}
	return ranked
}

// embedCategoryTags computes text embeddings for every distinct
// non-generic tag across the candidate set in one batched call.
// Returns nil when the embedding signal is unavailable.
func (r *PlaceRanker) embedCategoryTags(ctx context.Context, coverEmbedding []float32, candidates []places.Candidate) map[string][]float32 {
	if r.embedder == nil || len(coverEmbedding) == 0 {
		return nil
	}

	var tags []string
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		for _, tag := range candidate.CategoryTags {
			if r.generic[tag] || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}

	prompts := make([]string, len(tags))
	for i, tag := range tags {
		prompts[i] = strings.Replace(r.rules.PromptTemplate, "%s", strings.ReplaceAll(tag, "_", " "), 1)
	}

	vectors, err := r.embedder.EncodeTextBatch(ctx, prompts)
	if err != nil || len(vectors) != len(tags) {
		return nil
	}

	tagVectors := make(map[string][]float32, len(tags))
	for i, tag := range tags {
		tagVectors[tag] = vectors[i]
	}
	return tagVectors
}

// embeddingScore is the max cosine similarity between the cover image
// embedding and the candidate's category tag embeddings. The max may
// be negative; 0 only means no tag of the candidate was embedded.
func (r *PlaceRanker) embeddingScore(coverEmbedding []float32, candidate places.Candidate, tagVectors map[string][]float32) float64 {
	if len(tagVectors) == 0 {
		return 0
	}

	best := 0.0
	matched := false
	for _, tag := range candidate.CategoryTags {
		vec, ok := tagVectors[tag]
		if !ok {
			continue
		}
		sim := CosineSimilarity(coverEmbedding, vec)
		if !matched || sim > best {
			best = sim
			matched = true
		}
	}
	return best
}

// priorityBonus returns the bonus of the first (highest) tier matching
// any of the candidate's tags.
func (r *PlaceRanker) priorityBonus(candidate places.Candidate) float64 {
	for _, tier := range r.rules.PriorityTiers {
		for _, tierTag := range tier.Tags {
			for _, tag := range candidate.CategoryTags {
				if tag == tierTag {
					return tier.Bonus
				}
			}
		}
	}
	return 0
}

// proximityBonus rewards candidates right next to the cover photo.
// Lodging gets the wider radius since hotel visits spread out over the
// whole property.
func proximityBonus(candidate places.Candidate, distance float64) float64 {
	for _, tag := range candidate.CategoryTags {
		if (tag == "hotel" || tag == "resort") && distance < hotelProximityMeters {
			return hotelProximityBonus
		}
	}
	if distance < closeProximityMeters {
		return closeProximityBonus
	}
	return 0
}

// NearestCandidate returns the candidate with the smallest raw distance
// to the coordinate, used as a fallback when ranking had no usable
// signal.
func NearestCandidate(coord geo.Coordinate, candidates []places.Candidate) (places.Candidate, bool) {
	if len(candidates) == 0 {
		return places.Candidate{}, false
	}
	best := candidates[0]
	bestDist := geo.DistanceMeters(coord, best.Location)
	for _, candidate := range candidates[1:] {
		if d := geo.DistanceMeters(coord, candidate.Location); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best, true
}
