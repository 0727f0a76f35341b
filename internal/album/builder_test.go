package album

import (
	"testing"
	"time"

	"github.com/kozaktomas/trip-albums/internal/places"
)

func namedCluster(name string, start time.Time, highlights int, optional int) *VisitCluster {
	cluster := newVisitCluster(PhotoAsset{ID: "cover-" + name, Timestamp: start})
	cluster.IdentifiedName = name
	for i := 0; i < highlights; i++ {
		cluster.Highlights = append(cluster.Highlights, Highlight{
			ID:                    "h",
			RepresentativeAssetID: "cover-" + name,
			AssetIDs:              []string{"x", "y"},
		})
	}
	for i := 0; i < optional; i++ {
		cluster.OptionalAssets = append(cluster.OptionalAssets, PhotoAsset{ID: "opt", Timestamp: start})
	}
	return cluster
}

func poi(name string, score float64) RankedPlaceCandidate {
	return RankedPlaceCandidate{Place: places.Candidate{Name: name}, FinalScore: score}
}

var day1 = time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)
var day2 = time.Date(2024, 5, 15, 11, 0, 0, 0, time.UTC)

func TestStructureBuilder_GroupsByCalendarDate(t *testing.T) {
	builder := NewStructureBuilder()

	clusters := []*VisitCluster{
		namedCluster("Castle", day1, 1, 0),
		namedCluster("Bridge", day1.Add(3*time.Hour), 0, 2),
		namedCluster("Museum", day2, 1, 1),
	}

	alb, ok := builder.Build(clusters)
	if !ok {
		t.Fatal("expected an album")
	}

	if len(alb.Days) != 2 {
		t.Fatalf("got %d days; want 2", len(alb.Days))
	}
	if alb.Days[0].Date != "2024-05-14" || alb.Days[1].Date != "2024-05-15" {
		t.Errorf("days out of order: %s, %s", alb.Days[0].Date, alb.Days[1].Date)
	}
	if len(alb.Days[0].Moments) != 2 {
		t.Errorf("first day has %d moments; want 2", len(alb.Days[0].Moments))
	}
	if alb.Days[0].CoverAssetID != "cover-Castle" {
		t.Errorf("day cover = %s; want cover-Castle", alb.Days[0].CoverAssetID)
	}
}

func TestStructureBuilder_DropsInvalidClusters(t *testing.T) {
	builder := NewStructureBuilder()

	unnamed := namedCluster("", day1, 1, 0)
	empty := namedCluster("Nothing Inside", day1, 0, 0)
	valid := namedCluster("Castle", day1, 1, 0)

	alb, ok := builder.Build([]*VisitCluster{unnamed, empty, valid})
	if !ok {
		t.Fatal("expected an album")
	}
	if len(alb.Days) != 1 || len(alb.Days[0].Moments) != 1 {
		t.Fatalf("invalid clusters not dropped: %+v", alb.Days)
	}
	if alb.Days[0].Moments[0].Name != "Castle" {
		t.Errorf("surviving moment = %s; want Castle", alb.Days[0].Moments[0].Name)
	}
}

func TestStructureBuilder_DropsEmptyDays(t *testing.T) {
	builder := NewStructureBuilder()

	// Day 1 has only an invalid cluster; day 2 has a valid one.
	clusters := []*VisitCluster{
		namedCluster("", day1, 1, 0),
		namedCluster("Museum", day2, 1, 0),
	}

	alb, ok := builder.Build(clusters)
	if !ok {
		t.Fatal("expected an album")
	}
	if len(alb.Days) != 1 || alb.Days[0].Date != "2024-05-15" {
		t.Fatalf("empty day not dropped: %+v", alb.Days)
	}
}

func TestStructureBuilder_NoValidDays(t *testing.T) {
	builder := NewStructureBuilder()

	if _, ok := builder.Build([]*VisitCluster{namedCluster("", day1, 1, 0)}); ok {
		t.Error("expected no album when every cluster is invalid")
	}
	if _, ok := builder.Build(nil); ok {
		t.Error("expected no album for an empty trip")
	}
}

func TestDaySummary_LiteralMoreSuffix(t *testing.T) {
	tests := []struct {
		name     string
		moments  []Moment
		expected string
	}{
		{
			name:     "single moment keeps the suffix",
			moments:  []Moment{{Name: "Castle"}},
			expected: "Castle & more",
		},
		{
			name:     "three moments keep the suffix",
			moments:  []Moment{{Name: "A"}, {Name: "B"}, {Name: "C"}},
			expected: "A, B, C & more",
		},
		{
			name:     "only the first three names are used",
			moments:  []Moment{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}},
			expected: "A, B, C & more",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := daySummary(tc.moments); got != tc.expected {
				t.Errorf("daySummary() = %q; want %q", got, tc.expected)
			}
		})
	}
}

func TestStructureBuilder_TitleFromDistinctPOINames(t *testing.T) {
	builder := NewStructureBuilder()

	cluster := namedCluster("Castle", day1, 1, 0)
	cluster.RankedCandidates = []RankedPlaceCandidate{
		poi("A", 0.95),
		poi("A", 0.90), // duplicate collapses
		poi("B", 0.80),
	}

	alb, ok := builder.Build([]*VisitCluster{cluster})
	if !ok {
		t.Fatal("expected an album")
	}
	if alb.Title != "A & B" {
		t.Errorf("title = %q; want \"A & B\"", alb.Title)
	}
}

func TestStructureBuilder_TitleNamesDistinctByExactString(t *testing.T) {
	builder := NewStructureBuilder()

	// Variant spellings of one venue stay two distinct names; only
	// byte-identical strings collapse.
	cluster := namedCluster("Castle", day1, 1, 0)
	cluster.RankedCandidates = []RankedPlaceCandidate{
		poi("Café Louvre", 0.95),
		poi("cafe louvre", 0.90),
		poi("B", 0.80),
	}

	alb, ok := builder.Build([]*VisitCluster{cluster})
	if !ok {
		t.Fatal("expected an album")
	}
	if alb.Title != "Café Louvre & cafe louvre" {
		t.Errorf("title = %q; want \"Café Louvre & cafe louvre\"", alb.Title)
	}
}

func TestStructureBuilder_TitleSingleDistinctName(t *testing.T) {
	builder := NewStructureBuilder()

	cluster := namedCluster("Castle", day1, 1, 0)
	cluster.RankedCandidates = []RankedPlaceCandidate{
		poi("Prague Castle", 0.95),
		poi("Prague Castle", 0.60),
	}

	alb, _ := builder.Build([]*VisitCluster{cluster})
	if alb.Title != "Prague Castle" {
		t.Errorf("title = %q; want \"Prague Castle\"", alb.Title)
	}
}

func TestStructureBuilder_TitleDateFallbacks(t *testing.T) {
	builder := NewStructureBuilder()

	// Single day, no POI candidates at all.
	alb, ok := builder.Build([]*VisitCluster{namedCluster("Castle", day1, 1, 0)})
	if !ok {
		t.Fatal("expected an album")
	}
	if alb.Title != "Trip of 2024-05-14" {
		t.Errorf("single-day title = %q; want \"Trip of 2024-05-14\"", alb.Title)
	}

	// Multi-day fallback names only the first date.
	alb, ok = builder.Build([]*VisitCluster{
		namedCluster("Castle", day1, 1, 0),
		namedCluster("Museum", day2, 1, 0),
	})
	if !ok {
		t.Fatal("expected an album")
	}
	if alb.Title != "Trip from 2024-05-14" {
		t.Errorf("multi-day title = %q; want \"Trip from 2024-05-14\"", alb.Title)
	}
}

func TestStructureBuilder_TitleRanksAcrossMoments(t *testing.T) {
	builder := NewStructureBuilder()

	first := namedCluster("Castle", day1, 1, 0)
	first.RankedCandidates = []RankedPlaceCandidate{poi("Low", 0.2)}
	second := namedCluster("Museum", day2, 1, 0)
	second.RankedCandidates = []RankedPlaceCandidate{poi("High", 0.9)}

	alb, _ := builder.Build([]*VisitCluster{first, second})
	if alb.Title != "High & Low" {
		t.Errorf("title = %q; want \"High & Low\"", alb.Title)
	}
}

func TestTimeLabel(t *testing.T) {
	cluster := newVisitCluster(PhotoAsset{ID: "a", Timestamp: day1})
	if got := timeLabel(cluster); got != "09:00" {
		t.Errorf("single-minute label = %q; want \"09:00\"", got)
	}

	cluster.add(PhotoAsset{ID: "b", Timestamp: day1.Add(95 * time.Minute)})
	if got := timeLabel(cluster); got != "09:00 – 10:35" {
		t.Errorf("span label = %q; want \"09:00 – 10:35\"", got)
	}
}

func TestStructureBuilder_MomentCarriesClusterData(t *testing.T) {
	builder := NewStructureBuilder()

	cluster := namedCluster("Castle", day1, 1, 2)
	cluster.Caption = "Sunset over the castle"
	cluster.RankedCandidates = []RankedPlaceCandidate{poi("Prague Castle", 0.9)}

	alb, _ := builder.Build([]*VisitCluster{cluster})
	moment := alb.Days[0].Moments[0]

	if moment.Name != "Castle" {
		t.Errorf("name = %s", moment.Name)
	}
	if moment.RepresentativeAssetID != "cover-Castle" {
		t.Errorf("representative = %s", moment.RepresentativeAssetID)
	}
	if moment.Caption != "Sunset over the castle" {
		t.Errorf("caption = %s", moment.Caption)
	}
	if len(moment.POICandidates) != 1 {
		t.Errorf("poi candidates = %d; want 1", len(moment.POICandidates))
	}
	if len(moment.OptionalAssetIDs) != 2 {
		t.Errorf("optional ids = %d; want 2", len(moment.OptionalAssetIDs))
	}
	if moment.ID == "" || alb.Days[0].ID == "" || alb.ID == "" {
		t.Error("expected generated ids on album, day and moment")
	}
}
