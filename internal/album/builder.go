package album

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	dateKeyFormat  = "2006-01-02"
	timeLabelForm  = "15:04"
	genericTitle   = "Trip Album"
	summaryMaxName = 3
)

// StructureBuilder assembles named, highlight-structured visit clusters
// into the final Day/TripAlbum hierarchy.
type StructureBuilder struct{}

// NewStructureBuilder creates a builder.
func NewStructureBuilder() *StructureBuilder {
	return &StructureBuilder{}
}

// Build assembles one trip's clusters into a TripAlbum. Returns false
// when no valid Day could be formed; an empty trip is not an error.
//
// Clusters are bucketed by the calendar date of their start time and
// dates are processed in ascending lexical (= chronological) order.
// A cluster only becomes a Moment when it has a name, a cover asset,
// and at least one highlight or optional photo; failing clusters are
// dropped silently, and a day left with zero moments is dropped whole.
func (b *StructureBuilder) Build(clusters []*VisitCluster) (TripAlbum, bool) {
	byDate := make(map[string][]*VisitCluster)
	for _, cluster := range clusters {
		key := cluster.StartTime.Format(dateKeyFormat)
		byDate[key] = append(byDate[key], cluster)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var days []Day
	for _, date := range dates {
		day := b.buildDay(date, byDate[date])
		if len(day.Moments) == 0 {
			continue
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return TripAlbum{}, false
	}

	return TripAlbum{
		ID:    uuid.New().String(),
		Title: b.buildTitle(days),
		Days:  days,
	}, true
}

func (b *StructureBuilder) buildDay(date string, clusters []*VisitCluster) Day {
	var moments []Moment
	for _, cluster := range clusters {
		if cluster.IdentifiedName == "" || cluster.CoverAsset.ID == "" {
			continue
		}
		if len(cluster.Highlights) == 0 && len(cluster.OptionalAssets) == 0 {
			continue
		}

		optionalIDs := make([]string, len(cluster.OptionalAssets))
		for i, asset := range cluster.OptionalAssets {
			optionalIDs[i] = asset.ID
		}

		moments = append(moments, Moment{
			ID:                    uuid.New().String(),
			Name:                  cluster.IdentifiedName,
			TimeLabel:             timeLabel(cluster),
			RepresentativeAssetID: cluster.CoverAsset.ID,
			Highlights:            cluster.Highlights,
			OptionalAssetIDs:      optionalIDs,
			POICandidates:         cluster.RankedCandidates,
			Caption:               cluster.Caption,
		})
	}

	day := Day{
		ID:      uuid.New().String(),
		Date:    date,
		Moments: moments,
		Summary: daySummary(moments),
	}
	if len(moments) > 0 {
		day.CoverAssetID = moments[0].RepresentativeAssetID
	}
	return day
}

// timeLabel renders the moment's time span; a visit that starts and
// ends within the same minute shows just the start.
func timeLabel(cluster *VisitCluster) string {
	start := cluster.StartTime.Format(timeLabelForm)
	end := cluster.EndTime.Format(timeLabelForm)
	if start == end {
		return start
	}
	return start + " – " + end
}

// daySummary joins the first three moment names and always appends
// " & more", even when the day has three or fewer moments. The literal
// suffix is long-standing display behavior.
func daySummary(moments []Moment) string {
	names := make([]string, 0, summaryMaxName)
	for _, moment := range moments {
		if len(names) == summaryMaxName {
			break
		}
		names = append(names, moment.Name)
	}
	return strings.Join(names, ", ") + " & more"
}

// buildTitle picks the two highest-scoring distinct POI names across
// the whole album. Names are distinct by exact string equality, so
// "Café Louvre" and "cafe louvre" are two names. With fewer than two
// distinct names it falls back to a date-derived title; the multi-day
// form names only the first date.
func (b *StructureBuilder) buildTitle(days []Day) string {
	var pois []RankedPlaceCandidate
	for _, day := range days {
		for _, moment := range day.Moments {
			pois = append(pois, moment.POICandidates...)
		}
	}

	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].FinalScore > pois[j].FinalScore
	})

	var names []string
	seen := make(map[string]bool)
	for _, poi := range pois {
		if seen[poi.Place.Name] {
			continue
		}
		seen[poi.Place.Name] = true
		names = append(names, poi.Place.Name)
		if len(names) == 2 {
			break
		}
	}

	switch len(names) {
	case 2:
		return names[0] + " & " + names[1]
	case 1:
		return names[0]
	}

	switch len(days) {
	case 0:
		return genericTitle
	case 1:
		return "Trip of " + days[0].Date
	default:
		return "Trip from " + days[0].Date
	}
}
