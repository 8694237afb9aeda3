package journey

import (
	"sort"
	"strings"

	"pathlens/api/models"
)

// Bounds for the journeys endpoint; values outside these ranges are a
// client error.
const (
	MinJourneySteps = 2
	MaxJourneySteps = 10
	MinJourneyLimit = 1
	MaxJourneyLimit = 500
)

// groupKeySep joins truncated paths into map keys. Step labels are
// either pathnames or "event:..." strings, so a control byte can never
// collide with label content.
const groupKeySep = "\x1f"

type journeyGroup struct {
	path  []string
	count uint64
}

// Aggregator groups session paths by their truncated prefix and ranks
// the groups by support count. One Aggregator serves one request; it
// holds no state beyond that request's accumulation maps.
type Aggregator struct {
	steps  int
	groups map[string]*journeyGroup
}

// NewAggregator creates an Aggregator truncating every session path to
// its first steps entries.
func NewAggregator(steps int) *Aggregator {
	return &Aggregator{
		steps:  steps,
		groups: make(map[string]*journeyGroup),
	}
}

// Observe folds one session path into the aggregation.
func (a *Aggregator) Observe(p SessionPath) {
	n := len(p.Steps)
	if n > a.steps {
		n = a.steps
	}
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = p.Steps[i].Label
	}
	key := strings.Join(labels, groupKeySep)
	if g, ok := a.groups[key]; ok {
		g.count++
		return
	}
	a.groups[key] = &journeyGroup{path: labels, count: 1}
}

// Journeys ranks the accumulated groups by count descending (ties
// broken by path ordering so equal counts always come back in the same
// order), applies the per-position step filters post-grouping, and
// truncates to limit. Percentages are computed against totalSessions,
// the count of every distinct in-range session, which includes
// sessions that were too short to contribute a journey.
//
// stepFilters keys are 0-based positions; a journey shorter than a
// constrained position fails that filter.
func (a *Aggregator) Journeys(totalSessions uint64, limit int, stepFilters map[int]*Matcher) []models.Journey {
	groups := make([]*journeyGroup, 0, len(a.groups))
	for _, g := range a.groups {
		if !matchesStepFilters(g.path, stepFilters) {
			continue
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return lessPath(groups[i].path, groups[j].path)
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}

	journeys := make([]models.Journey, 0, len(groups))
	for _, g := range groups {
		var pct float64
		if totalSessions > 0 {
			pct = 100 * float64(g.count) / float64(totalSessions)
		}
		journeys = append(journeys, models.Journey{
			Path:       g.path,
			Count:      g.count,
			Percentage: pct,
		})
	}
	return journeys
}

func matchesStepFilters(path []string, filters map[int]*Matcher) bool {
	for pos, m := range filters {
		if pos < 0 || pos >= len(path) {
			return false
		}
		if !m.Match(path[pos]) {
			return false
		}
	}
	return true
}

func lessPath(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
