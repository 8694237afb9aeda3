package journey

import (
	"sort"

	"pathlens/api/models"
)

// Caps for the step-detail endpoint.
const (
	MaxPropertyRows = 500
	MaxDetailEvents = 100
)

// DetailAggregator drills into one step label: it histograms the
// property bags of matching events and keeps the raw events behind the
// step. Step numbers use the same collapsed positions the path builder
// produces, so a stepIndex taken from a journey row addresses the step
// the journey displayed.
type DetailAggregator struct {
	labeler   Labeler
	label     string
	stepIndex *int // 0-based, nil = any position

	curSession string
	started    bool
	lastLabel  string
	stepNum    int // 1-based collapsed position within curSession

	counts map[string]map[string]uint64
	events []models.StepEvent
}

// NewDetailAggregator creates an aggregator for one step label and an
// optional 0-based position constraint.
func NewDetailAggregator(labeler Labeler, label string, stepIndex *int) *DetailAggregator {
	return &DetailAggregator{
		labeler:   labeler,
		label:     label,
		stepIndex: stepIndex,
		counts:    make(map[string]map[string]uint64),
	}
}

// Observe consumes the next event of a scan ordered by (session_id,
// timestamp, ingestion order).
func (a *DetailAggregator) Observe(ev models.AnalyticsEvent) {
	if !a.started || ev.SessionID != a.curSession {
		a.started = true
		a.curSession = ev.SessionID
		a.lastLabel = ""
		a.stepNum = 0
	}
	label := a.labeler.LabelEvent(ev)
	if label != a.lastLabel || a.stepNum == 0 {
		a.stepNum++
		a.lastLabel = label
	}
	if label != a.label {
		return
	}
	if a.stepIndex != nil && a.stepNum != *a.stepIndex+1 {
		return
	}

	for key, val := range ev.Properties {
		byValue, ok := a.counts[key]
		if !ok {
			byValue = make(map[string]uint64)
			a.counts[key] = byValue
		}
		byValue[val.String()]++
	}
	a.events = append(a.events, models.StepEvent{
		Timestamp:        ev.Timestamp,
		UserID:           ev.UserID,
		IdentifiedUserID: ev.IdentifiedUserID,
		SessionID:        ev.SessionID,
	})
}

// Properties returns the histogram: key -> (value, count) rows with
// counts descending per key (ties by value for stability), keys in
// ascending order, capped at MaxPropertyRows rows overall.
func (a *DetailAggregator) Properties() map[string][]models.PropertyCount {
	keys := make([]string, 0, len(a.counts))
	for key := range a.counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(map[string][]models.PropertyCount, len(keys))
	rows := 0
	for _, key := range keys {
		if rows >= MaxPropertyRows {
			break
		}
		byValue := a.counts[key]
		entries := make([]models.PropertyCount, 0, len(byValue))
		for value, count := range byValue {
			entries = append(entries, models.PropertyCount{Value: value, Count: count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Value < entries[j].Value
		})
		if remaining := MaxPropertyRows - rows; len(entries) > remaining {
			entries = entries[:remaining]
		}
		result[key] = entries
		rows += len(entries)
	}
	return result
}

// Events returns up to MaxDetailEvents matching events, most recent
// first. Events without properties are included; only the histogram
// requires a non-empty bag.
func (a *DetailAggregator) Events() []models.StepEvent {
	sort.Slice(a.events, func(i, j int) bool {
		if !a.events[i].Timestamp.Equal(a.events[j].Timestamp) {
			return a.events[i].Timestamp.After(a.events[j].Timestamp)
		}
		return a.events[i].SessionID < a.events[j].SessionID
	})
	if len(a.events) > MaxDetailEvents {
		return a.events[:MaxDetailEvents]
	}
	return a.events
}
