// Package journey reconstructs per-session step sequences from ordered
// event scans and aggregates them into ranked journeys, step-to-step
// transitions and step-level drill-downs. Everything in this package is
// pure: the store feeds it rows, it never touches a database.
package journey

import (
	"strings"

	"pathlens/api/models"
)

// DefaultDraftAssetPrefix is the path prefix collapsed to a single
// step label regardless of how deep the path nests.
const DefaultDraftAssetPrefix = "/asset/draft"

// Labeler derives the canonical step label for an event. The same
// Labeler instance must be used by every query path (journeys,
// transitions, step details) so labels never drift between features.
type Labeler struct {
	DraftAssetPrefix string
}

// NewLabeler returns a Labeler with the given draft-asset prefix,
// falling back to DefaultDraftAssetPrefix when empty.
func NewLabeler(draftPrefix string) Labeler {
	if draftPrefix == "" {
		draftPrefix = DefaultDraftAssetPrefix
	}
	return Labeler{DraftAssetPrefix: draftPrefix}
}

// Label maps one event to its step label:
//
//   - interaction types label as "event:<type>" plus ":<name>" when the
//     event carries a non-empty name;
//   - paths under the draft-asset prefix collapse to the prefix itself;
//   - paths with a nested segment reduce to "/" plus their first
//     segment ("/blog/post-1" -> "/blog");
//   - anything else, including unknown event types, labels as the raw
//     pathname.
//
// Label is total: it never fails, whatever the input.
func (l Labeler) Label(eventType, pathname, eventName string) string {
	if models.IsInteractionType(eventType) {
		label := "event:" + eventType
		if eventName != "" {
			label += ":" + eventName
		}
		return label
	}
	if strings.HasPrefix(pathname, l.DraftAssetPrefix) {
		return l.DraftAssetPrefix
	}
	parts := strings.Split(pathname, "/")
	if len(parts) >= 3 {
		return "/" + parts[1]
	}
	return pathname
}

// LabelEvent is Label applied to a full event record.
func (l Labeler) LabelEvent(ev models.AnalyticsEvent) string {
	return l.Label(ev.EventType, ev.Pathname, ev.EventName)
}
