package journey

import (
	"sort"
	"time"
)

// Bounds for the transition-sessions endpoint.
const (
	MinTransitionLimit = 1
	MaxTransitionLimit = 200
)

// TransitionMatch is one session that performed the transition, with
// the timestamp of the source step occurrence.
type TransitionMatch struct {
	SessionID string
	At        time.Time
}

// TransitionFinder retains sessions whose path reaches the source step
// strictly before the target step. Position constraints, when set,
// require the step's first occurrence at exactly that 0-based index.
//
// The total count and the page slice both derive from the single
// qualifying set accumulated here, so pagination metadata always
// agrees with the returned page for a given scan.
type TransitionFinder struct {
	source, target       string
	sourcePos, targetPos *int
	matches              []TransitionMatch
}

// NewTransitionFinder creates a finder for source -> target. sourcePos
// and targetPos are optional 0-based position constraints; nil means
// unconstrained.
func NewTransitionFinder(source, target string, sourcePos, targetPos *int) *TransitionFinder {
	return &TransitionFinder{
		source:    source,
		target:    target,
		sourcePos: sourcePos,
		targetPos: targetPos,
	}
}

// Observe tests one session path and records it when it qualifies.
func (f *TransitionFinder) Observe(p SessionPath) {
	srcIdx, tgtIdx := 0, 0 // 1-based, 0 = absent
	for i, step := range p.Steps {
		if srcIdx == 0 && step.Label == f.source {
			srcIdx = i + 1
		}
		if tgtIdx == 0 && step.Label == f.target {
			tgtIdx = i + 1
		}
		if srcIdx != 0 && tgtIdx != 0 {
			break
		}
	}
	if srcIdx == 0 || tgtIdx == 0 || srcIdx >= tgtIdx {
		return
	}
	if f.sourcePos != nil && srcIdx != *f.sourcePos+1 {
		return
	}
	if f.targetPos != nil && tgtIdx != *f.targetPos+1 {
		return
	}
	f.matches = append(f.matches, TransitionMatch{
		SessionID: p.SessionID,
		At:        p.Steps[srcIdx-1].Timestamp,
	})
}

// Total reports the full count of qualifying sessions, independent of
// any page window.
func (f *TransitionFinder) Total() uint64 {
	return uint64(len(f.matches))
}

// Page returns the qualifying sessions ranked by transition timestamp
// descending (ties broken by session id for a stable order), offset by
// (page-1)*limit. page is 1-based. An offset past the end returns an
// empty slice.
func (f *TransitionFinder) Page(limit, page int) []TransitionMatch {
	sort.Slice(f.matches, func(i, j int) bool {
		if !f.matches[i].At.Equal(f.matches[j].At) {
			return f.matches[i].At.After(f.matches[j].At)
		}
		return f.matches[i].SessionID < f.matches[j].SessionID
	})
	offset := (page - 1) * limit
	if offset >= len(f.matches) {
		return nil
	}
	end := offset + limit
	if end > len(f.matches) {
		end = len(f.matches)
	}
	return f.matches[offset:end]
}
