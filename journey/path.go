package journey

import (
	"time"

	"pathlens/api/models"
)

// Step is one entry of a session path.
type Step struct {
	Label     string
	Timestamp time.Time
}

// SessionPath is the duplicate-collapsed step sequence of one session.
// Consecutive equal labels collapse to one step (keeping the first
// timestamp); non-consecutive repeats stay distinct.
type SessionPath struct {
	SessionID string
	Steps     []Step
}

// PathBuilder turns an event scan ordered by (session_id, timestamp,
// ingestion order) into SessionPaths, streaming one completed session
// at a time so no consumer ever holds the full scan in memory.
//
// Sessions whose collapsed path has fewer than 2 steps are dropped
// from emission but still counted by TotalSessions, which is the
// denominator for journey percentages: every distinct session the scan
// touched, however short.
type PathBuilder struct {
	labeler       Labeler
	includeEvents bool
	exclude       map[string]struct{}
	emit          func(SessionPath)

	started       bool
	current       SessionPath
	totalSessions uint64
}

// NewPathBuilder builds a PathBuilder. When includeEvents is false,
// interaction events are skipped and only pageview-like events shape
// the path. Events whose name is in excludeEventNames are skipped
// regardless of includeEvents. emit is called once per completed
// session with at least 2 collapsed steps.
func NewPathBuilder(labeler Labeler, includeEvents bool, excludeEventNames []string, emit func(SessionPath)) *PathBuilder {
	var exclude map[string]struct{}
	if len(excludeEventNames) > 0 {
		exclude = make(map[string]struct{}, len(excludeEventNames))
		for _, name := range excludeEventNames {
			exclude[name] = struct{}{}
		}
	}
	return &PathBuilder{
		labeler:       labeler,
		includeEvents: includeEvents,
		exclude:       exclude,
		emit:          emit,
	}
}

// Add consumes the next event of the scan. Events must arrive grouped
// by session and time-ordered within each session.
func (b *PathBuilder) Add(ev models.AnalyticsEvent) {
	if !b.started || ev.SessionID != b.current.SessionID {
		b.finish()
		b.started = true
		b.current = SessionPath{SessionID: ev.SessionID}
		b.totalSessions++
	}
	if b.exclude != nil {
		// Excluded names drop the event whatever its type, independent
		// of the includeEvents flag.
		if _, skip := b.exclude[ev.EventName]; skip {
			return
		}
	}
	if models.IsInteractionType(ev.EventType) && !b.includeEvents {
		return
	}
	label := b.labeler.LabelEvent(ev)
	steps := b.current.Steps
	if n := len(steps); n > 0 && steps[n-1].Label == label {
		return
	}
	b.current.Steps = append(b.current.Steps, Step{Label: label, Timestamp: ev.Timestamp})
}

// Flush emits the final in-progress session. Call exactly once after
// the scan is exhausted.
func (b *PathBuilder) Flush() {
	b.finish()
	b.started = false
	b.current = SessionPath{}
}

func (b *PathBuilder) finish() {
	if b.started && len(b.current.Steps) >= 2 {
		b.emit(b.current)
	}
}

// TotalSessions reports how many distinct sessions the scan contained,
// including sessions too short to emit.
func (b *PathBuilder) TotalSessions() uint64 {
	return b.totalSessions
}
