// api/internal/models/journey.go
package models

import "time"

// Journey is one ranked truncated path shared by Count sessions.
// Percentage is relative to every distinct session in range, including
// sessions too short to produce a journey.
type Journey struct {
	Path       []string `json:"path"`
	Count      uint64   `json:"count"`
	Percentage float64  `json:"percentage"`
}

type JourneysResponse struct {
	Journeys []Journey `json:"journeys"`
}

// Pagination echoes the page window of a transition-session query.
type Pagination struct {
	Total      uint64 `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// SessionSummary is the materialized view of one session, aggregated
// from its events at query time. "Most recent" fields take the value
// at the latest timestamp, "earliest" fields the value at the first.
type SessionSummary struct {
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId"`
	IdentifiedUserID string    `json:"identifiedUserId,omitempty"`
	Country          string    `json:"country,omitempty"`
	Region           string    `json:"region,omitempty"`
	City             string    `json:"city,omitempty"`
	DeviceType       string    `json:"deviceType,omitempty"`
	Browser          string    `json:"browser,omitempty"`
	OS               string    `json:"os,omitempty"`
	Referrer         string    `json:"referrer,omitempty"`
	Channel          string    `json:"channel,omitempty"`
	Hostname         string    `json:"hostname,omitempty"`
	IPAddress        string    `json:"ipAddress,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	EndedAt          time.Time `json:"endedAt"`
	DurationSeconds  float64   `json:"durationSeconds"`
	EntryPage        string    `json:"entryPage,omitempty"`
	ExitPage         string    `json:"exitPage,omitempty"`
	PageviewCount    uint64    `json:"pageviewCount"`
	EventCount       uint64    `json:"eventCount"`

	// TransitionAt is the timestamp of the source step that qualified
	// this session; it orders the page slice.
	TransitionAt time.Time `json:"transitionAt"`

	// Traits are profile attributes merged from the trait store. Nil
	// when the session has no identity or the lookup degraded.
	Traits map[string]string `json:"traits,omitempty"`
}

type TransitionSessionsResponse struct {
	Data       []SessionSummary `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// PropertyCount is one histogram row for a step's property key.
type PropertyCount struct {
	Value string `json:"value"`
	Count uint64 `json:"count"`
}

// StepEvent is one raw event behind a matched step.
type StepEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	UserID           string    `json:"user_id"`
	IdentifiedUserID string    `json:"identified_user_id,omitempty"`
	SessionID        string    `json:"session_id"`
}

type StepEventDetailsResponse struct {
	Properties map[string][]PropertyCount `json:"properties"`
	Events     []StepEvent                `json:"events"`
}
