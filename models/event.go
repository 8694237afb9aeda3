// api/internal/models/event.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Interaction event types. Everything else (including unknown types) is
// treated as pageview-like and labeled by pathname.
const (
	EventTypePageview    = "pageview"
	EventTypeCustomEvent = "custom_event"
	EventTypeButtonClick = "button_click"
	EventTypeCopy        = "copy"
	EventTypeFormSubmit  = "form_submit"
	EventTypeInputChange = "input_change"
	EventTypeOutbound    = "outbound"
)

// IsInteractionType reports whether an event type is labeled as an
// interaction ("event:<type>[:<name>]") rather than by its pathname.
func IsInteractionType(eventType string) bool {
	switch eventType {
	case EventTypeCustomEvent, EventTypeButtonClick, EventTypeCopy,
		EventTypeFormSubmit, EventTypeInputChange, EventTypeOutbound:
		return true
	default:
		return false
	}
}

// AnalyticsEvent is one row of the analytics_events table. Events are
// appended by the tracking endpoint and never mutated; IngestedAt is a
// per-insert sequence used to break timestamp ties deterministically.
type AnalyticsEvent struct {
	EventID          string    `json:"eventId"`
	SiteID           string    `json:"siteId"`
	SessionID        string    `json:"sessionId"`
	UserID           string    `json:"userId"`
	IdentifiedUserID string    `json:"identifiedUserId,omitempty"`
	EventType        string    `json:"eventType"`
	EventName        string    `json:"eventName,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	IngestedAt       time.Time `json:"-"`
	Pathname         string    `json:"pathname"`
	Hostname         string    `json:"hostname,omitempty"`
	Referrer         string    `json:"referrer,omitempty"`
	Channel          string    `json:"channel,omitempty"`
	Browser          string    `json:"browser,omitempty"`
	OS               string    `json:"os,omitempty"`
	DeviceType       string    `json:"deviceType,omitempty"`
	Country          string    `json:"country,omitempty"`
	Region           string    `json:"region,omitempty"`
	City             string    `json:"city,omitempty"`
	IPAddress        string    `json:"ipAddress,omitempty"`
	Properties       Props     `json:"properties,omitempty"`
}

// Props is the loose property bag attached to interaction events.
// Values keep their JSON type tag so histograms can stringify numbers
// and booleans consistently instead of round-tripping raw bytes.
type Props map[string]PropValue

// PropValue is one tagged property value.
type PropValue struct {
	Str  string
	Num  float64
	Bool bool
	kind propKind
}

type propKind int

const (
	propNull propKind = iota
	propString
	propNumber
	propBool
	propOther
)

// StringProp and NumberProp build tagged values, mainly for tests and
// the tracking endpoint.
func StringProp(s string) PropValue  { return PropValue{Str: s, kind: propString} }
func NumberProp(n float64) PropValue { return PropValue{Num: n, kind: propNumber} }
func BoolProp(b bool) PropValue      { return PropValue{Bool: b, kind: propBool} }

func (v *PropValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = PropValue{Str: val, kind: propString}
	case float64:
		*v = PropValue{Num: val, kind: propNumber}
	case bool:
		*v = PropValue{Bool: val, kind: propBool}
	case nil:
		*v = PropValue{kind: propNull}
	default:
		// Nested objects/arrays keep their compact JSON encoding.
		*v = PropValue{Str: string(data), kind: propOther}
	}
	return nil
}

func (v PropValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case propString:
		return json.Marshal(v.Str)
	case propNumber:
		return json.Marshal(v.Num)
	case propBool:
		return json.Marshal(v.Bool)
	case propOther:
		return []byte(v.Str), nil
	default:
		return []byte("null"), nil
	}
}

// String renders the value the way histogram rows display it.
func (v PropValue) String() string {
	switch v.kind {
	case propString, propOther:
		return v.Str
	case propNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case propBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// ParseProps decodes a raw JSON property bag as stored in ClickHouse.
// An empty or "null" payload yields an empty bag, not an error.
func ParseProps(raw string) (Props, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var p Props
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("invalid properties payload: %w", err)
	}
	return p, nil
}
