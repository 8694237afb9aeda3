package journey

import (
	"testing"
	"time"

	"pathlens/api/models"
)

func detailEvent(session, pathname string, n int, props models.Props) models.AnalyticsEvent {
	ev := pv(session, pathname, n)
	ev.UserID = "u-" + session
	ev.Properties = props
	return ev
}

func TestDetailAggregator_Histogram(t *testing.T) {
	agg := NewDetailAggregator(NewLabeler(""), "/checkout", nil)
	agg.Observe(detailEvent("s1", "/checkout", 0, models.Props{"color": models.StringProp("red")}))
	agg.Observe(detailEvent("s2", "/checkout", 0, models.Props{"color": models.StringProp("red")}))
	agg.Observe(detailEvent("s3", "/checkout", 0, models.Props{"color": models.StringProp("blue"), "size": models.NumberProp(42)}))
	agg.Observe(detailEvent("s4", "/other", 0, models.Props{"color": models.StringProp("green")}))

	props := agg.Properties()
	colors, ok := props["color"]
	if !ok {
		t.Fatal("expected 'color' histogram key")
	}
	if colors[0].Value != "red" || colors[0].Count != 2 {
		t.Errorf("top color = %+v, want red/2", colors[0])
	}
	if colors[1].Value != "blue" || colors[1].Count != 1 {
		t.Errorf("second color = %+v, want blue/1", colors[1])
	}
	if sizes := props["size"]; len(sizes) != 1 || sizes[0].Value != "42" {
		t.Errorf("size histogram = %+v, want one '42' row", sizes)
	}
	for _, row := range colors {
		if row.Value == "green" {
			t.Error("non-matching step leaked into histogram")
		}
	}
}

func TestDetailAggregator_EmptyPropsStillListEvents(t *testing.T) {
	agg := NewDetailAggregator(NewLabeler(""), "/checkout", nil)
	agg.Observe(detailEvent("s1", "/checkout", 0, nil))

	if len(agg.Properties()) != 0 {
		t.Error("event without properties must not create histogram rows")
	}
	events := agg.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 raw event, got %d", len(events))
	}
	if events[0].SessionID != "s1" || events[0].UserID != "u-s1" {
		t.Errorf("raw event = %+v", events[0])
	}
}

func TestDetailAggregator_StepIndexUsesCollapsedPositions(t *testing.T) {
	// Session path collapses to [/a, /checkout]; both /checkout events
	// belong to collapsed step 2 (0-based index 1).
	events := []models.AnalyticsEvent{
		detailEvent("s1", "/a", 0, nil),
		detailEvent("s1", "/checkout", 1, nil),
		detailEvent("s1", "/checkout", 2, nil),
	}

	atOne := NewDetailAggregator(NewLabeler(""), "/checkout", intPtr(1))
	for _, ev := range events {
		atOne.Observe(ev)
	}
	if got := len(atOne.Events()); got != 2 {
		t.Errorf("stepIndex 1 matched %d events, want both collapsed occurrences", got)
	}

	atZero := NewDetailAggregator(NewLabeler(""), "/checkout", intPtr(0))
	for _, ev := range events {
		atZero.Observe(ev)
	}
	if got := len(atZero.Events()); got != 0 {
		t.Errorf("stepIndex 0 matched %d events, want 0", got)
	}
}

func TestDetailAggregator_EventsMostRecentFirstCapped(t *testing.T) {
	agg := NewDetailAggregator(NewLabeler(""), "/checkout", nil)
	for i := 0; i < MaxDetailEvents+20; i++ {
		ev := detailEvent("s1", "/checkout", 0, nil)
		ev.Timestamp = pathTestBase.Add(time.Duration(i) * time.Minute)
		agg.Observe(ev)
	}
	events := agg.Events()
	if len(events) != MaxDetailEvents {
		t.Fatalf("event list = %d entries, want cap %d", len(events), MaxDetailEvents)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Fatal("events not ordered most recent first")
		}
	}
}

func TestDetailAggregator_PropertyRowCap(t *testing.T) {
	agg := NewDetailAggregator(NewLabeler(""), "/checkout", nil)
	for i := 0; i < MaxPropertyRows+50; i++ {
		ev := detailEvent("s1", "/checkout", i, models.Props{
			"variant": models.NumberProp(float64(i)),
		})
		agg.Observe(ev)
	}
	rows := 0
	for _, entries := range agg.Properties() {
		rows += len(entries)
	}
	if rows != MaxPropertyRows {
		t.Errorf("histogram rows = %d, want cap %d", rows, MaxPropertyRows)
	}
}
