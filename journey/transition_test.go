package journey

import (
	"fmt"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestTransitionFinder_Qualification(t *testing.T) {
	tests := []struct {
		name                 string
		path                 []string
		sourcePos, targetPos *int
		want                 bool
	}{
		{
			name: "source before target qualifies",
			path: []string{"/a", "/b"},
			want: true,
		},
		{
			name: "target before source does not qualify",
			path: []string{"/b", "/a"},
			want: false,
		},
		{
			name: "intervening steps still qualify",
			path: []string{"/a", "/x", "/b"},
			want: true,
		},
		{
			name:      "matching position constraints qualify",
			path:      []string{"/a", "/x", "/b"},
			sourcePos: intPtr(0),
			targetPos: intPtr(2),
			want:      true,
		},
		{
			name:      "wrong source position rejects",
			path:      []string{"/a", "/x", "/b"},
			sourcePos: intPtr(1),
			want:      false,
		},
		{
			name:      "wrong target position rejects",
			path:      []string{"/a", "/x", "/b"},
			targetPos: intPtr(1),
			want:      false,
		},
		{
			name: "source missing does not qualify",
			path: []string{"/x", "/b"},
			want: false,
		},
		{
			name: "target missing does not qualify",
			path: []string{"/a", "/x"},
			want: false,
		},
		{
			name: "first occurrences decide ordering",
			path: []string{"/b", "/a", "/b"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := NewTransitionFinder("/a", "/b", tt.sourcePos, tt.targetPos)
			finder.Observe(sessionPath("s1", tt.path...))
			if got := finder.Total() == 1; got != tt.want {
				t.Errorf("qualified = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionFinder_TimestampIsSourceStep(t *testing.T) {
	finder := NewTransitionFinder("/a", "/b", nil, nil)
	p := sessionPath("s1", "/x", "/a", "/b")
	finder.Observe(p)
	page := finder.Page(10, 1)
	if len(page) != 1 {
		t.Fatal("expected one match")
	}
	if !page[0].At.Equal(p.Steps[1].Timestamp) {
		t.Errorf("transition timestamp = %v, want source step's %v", page[0].At, p.Steps[1].Timestamp)
	}
}

func TestTransitionFinder_Pagination(t *testing.T) {
	finder := NewTransitionFinder("/a", "/b", nil, nil)
	for i := 0; i < 120; i++ {
		p := SessionPath{
			SessionID: fmt.Sprintf("s%03d", i),
			Steps: []Step{
				{Label: "/a", Timestamp: pathTestBase.Add(time.Duration(i) * time.Minute)},
				{Label: "/b", Timestamp: pathTestBase.Add(time.Duration(i)*time.Minute + time.Second)},
			},
		}
		finder.Observe(p)
	}

	if finder.Total() != 120 {
		t.Fatalf("Total = %d, want 120", finder.Total())
	}

	// Page 2 of 50 holds ranks 51-100 by transition timestamp
	// descending, i.e. sessions s069 down to s020.
	page := finder.Page(50, 2)
	if len(page) != 50 {
		t.Fatalf("page length = %d, want 50", len(page))
	}
	if page[0].SessionID != "s069" {
		t.Errorf("first of page 2 = %s, want s069", page[0].SessionID)
	}
	if page[49].SessionID != "s020" {
		t.Errorf("last of page 2 = %s, want s020", page[49].SessionID)
	}

	// Page 3 holds the remaining 20; page 4 is empty.
	if got := len(finder.Page(50, 3)); got != 20 {
		t.Errorf("page 3 length = %d, want 20", got)
	}
	if got := len(finder.Page(50, 4)); got != 0 {
		t.Errorf("page 4 length = %d, want 0", got)
	}
}

func TestTransitionFinder_StableOrderOnEqualTimestamps(t *testing.T) {
	at := pathTestBase
	run := func() []TransitionMatch {
		finder := NewTransitionFinder("/a", "/b", nil, nil)
		for _, id := range []string{"s3", "s1", "s2"} {
			finder.Observe(SessionPath{
				SessionID: id,
				Steps: []Step{
					{Label: "/a", Timestamp: at},
					{Label: "/b", Timestamp: at.Add(time.Second)},
				},
			})
		}
		return finder.Page(10, 1)
	}
	page := run()
	for i, want := range []string{"s1", "s2", "s3"} {
		if page[i].SessionID != want {
			t.Errorf("page[%d] = %s, want %s", i, page[i].SessionID, want)
		}
	}
}
