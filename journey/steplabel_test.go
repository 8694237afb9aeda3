package journey

import "testing"

func TestLabeler_Label(t *testing.T) {
	labeler := NewLabeler("")

	tests := []struct {
		name      string
		eventType string
		pathname  string
		eventName string
		want      string
	}{
		{
			name:      "pageview shallow path keeps raw path",
			eventType: "pageview",
			pathname:  "/pricing",
			want:      "/pricing",
		},
		{
			name:      "pageview nested path reduces to first segment",
			eventType: "pageview",
			pathname:  "/blog/post-1",
			want:      "/blog",
		},
		{
			name:      "pageview deeply nested path reduces to first segment",
			eventType: "pageview",
			pathname:  "/docs/guides/getting-started",
			want:      "/docs",
		},
		{
			name:      "draft asset path collapses to prefix",
			eventType: "pageview",
			pathname:  "/asset/draft/123",
			want:      "/asset/draft",
		},
		{
			name:      "draft asset prefix itself collapses",
			eventType: "pageview",
			pathname:  "/asset/draft",
			want:      "/asset/draft",
		},
		{
			name:      "root path stays root",
			eventType: "pageview",
			pathname:  "/",
			want:      "/",
		},
		{
			name:      "custom event without name",
			eventType: "custom_event",
			pathname:  "/checkout",
			want:      "event:custom_event",
		},
		{
			name:      "custom event with name",
			eventType: "custom_event",
			pathname:  "/checkout",
			eventName: "purchase",
			want:      "event:custom_event:purchase",
		},
		{
			name:      "button click with name",
			eventType: "button_click",
			pathname:  "/",
			eventName: "cta",
			want:      "event:button_click:cta",
		},
		{
			name:      "form submit without name",
			eventType: "form_submit",
			pathname:  "/contact",
			want:      "event:form_submit",
		},
		{
			name:      "unknown type falls back to path labeling",
			eventType: "scroll_depth",
			pathname:  "/blog/post-1",
			want:      "/blog",
		},
		{
			name:      "empty everything never panics",
			eventType: "",
			pathname:  "",
			want:      "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labeler.Label(tt.eventType, tt.pathname, tt.eventName)
			if got != tt.want {
				t.Errorf("Label(%q, %q, %q) = %q, want %q", tt.eventType, tt.pathname, tt.eventName, got, tt.want)
			}
		})
	}
}

func TestLabeler_ConfigurableDraftPrefix(t *testing.T) {
	labeler := NewLabeler("/media/wip")
	if got := labeler.Label("pageview", "/media/wip/42", ""); got != "/media/wip" {
		t.Errorf("custom prefix: got %q, want %q", got, "/media/wip")
	}
	// The default prefix is just an ordinary nested path now.
	if got := labeler.Label("pageview", "/asset/draft/123", ""); got != "/asset" {
		t.Errorf("default prefix without config: got %q, want %q", got, "/asset")
	}
}
