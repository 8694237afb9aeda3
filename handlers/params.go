// api/handlers/params.go
package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pathlens/api/journey"
)

// parseTimeRange reads the start/end RFC3339 query parameters,
// defaulting to the last 7 days when absent.
func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	start := time.Now().UTC().Add(-7 * 24 * time.Hour)
	end := time.Now().UTC()

	if startParam := c.Query("start"); startParam != "" {
		parsed, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'start' timestamp format, use RFC3339 (e.g. 2006-01-02T15:04:05Z)")
		}
		start = parsed
	}
	if endParam := c.Query("end"); endParam != "" {
		parsed, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'end' timestamp format, use RFC3339 (e.g. 2006-01-02T15:04:05Z)")
		}
		end = parsed
	}
	return start, end, nil
}

// parseIntParam reads a bounded integer query parameter. Numeric
// inputs arrive as strings; anything non-numeric or out of range is a
// client error, never a crash.
func parseIntParam(c *gin.Context, name string, def, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("'%s' must be an integer", name)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("'%s' must be between %d and %d", name, min, max)
	}
	return value, nil
}

// parseIndexParam reads an optional 0-based position parameter,
// returning nil when absent.
func parseIndexParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return nil, fmt.Errorf("'%s' must be a non-negative integer", name)
	}
	return &value, nil
}

// parseBoolParam reads a boolean query parameter with a default.
func parseBoolParam(c *gin.Context, name string, def bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("'%s' must be a boolean", name)
	}
	return value, nil
}

// parseExcludeEventNames accepts either a JSON array of names or a
// comma-separated list; malformed JSON falls back to comma splitting.
// Names are trimmed and empties dropped, so both encodings normalize
// to the same set.
func parseExcludeEventNames(raw string) []string {
	if raw == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		parsed = strings.Split(raw, ",")
	}
	names := make([]string, 0, len(parsed))
	for _, name := range parsed {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// parseStepFilters parses the stepFilters parameter: a JSON object of
// 0-based position -> wildcard pattern. Unlike excludeEventNames there
// is no sensible non-JSON fallback, so malformed input is rejected.
func parseStepFilters(raw string) (map[int]*journey.Matcher, error) {
	if raw == "" {
		return nil, nil
	}
	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("'stepFilters' must be a JSON object of position to pattern")
	}
	filters := make(map[int]*journey.Matcher, len(parsed))
	for posStr, pattern := range parsed {
		pos, err := strconv.Atoi(posStr)
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("'stepFilters' position %q must be a non-negative integer", posStr)
		}
		matcher, err := journey.CompilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("'stepFilters' position %d: %v", pos, err)
		}
		filters[pos] = matcher
	}
	return filters, nil
}
