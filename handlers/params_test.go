package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/journeys?"+query, nil)
	return c
}

func TestParseIntParam(t *testing.T) {
	c := testContext(t, "steps=5")
	got, err := parseIntParam(c, "steps", 3, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	// Absent falls back to the default without a range check failure.
	got, err = parseIntParam(c, "limit", 100, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	_, err = parseIntParam(testContext(t, "steps=11"), "steps", 3, 2, 10)
	assert.Error(t, err)

	_, err = parseIntParam(testContext(t, "steps=1"), "steps", 3, 2, 10)
	assert.Error(t, err)

	_, err = parseIntParam(testContext(t, "steps=lots"), "steps", 3, 2, 10)
	assert.Error(t, err)
}

func TestParseIndexParam(t *testing.T) {
	got, err := parseIndexParam(testContext(t, "sourceStep=2"), "sourceStep")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)

	got, err = parseIndexParam(testContext(t, ""), "sourceStep")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseIndexParam(testContext(t, "sourceStep=-1"), "sourceStep")
	assert.Error(t, err)

	_, err = parseIndexParam(testContext(t, "sourceStep=first"), "sourceStep")
	assert.Error(t, err)
}

func TestParseBoolParam(t *testing.T) {
	got, err := parseBoolParam(testContext(t, "includeEvents=false"), "includeEvents", true)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = parseBoolParam(testContext(t, ""), "includeEvents", true)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = parseBoolParam(testContext(t, "includeEvents=maybe"), "includeEvents", true)
	assert.Error(t, err)
}

func TestParseExcludeEventNames(t *testing.T) {
	// JSON array and comma list normalize identically.
	fromJSON := parseExcludeEventNames(`["heartbeat"," scroll ",""]`)
	fromCSV := parseExcludeEventNames("heartbeat, scroll ,")
	assert.Equal(t, []string{"heartbeat", "scroll"}, fromJSON)
	assert.Equal(t, fromJSON, fromCSV)

	assert.Nil(t, parseExcludeEventNames(""))
	assert.Nil(t, parseExcludeEventNames(" , ,"))

	// Malformed JSON falls back to comma splitting instead of failing.
	assert.Equal(t, []string{`["oops`}, parseExcludeEventNames(`["oops`))
}

func TestParseStepFilters(t *testing.T) {
	filters, err := parseStepFilters(`{"0":"/home","2":"/blog/*"}`)
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.True(t, filters[0].Match("/home"))
	assert.True(t, filters[2].Match("/blog/post-1"))
	assert.False(t, filters[2].Match("/blog/post-1/comments"))

	filters, err = parseStepFilters("")
	require.NoError(t, err)
	assert.Nil(t, filters)

	// No comma fallback here: malformed JSON is a client error.
	_, err = parseStepFilters("0:/home")
	assert.Error(t, err)

	_, err = parseStepFilters(`{"first":"/home"}`)
	assert.Error(t, err)

	_, err = parseStepFilters(`{"0":"/bl*og"}`)
	assert.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	start, end, err := parseTimeRange(testContext(t, "start=2026-03-01T00:00:00Z&end=2026-03-02T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T00:00:00Z", start.Format("2006-01-02T15:04:05Z"))
	assert.Equal(t, 24.0, end.Sub(start).Hours())

	// Defaults cover the trailing 7 days.
	start, end, err = parseTimeRange(testContext(t, ""))
	require.NoError(t, err)
	assert.InDelta(t, 7*24.0, end.Sub(start).Hours(), 0.01)

	_, _, err = parseTimeRange(testContext(t, "start=yesterday"))
	assert.Error(t, err)
}
