// api/handlers/journey_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pathlens/api/journey"
	"pathlens/api/models"
	"pathlens/api/store"
)

type JourneyHandlers struct {
	JourneyStore *store.JourneyStore
	TraitStore   *store.TraitStore
}

func NewJourneyHandlers(journeyStore *store.JourneyStore, traitStore *store.TraitStore) *JourneyHandlers {
	return &JourneyHandlers{
		JourneyStore: journeyStore,
		TraitStore:   traitStore,
	}
}

// buildEventQuery assembles the shared site/time/filter scan contract
// every journey endpoint reads through. It writes the 400 response
// itself and returns ok=false when the request is invalid.
func (h *JourneyHandlers) buildEventQuery(c *gin.Context) (store.EventQuery, bool) {
	site := c.Query("site")
	if site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site query parameter is required"})
		return store.EventQuery{}, false
	}
	start, end, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return store.EventQuery{}, false
	}
	conditions, err := store.CompileFilters(c.Query("filters"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return store.EventQuery{}, false
	}
	return store.EventQuery{SiteID: site, Start: start, End: end, Conditions: conditions}, true
}

// GetJourneys handles GET /api/journeys: ranked truncated session
// paths with support counts and share of all in-range sessions.
func (h *JourneyHandlers) GetJourneys(c *gin.Context) {
	q, ok := h.buildEventQuery(c)
	if !ok {
		return
	}

	steps, err := parseIntParam(c, "steps", 3, journey.MinJourneySteps, journey.MaxJourneySteps)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseIntParam(c, "limit", 100, journey.MinJourneyLimit, journey.MaxJourneyLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	includeEvents, err := parseBoolParam(c, "includeEvents", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stepFilters, err := parseStepFilters(c.Query("stepFilters"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	excludeEventNames := parseExcludeEventNames(c.Query("excludeEventNames"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	aggregator := journey.NewAggregator(steps)
	totalSessions, err := h.JourneyStore.ScanSessionPaths(ctx, q, includeEvents, excludeEventNames, aggregator.Observe)
	if err != nil {
		log.Printf("Error scanning session paths for journeys (site %s): %v", q.SiteID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journeys"})
		return
	}

	c.JSON(http.StatusOK, models.JourneysResponse{
		Journeys: aggregator.Journeys(totalSessions, limit, stepFilters),
	})
}

// GetTransitionSessions handles GET /api/journeys/transition-sessions:
// the paginated, trait-enriched sessions behind one source -> target
// step transition.
func (h *JourneyHandlers) GetTransitionSessions(c *gin.Context) {
	q, ok := h.buildEventQuery(c)
	if !ok {
		return
	}

	source := c.Query("source")
	target := c.Query("target")
	if source == "" || target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and target query parameters are required"})
		return
	}
	sourceStep, err := parseIndexParam(c, "sourceStep")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetStep, err := parseIndexParam(c, "targetStep")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseIntParam(c, "limit", 50, journey.MinTransitionLimit, journey.MaxTransitionLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := parseIntParam(c, "page", 1, 1, 1<<30)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	includeEvents, err := parseBoolParam(c, "includeEvents", true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	excludeEventNames := parseExcludeEventNames(c.Query("excludeEventNames"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	finder := journey.NewTransitionFinder(source, target, sourceStep, targetStep)
	if _, err := h.JourneyStore.ScanSessionPaths(ctx, q, includeEvents, excludeEventNames, finder.Observe); err != nil {
		log.Printf("Error scanning session paths for transition (site %s, %s -> %s): %v", q.SiteID, source, target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transition sessions"})
		return
	}

	total := finder.Total()
	matches := finder.Page(limit, page)
	sessionIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		sessionIDs = append(sessionIDs, m.SessionID)
	}

	summaries, err := h.JourneyStore.MaterializeSessions(ctx, q, sessionIDs)
	if err != nil {
		log.Printf("Error materializing sessions (site %s): %v", q.SiteID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transition sessions"})
		return
	}

	data := make([]models.SessionSummary, 0, len(matches))
	for _, m := range matches {
		summary, found := summaries[m.SessionID]
		if !found {
			// The summary scan is a separate, possibly newer snapshot
			// than the path scan; a session can vanish between them.
			log.Printf("Session %s qualified but did not materialize; skipping", m.SessionID)
			continue
		}
		summary.TransitionAt = m.At
		data = append(data, summary)
	}
	data = h.TraitStore.EnrichSessions(ctx, q.SiteID, data)

	totalPages := 0
	if total > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	c.JSON(http.StatusOK, models.TransitionSessionsResponse{
		Data: data,
		Pagination: models.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

// GetStepEventDetails handles GET /api/journeys/step-events: the
// property histogram and raw events behind one step label.
func (h *JourneyHandlers) GetStepEventDetails(c *gin.Context) {
	q, ok := h.buildEventQuery(c)
	if !ok {
		return
	}

	stepLabel := c.Query("stepLabel")
	if stepLabel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stepLabel query parameter is required"})
		return
	}
	stepIndex, err := parseIndexParam(c, "stepIndex")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	aggregator := journey.NewDetailAggregator(h.JourneyStore.Labeler, stepLabel, stepIndex)
	if err := h.JourneyStore.ScanStepEvents(ctx, q, aggregator.Observe); err != nil {
		log.Printf("Error scanning step events (site %s, step %s): %v", q.SiteID, stepLabel, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve step event details"})
		return
	}

	events := aggregator.Events()
	if events == nil {
		events = make([]models.StepEvent, 0)
	}
	c.JSON(http.StatusOK, models.StepEventDetailsResponse{
		Properties: aggregator.Properties(),
		Events:     events,
	})
}
