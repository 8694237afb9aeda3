// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"pathlens/api/models"
	"pathlens/api/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TrackHandlers is the ingestion interface: it accepts event batches
// from the tracker script and appends them to the event store. The
// journey endpoints only ever read what this wrote.
type TrackHandlers struct {
	JourneyStore *store.JourneyStore
}

func NewTrackHandlers(s *store.JourneyStore) *TrackHandlers {
	return &TrackHandlers{
		JourneyStore: s,
	}
}

func (h *TrackHandlers) TrackEvents(c *gin.Context) {
	var incomingEvents []models.AnalyticsEvent
	if err := c.ShouldBindJSON(&incomingEvents); err != nil {
		log.Printf("Error binding incoming analytics JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incomingEvents) == 0 {
		c.Status(http.StatusOK)
		return
	}

	now := time.Now().UTC()
	eventsToInsert := make([]models.AnalyticsEvent, 0, len(incomingEvents))
	for _, event := range incomingEvents {
		event.EventID = uuid.New().String()
		event.IPAddress = c.ClientIP()
		// Ingestion order breaks timestamp ties in every downstream
		// "most recent"/"earliest" aggregation.
		event.IngestedAt = now
		now = now.Add(time.Microsecond)

		eventsToInsert = append(eventsToInsert, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.JourneyStore.InsertAnalyticsEvents(ctx, eventsToInsert); err != nil {
		log.Printf("Error inserting analytics events into ClickHouse: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record analytics events"})
		return
	}

	c.Status(http.StatusOK)
}
