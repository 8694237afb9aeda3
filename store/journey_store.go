// api/internal/store/journey_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pathlens/api/database"
	"pathlens/api/journey"
	"pathlens/api/models"
)

// JourneyStore reads the analytics_events table for the journey
// endpoints and appends to it for the tracking endpoint. All reads are
// per-request scans; nothing is cached between calls.
type JourneyStore struct {
	DB      *database.ClickHouseClient
	Labeler journey.Labeler
}

func NewJourneyStore(chClient *database.ClickHouseClient, labeler journey.Labeler) *JourneyStore {
	return &JourneyStore{
		DB:      chClient,
		Labeler: labeler,
	}
}

func (s *JourneyStore) InsertAnalyticsEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column order must exactly match the analytics_events schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, site_id, session_id, user_id, identified_user_id,
			event_type, event_name, timestamp, ingested_at, pathname, hostname,
			referrer, channel, browser, os, device_type,
			country, region, city, ip_address, properties
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		props, perr := json.Marshal(event.Properties)
		if perr != nil {
			log.Printf("Error encoding properties for event %s: %v", event.EventID, perr)
			props = []byte("{}")
		}
		err := batch.Append(
			event.EventID,
			event.SiteID,
			event.SessionID,
			event.UserID,
			event.IdentifiedUserID,
			event.EventType,
			event.EventName,
			event.Timestamp,
			event.IngestedAt,
			event.Pathname,
			event.Hostname,
			event.Referrer,
			event.Channel,
			event.Browser,
			event.OS,
			event.DeviceType,
			event.Country,
			event.Region,
			event.City,
			event.IPAddress,
			string(props),
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// ScanSessionPaths streams the query's events ordered by (session_id,
// timestamp, ingestion order) through a path builder, calling visit
// once per session with at least 2 collapsed steps. It returns the
// count of every distinct session the scan touched, which journey
// percentages use as their denominator.
func (s *JourneyStore) ScanSessionPaths(ctx context.Context, q EventQuery, includeEvents bool, excludeEventNames []string, visit func(journey.SessionPath)) (uint64, error) {
	where, args := q.WhereClause()
	query := fmt.Sprintf(`
		SELECT session_id, timestamp, event_type, pathname, event_name
		FROM analytics_events
		%s
		ORDER BY session_id ASC, timestamp ASC, ingested_at ASC
	`, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to scan session paths: %w", err)
	}
	defer rows.Close()

	builder := journey.NewPathBuilder(s.Labeler, includeEvents, excludeEventNames, visit)
	for rows.Next() {
		var ev models.AnalyticsEvent
		if err := rows.Scan(&ev.SessionID, &ev.Timestamp, &ev.EventType, &ev.Pathname, &ev.EventName); err != nil {
			return 0, fmt.Errorf("failed to scan session path row: %w", err)
		}
		builder.Add(ev)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("row error during session path scan: %w", err)
	}
	builder.Flush()

	return builder.TotalSessions(), nil
}

// ScanStepEvents streams the query's events, with their property bags
// and identity columns, in the same (session_id, timestamp, ingestion)
// order the path builder uses, so the step-detail aggregator computes
// step numbers that line up with journey positions.
func (s *JourneyStore) ScanStepEvents(ctx context.Context, q EventQuery, visit func(models.AnalyticsEvent)) error {
	where, args := q.WhereClause()
	query := fmt.Sprintf(`
		SELECT session_id, user_id, identified_user_id, timestamp, event_type, pathname, event_name, properties
		FROM analytics_events
		%s
		ORDER BY session_id ASC, timestamp ASC, ingested_at ASC
	`, where)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to scan step events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.AnalyticsEvent
		var rawProps string
		if err := rows.Scan(&ev.SessionID, &ev.UserID, &ev.IdentifiedUserID, &ev.Timestamp,
			&ev.EventType, &ev.Pathname, &ev.EventName, &rawProps); err != nil {
			return fmt.Errorf("failed to scan step event row: %w", err)
		}
		props, perr := models.ParseProps(rawProps)
		if perr != nil {
			log.Printf("Skipping malformed properties for session %s: %v", ev.SessionID, perr)
		}
		ev.Properties = props
		visit(ev)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row error during step event scan: %w", err)
	}

	return nil
}

// MaterializeSessions aggregates one summary row per requested session
// id. "Most recent" columns resolve through argMax over (timestamp,
// ingested_at) and "earliest" through argMin, so ties on equal
// timestamps fall back to ingestion order deterministically. The
// result reflects the store at this scan, which may be a slightly
// newer snapshot than the scan that selected the session ids.
func (s *JourneyStore) MaterializeSessions(ctx context.Context, q EventQuery, sessionIDs []string) (map[string]models.SessionSummary, error) {
	if len(sessionIDs) == 0 {
		return map[string]models.SessionSummary{}, nil
	}

	where, args := q.WhereClause()
	query := fmt.Sprintf(`
		SELECT
			session_id,
			argMaxIf(user_id, (timestamp, ingested_at), user_id != '') AS user_id,
			argMaxIf(identified_user_id, (timestamp, ingested_at), identified_user_id != '') AS identified_user_id,
			argMax(country, (timestamp, ingested_at)) AS country,
			argMax(region, (timestamp, ingested_at)) AS region,
			argMax(city, (timestamp, ingested_at)) AS city,
			argMax(device_type, (timestamp, ingested_at)) AS device_type,
			argMax(browser, (timestamp, ingested_at)) AS browser,
			argMax(os, (timestamp, ingested_at)) AS os,
			argMax(ip_address, (timestamp, ingested_at)) AS ip_address,
			argMin(referrer, (timestamp, ingested_at)) AS referrer,
			argMin(channel, (timestamp, ingested_at)) AS channel,
			argMin(hostname, (timestamp, ingested_at)) AS hostname,
			min(timestamp) AS started_at,
			max(timestamp) AS ended_at,
			argMinIf(pathname, (timestamp, ingested_at), event_type = 'pageview') AS entry_page,
			argMaxIf(pathname, (timestamp, ingested_at), event_type = 'pageview') AS exit_page,
			countIf(event_type = 'pageview') AS pageview_count,
			countIf(event_type = 'custom_event') AS event_count
		FROM analytics_events
		%s AND session_id IN (?)
		GROUP BY session_id
	`, where)
	args = append(args, sessionIDs)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize sessions: %w", err)
	}
	defer rows.Close()

	summaries := make(map[string]models.SessionSummary, len(sessionIDs))
	for rows.Next() {
		var sum models.SessionSummary
		if err := rows.Scan(
			&sum.SessionID, &sum.UserID, &sum.IdentifiedUserID,
			&sum.Country, &sum.Region, &sum.City,
			&sum.DeviceType, &sum.Browser, &sum.OS, &sum.IPAddress,
			&sum.Referrer, &sum.Channel, &sum.Hostname,
			&sum.StartedAt, &sum.EndedAt,
			&sum.EntryPage, &sum.ExitPage,
			&sum.PageviewCount, &sum.EventCount,
		); err != nil {
			log.Printf("Error scanning session summary row: %v", err)
			continue
		}
		sum.DurationSeconds = sum.EndedAt.Sub(sum.StartedAt).Seconds()
		summaries[sum.SessionID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during session materialization: %w", err)
	}

	return summaries, nil
}
