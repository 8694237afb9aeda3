// api/internal/store/trait_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"pathlens/api/models"
)

// traitLookupTimeout bounds each trait-store read so a slow Postgres
// degrades response completeness, not availability.
const traitLookupTimeout = 3 * time.Second

// TraitStore reads profile traits (arbitrary key/value attributes
// keyed by user identity) from Postgres.
type TraitStore struct {
	db *sql.DB
}

func NewTraitStore(db *sql.DB) *TraitStore {
	return &TraitStore{db: db}
}

// GetTraits returns the trait map for one user identity within a site.
// A user with no traits returns an empty, non-nil map.
func (s *TraitStore) GetTraits(ctx context.Context, siteID, userID string) (map[string]string, error) {
	query := `
		SELECT key, value
		FROM user_traits
		WHERE site_id = $1 AND user_id = $2;
	`
	rows, err := s.db.QueryContext(ctx, query, siteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query traits for user '%s': %w", userID, err)
	}
	defer rows.Close()

	traits := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan trait row: %w", err)
		}
		traits[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during trait query: %w", err)
	}

	return traits, nil
}

// EnrichSessions attaches traits to each session's resolved identity
// (identified user id when present, anonymous id otherwise). Lookup
// failures and missing identities never fail the request: the session
// passes through without traits and the failure is logged.
func (s *TraitStore) EnrichSessions(ctx context.Context, siteID string, sessions []models.SessionSummary) []models.SessionSummary {
	for i := range sessions {
		identity := sessions[i].IdentifiedUserID
		if identity == "" {
			identity = sessions[i].UserID
		}
		if identity == "" {
			continue
		}

		lookupCtx, cancel := context.WithTimeout(ctx, traitLookupTimeout)
		traits, err := s.GetTraits(lookupCtx, siteID, identity)
		cancel()
		if err != nil {
			log.Printf("Trait lookup degraded for session %s: %v", sessions[i].SessionID, err)
			continue
		}
		if len(traits) > 0 {
			sessions[i].Traits = traits
		}
	}
	return sessions
}
