// api/internal/store/query.go
package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Condition is one compiled filter predicate: a trusted structural SQL
// fragment with its values bound separately. Conditions are only ever
// built from the whitelists below, never from raw client strings.
type Condition struct {
	Expr string
	Args []interface{}
}

// EventQuery is the shared scan contract every journey feature reads
// the event store through: site, time range, plus compiled filter
// conditions. Two scans built from the same EventQuery select the same
// rows up to the store's own snapshot consistency.
type EventQuery struct {
	SiteID     string
	Start, End time.Time
	Conditions []Condition
}

// WhereClause renders the query's WHERE clause with positional
// placeholders and the matching bound arguments.
func (q EventQuery) WhereClause() (string, []interface{}) {
	clauses := []string{"site_id = ?", "timestamp >= ?", "timestamp <= ?"}
	args := []interface{}{q.SiteID, q.Start, q.End}
	for _, c := range q.Conditions {
		clauses = append(clauses, c.Expr)
		args = append(args, c.Args...)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// filterableColumns is the set of event columns a client filter may
// reference. Anything else is rejected before query assembly.
var filterableColumns = map[string]bool{
	"pathname":    true,
	"event_name":  true,
	"event_type":  true,
	"referrer":    true,
	"channel":     true,
	"hostname":    true,
	"browser":     true,
	"os":          true,
	"device_type": true,
	"country":     true,
	"region":      true,
	"city":        true,
}

type filterClause struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// CompileFilters parses the optional "filters" request parameter (a
// JSON array of {field, op, value} clauses, AND-combined) into bound
// conditions. Fields are whitelisted and values always bound, so no
// client input reaches the SQL text.
func CompileFilters(raw string) ([]Condition, error) {
	if raw == "" {
		return nil, nil
	}
	var clauses []filterClause
	if err := json.Unmarshal([]byte(raw), &clauses); err != nil {
		return nil, fmt.Errorf("filters must be a JSON array of {field, op, value}: %w", err)
	}
	conditions := make([]Condition, 0, len(clauses))
	for _, fc := range clauses {
		if !filterableColumns[fc.Field] {
			return nil, fmt.Errorf("unknown filter field %q", fc.Field)
		}
		switch fc.Op {
		case "eq", "":
			conditions = append(conditions, Condition{
				Expr: fc.Field + " = ?",
				Args: []interface{}{fc.Value},
			})
		case "neq":
			conditions = append(conditions, Condition{
				Expr: fc.Field + " != ?",
				Args: []interface{}{fc.Value},
			})
		case "contains":
			conditions = append(conditions, Condition{
				Expr: fc.Field + " LIKE ?",
				Args: []interface{}{"%" + fc.Value + "%"},
			})
		default:
			return nil, fmt.Errorf("unknown filter op %q", fc.Op)
		}
	}
	return conditions, nil
}
