package persistence

import (
	"strings"

	"github.com/sgi/backend/internal/domain/shared"
)

// sortSpec whitelists the columns a listing may be ordered by. Keys are the
// names accepted from clients, values the qualified columns.
type sortSpec struct {
	columns  map[string]string
	fallback string
	tiebreak string
}

// clause renders the ORDER BY for f. Unknown fields fall back to the
// default column and the tiebreak keeps pages stable when values repeat.
func (s sortSpec) clause(f shared.Filter) string {
	column, ok := s.columns[strings.TrimSpace(f.OrderBy)]
	if !ok {
		column = s.columns[s.fallback]
	}
	dir := sortDirection(f.OrderDir)
	if s.tiebreak == "" || column == s.tiebreak {
		return column + " " + dir
	}
	return column + " " + dir + ", " + s.tiebreak + " " + dir
}

// sortDirection accepts asc in any case; everything else is DESC
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

var reportSort = sortSpec{
	columns: map[string]string{
		"created_at":   "contribution_reports.created_at",
		"deposit_date": "contribution_reports.deposit_date",
		"amount":       "contribution_reports.amount",
		"status":       "contribution_reports.status",
		"reviewed_at":  "contribution_reports.reviewed_at",
	},
	fallback: "created_at",
	tiebreak: "contribution_reports.id",
}

var notificationSort = sortSpec{
	columns: map[string]string{
		"created_at": "notifications.created_at",
		"is_read":    "notifications.is_read",
	},
	fallback: "created_at",
	tiebreak: "notifications.id",
}
