package fortuna

import (
	"time"

	"github.com/sgi/backend/internal/domain/shared"
)

// Plan is a subscription length
type Plan string

const (
	PlanQuarterly  Plan = "quarterly"
	PlanSemiannual Plan = "semiannual"
	PlanAnnual     Plan = "annual"
)

// Months returns how many months of access the plan buys, or 0 for an
// unknown plan.
func (p Plan) Months() int {
	switch p {
	case PlanQuarterly:
		return 3
	case PlanSemiannual:
		return 6
	case PlanAnnual:
		return 12
	}
	return 0
}

// IsValid reports whether p is a known plan
func (p Plan) IsValid() bool {
	return p.Months() > 0
}

// ParsePlan validates a submitted plan value
func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if !p.IsValid() {
		return "", shared.NewValidationError("plan", "Plan must be quarterly, semiannual or annual")
	}
	return p, nil
}

// Window is an inclusive range of calendar dates
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow returns the access window a deposit buys. Access starts on
// the first day of the month after the deposit month and ends on the last
// day of the final covered month: a quarterly plan paid on 2025-01-20
// covers 2025-02-01 through 2025-04-30.
func ComputeWindow(plan Plan, depositDate time.Time) (Window, error) {
	months := plan.Months()
	if months == 0 {
		return Window{}, shared.NewValidationError("plan", "Unknown plan")
	}
	if depositDate.IsZero() {
		return Window{}, shared.NewValidationError("deposit_date", "Deposit date is required")
	}

	y, m, _ := depositDate.Date()
	start := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, months, -1)
	return Window{Start: start, End: end}, nil
}

// Contains reports whether the calendar date of t falls inside the window
func (w Window) Contains(t time.Time) bool {
	day := shared.DateOf(t)
	return !day.Before(w.Start) && !day.After(w.End)
}
