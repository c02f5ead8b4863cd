// services/period.go - Monthly hackathon period derivation
package services

import (
	"fmt"
	"time"
)

// Period IDs look like "2025-06": one virtual hackathon per calendar
// month, derived in UTC so every client session agrees on the boundary.
const periodLayout = "2006-01"

// PeriodID returns the period identifier covering t.
func PeriodID(t time.Time) string {
	return t.UTC().Format(periodLayout)
}

// CurrentPeriodID returns the identifier for the period covering now.
func CurrentPeriodID() string {
	return PeriodID(time.Now())
}

// PeriodStart returns the first instant of the period.
func PeriodStart(periodID string) (time.Time, error) {
	t, err := time.Parse(periodLayout, periodID)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period id %q: %w", periodID, err)
	}
	return t, nil
}

// PeriodCutoff returns the submission cutoff: the first instant of the
// following month. Nothing fires when it passes; register/submit compare
// against it lazily.
func PeriodCutoff(periodID string) (time.Time, error) {
	start, err := PeriodStart(periodID)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 1, 0), nil
}

// NextPeriodID returns the identifier of the period after periodID.
// Lockouts recorded against it expire once the calendar reaches it.
func NextPeriodID(periodID string) (string, error) {
	start, err := PeriodStart(periodID)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, 1, 0).Format(periodLayout), nil
}
