package service

import (
	"math"
	"time"
)

// DaysOverdue returns the number of whole days returnedAt falls past dueDate,
// never negative. Timestamps are truncated to dates first so a return at
// 23:59 on the due date costs nothing.
func DaysOverdue(dueDate, returnedAt time.Time) int {
	due := dueDate.Truncate(24 * time.Hour)
	ret := returnedAt.Truncate(24 * time.Hour)
	days := int(math.Floor(ret.Sub(due).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// ComputeFine is the single fine rule for the whole system.
func ComputeFine(dueDate, returnedAt time.Time, ratePerDay float64) float64 {
	return float64(DaysOverdue(dueDate, returnedAt)) * ratePerDay
}
