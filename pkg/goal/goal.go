package goal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a monthly spending limit for a single category over a range of months.
type Goal struct {
	// Id is empty until the goal is stored.
	Id         string
	Category   string
	MonthLimit decimal.Decimal
	// StartMonth is the first month the goal applies to. Only year and month are significant.
	StartMonth time.Time
	// EndMonth is the last month (inclusive) the goal applies to. Nil when the goal is open-ended.
	EndMonth *time.Time
}

// FirstOfMonth returns midnight UTC of the first day of the calendar month t falls in.
// The year and month are read in t's own location.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Normalized returns a new goal without id whose months are moved to the first day of the month.
// The receiver is left untouched and the returned EndMonth never aliases the receiver's.
func (g Goal) Normalized() Goal {
	var endMonth *time.Time
	if g.EndMonth != nil {
		end := FirstOfMonth(*g.EndMonth)
		endMonth = &end
	}
	return Goal{
		Category:   g.Category,
		MonthLimit: g.MonthLimit,
		StartMonth: FirstOfMonth(g.StartMonth),
		EndMonth:   endMonth,
	}
}

// IsOpenEnded reports whether the goal has no last month.
func (g Goal) IsOpenEnded() bool {
	return g.EndMonth == nil
}

// Overlaps reports whether g is active at any month of the inclusive range [startMonth, endMonth].
// A nil endMonth, like a nil g.EndMonth, extends forever.
// Both repositories implement the same rule in SQL.
func (g Goal) Overlaps(startMonth time.Time, endMonth *time.Time) bool {
	if endMonth != nil && g.StartMonth.After(*endMonth) {
		return false
	}
	if !g.IsOpenEnded() && g.EndMonth.Before(startMonth) {
		return false
	}
	return true
}
