package domain

import "time"

// SplitType enumerates the supported weekly training splits.
type SplitType string

const (
	SplitPPL        SplitType = "PPL"
	SplitUpperLower SplitType = "UpperLower"
	SplitFullBody   SplitType = "FullBody"
)

// IsValid returns true if the split is a recognized split type.
func (s SplitType) IsValid() bool {
	switch s {
	case SplitPPL, SplitUpperLower, SplitFullBody:
		return true
	default:
		return false
	}
}

// DayPlan describes one training day within a week.
type DayPlan struct {
	Day       int      `json:"day"` // 1-7
	Focus     string   `json:"focus"`
	Exercises []string `json:"exercises"`
}

// SplitAssignment pins a split to a calendar week, keyed by the Sunday date
// of that week (YYYY-MM-DD). CustomPlans, when present, override the
// generated default week for the split.
type SplitAssignment struct {
	weekStart   string
	split       SplitType
	customPlans []DayPlan
	dirty       bool
	updatedAt   time.Time
}

// NewSplitAssignment creates an assignment for the week starting weekStart.
func NewSplitAssignment(weekStart string, split SplitType, customPlans []DayPlan, now time.Time) *SplitAssignment {
	return &SplitAssignment{
		weekStart:   weekStart,
		split:       split,
		customPlans: customPlans,
		dirty:       true,
		updatedAt:   now,
	}
}

// ReconstituteSplitAssignment creates a SplitAssignment from existing data.
func ReconstituteSplitAssignment(weekStart string, split SplitType, customPlans []DayPlan, dirty bool, updatedAt time.Time) *SplitAssignment {
	return &SplitAssignment{
		weekStart:   weekStart,
		split:       split,
		customPlans: customPlans,
		dirty:       dirty,
		updatedAt:   updatedAt,
	}
}

// WeekStart returns the Sunday date key of the assigned week.
func (a *SplitAssignment) WeekStart() string { return a.weekStart }

// Split returns the assigned split type.
func (a *SplitAssignment) Split() SplitType { return a.split }

// CustomPlans returns the custom day plans, or nil when the generated
// default week applies.
func (a *SplitAssignment) CustomPlans() []DayPlan { return a.customPlans }

// Dirty reports whether the remote store has yet to accept this record.
func (a *SplitAssignment) Dirty() bool { return a.dirty }

// UpdatedAt returns when this assignment was last mutated.
func (a *SplitAssignment) UpdatedAt() time.Time { return a.updatedAt }

// SetCustomPlans replaces the custom day plans.
func (a *SplitAssignment) SetCustomPlans(plans []DayPlan, now time.Time) {
	a.customPlans = plans
	a.dirty = true
	a.updatedAt = now
}

// MarkSynced clears the dirty flag after a confirmed remote accept.
func (a *SplitAssignment) MarkSynced() { a.dirty = false }

// WeekStartDate returns the Sunday (start of week) of the calendar week
// containing t, truncated to midnight in t's location.
func WeekStartDate(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekKey formats the Sunday of the week containing t as the YYYY-MM-DD
// storage key used by split assignments.
func WeekKey(t time.Time) string {
	return WeekStartDate(t).Format("2006-01-02")
}
