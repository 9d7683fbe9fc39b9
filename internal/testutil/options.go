package testutil

import (
	"time"

	"github.com/fitna/fitna/internal/workout/domain"
)

// sessionData holds all fields for a session fixture.
type sessionData struct {
	id          string
	userID      string
	name        string
	startTime   time.Time
	endTime     *time.Time
	activities  []domain.Activity
	status      domain.SessionStatus
	pausedAt    *time.Time
	totalPaused time.Duration
	dirty       bool
	updatedAt   time.Time
}

func defaultSession(id string) sessionData {
	return sessionData{
		id:        id,
		userID:    "test-user",
		name:      "Workout",
		startTime: FixedTime,
		status:    domain.SessionStatusActive,
		dirty:     true,
		updatedAt: FixedTime,
	}
}

// SessionOption configures a session fixture.
type SessionOption func(*sessionData)

// Named sets the session name.
func Named(name string) SessionOption {
	return func(d *sessionData) { d.name = name }
}

// ForUser sets the owning user id.
func ForUser(userID string) SessionOption {
	return func(d *sessionData) { d.userID = userID }
}

// StartedAt sets the session start time.
func StartedAt(t time.Time) SessionOption {
	return func(d *sessionData) {
		d.startTime = t
		d.updatedAt = t
	}
}

// EndedAt marks the session completed at the given time.
func EndedAt(t time.Time) SessionOption {
	return func(d *sessionData) {
		d.endTime = &t
		d.updatedAt = t
	}
}

// PausedAt marks the session paused with the given stamp.
func PausedAt(t time.Time) SessionOption {
	return func(d *sessionData) {
		d.status = domain.SessionStatusPaused
		d.pausedAt = &t
	}
}

// TotalPaused sets the accumulated pause duration.
func TotalPaused(dur time.Duration) SessionOption {
	return func(d *sessionData) { d.totalPaused = dur }
}

// WithActivity appends an activity to the session.
func WithActivity(a domain.Activity) SessionOption {
	return func(d *sessionData) { d.activities = append(d.activities, a) }
}

// Clean clears the session's dirty flag.
func Clean() SessionOption {
	return func(d *sessionData) { d.dirty = false }
}

// logData holds all fields for a daily log fixture.
type logData struct {
	date       string
	meals      []domain.Meal
	bodyweight *float64
	goals      domain.NutritionGoals
	dirty      bool
	updatedAt  time.Time
}

func defaultLog(date string) logData {
	meals := make([]domain.Meal, 0, 4)
	for _, mt := range domain.MealTypes() {
		meals = append(meals, domain.Meal{Type: mt, Items: []domain.FoodItem{}})
	}
	return logData{
		date:      date,
		meals:     meals,
		goals:     domain.DefaultNutritionGoals(),
		dirty:     true,
		updatedAt: FixedTime,
	}
}

// LogOption configures a daily log fixture.
type LogOption func(*logData)

// Bodyweight sets the recorded bodyweight.
func Bodyweight(weight float64) LogOption {
	return func(d *logData) { d.bodyweight = &weight }
}

// Food appends a food item to the given meal bucket.
func Food(meal domain.MealType, item domain.FoodItem) LogOption {
	return func(d *logData) {
		for i := range d.meals {
			if d.meals[i].Type == meal {
				d.meals[i].Items = append(d.meals[i].Items, item)
				return
			}
		}
	}
}

// Goals overrides the nutrition goals.
func Goals(goals domain.NutritionGoals) LogOption {
	return func(d *logData) { d.goals = goals }
}

// CleanLog clears the log's dirty flag.
func CleanLog() LogOption {
	return func(d *logData) { d.dirty = false }
}

// splitData holds all fields for a split assignment fixture.
type splitData struct {
	weekStart   string
	split       domain.SplitType
	customPlans []domain.DayPlan
	dirty       bool
	updatedAt   time.Time
}

func defaultSplit(weekStart string) splitData {
	return splitData{
		weekStart: weekStart,
		split:     domain.SplitPPL,
		dirty:     true,
		updatedAt: FixedTime,
	}
}

// SplitOption configures a split assignment fixture.
type SplitOption func(*splitData)

// OfType sets the split type.
func OfType(split domain.SplitType) SplitOption {
	return func(d *splitData) { d.split = split }
}

// Plans sets custom day plans.
func Plans(plans []domain.DayPlan) SplitOption {
	return func(d *splitData) { d.customPlans = plans }
}

// CleanSplit clears the assignment's dirty flag.
func CleanSplit() SplitOption {
	return func(d *splitData) { d.dirty = false }
}
