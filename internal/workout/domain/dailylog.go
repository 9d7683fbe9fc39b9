package domain

import "time"

// MealType identifies one of the four fixed meal buckets.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnacks    MealType = "Snacks"
)

// MealTypes lists the buckets in display order.
func MealTypes() []MealType {
	return []MealType{MealBreakfast, MealLunch, MealDinner, MealSnacks}
}

// FoodItem is a single logged food entry.
type FoodItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Meal is an ordered list of food items within one bucket.
type Meal struct {
	Type  MealType   `json:"type"`
	Items []FoodItem `json:"items"`
}

// NutritionGoals are the daily macro targets attached to a log.
type NutritionGoals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DefaultNutritionGoals returns the baseline targets materialized when a log
// is first created for a date.
func DefaultNutritionGoals() NutritionGoals {
	return NutritionGoals{Calories: 2500, Protein: 180, Carbs: 300, Fat: 65}
}

// DailyLog is the nutrition and bodyweight record for one calendar date.
// The date string (YYYY-MM-DD) is the natural primary key; one log per date,
// last write overwrites.
type DailyLog struct {
	date       string
	meals      []Meal
	bodyweight *float64
	goals      NutritionGoals
	dirty      bool
	updatedAt  time.Time
}

// NewDailyLog creates a blank log for the date with the four empty meal
// buckets and default goals.
func NewDailyLog(date string, now time.Time) *DailyLog {
	meals := make([]Meal, 0, 4)
	for _, t := range MealTypes() {
		meals = append(meals, Meal{Type: t, Items: []FoodItem{}})
	}
	return &DailyLog{
		date:      date,
		meals:     meals,
		goals:     DefaultNutritionGoals(),
		dirty:     true,
		updatedAt: now,
	}
}

// ReconstituteDailyLog creates a DailyLog from existing data.
func ReconstituteDailyLog(date string, meals []Meal, bodyweight *float64, goals NutritionGoals, dirty bool, updatedAt time.Time) *DailyLog {
	return &DailyLog{
		date:       date,
		meals:      meals,
		bodyweight: bodyweight,
		goals:      goals,
		dirty:      dirty,
		updatedAt:  updatedAt,
	}
}

// Date returns the YYYY-MM-DD key.
func (l *DailyLog) Date() string { return l.date }

// Meals returns the ordered meal buckets.
func (l *DailyLog) Meals() []Meal { return l.meals }

// Bodyweight returns the optional bodyweight sample.
func (l *DailyLog) Bodyweight() *float64 { return l.bodyweight }

// Goals returns the daily macro targets.
func (l *DailyLog) Goals() NutritionGoals { return l.goals }

// Dirty reports whether the remote store has yet to accept this record.
func (l *DailyLog) Dirty() bool { return l.dirty }

// UpdatedAt returns when this log was last mutated.
func (l *DailyLog) UpdatedAt() time.Time { return l.updatedAt }

// AddFoodItem appends an item to the given meal bucket.
func (l *DailyLog) AddFoodItem(meal MealType, item FoodItem, now time.Time) {
	for i := range l.meals {
		if l.meals[i].Type == meal {
			l.meals[i].Items = append(l.meals[i].Items, item)
			l.touch(now)
			return
		}
	}
}

// RemoveFoodItem removes the item with the given id from the meal bucket.
// Removing a nonexistent id is a no-op.
func (l *DailyLog) RemoveFoodItem(meal MealType, itemID string, now time.Time) {
	for i := range l.meals {
		if l.meals[i].Type != meal {
			continue
		}
		kept := l.meals[i].Items[:0]
		for _, item := range l.meals[i].Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(l.meals[i].Items) {
			return
		}
		l.meals[i].Items = kept
		l.touch(now)
		return
	}
}

// SetBodyweight records a bodyweight sample for the date.
func (l *DailyLog) SetBodyweight(weight float64, now time.Time) {
	w := weight
	l.bodyweight = &w
	l.touch(now)
}

// SetGoals replaces the daily macro targets.
func (l *DailyLog) SetGoals(goals NutritionGoals, now time.Time) {
	l.goals = goals
	l.touch(now)
}

// MarkSynced clears the dirty flag after a confirmed remote accept.
func (l *DailyLog) MarkSynced() { l.dirty = false }

func (l *DailyLog) touch(now time.Time) {
	l.updatedAt = now
	l.dirty = true
}
