package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDailyLog_Defaults(t *testing.T) {
	l := NewDailyLog("2024-01-01", t0)

	require.Equal(t, "2024-01-01", l.Date())
	require.Len(t, l.Meals(), 4)
	for i, meal := range l.Meals() {
		require.Equal(t, MealTypes()[i], meal.Type)
		require.Empty(t, meal.Items)
	}
	require.Equal(t, DefaultNutritionGoals(), l.Goals())
	require.Nil(t, l.Bodyweight())
	require.True(t, l.Dirty())
}

func TestDailyLog_FoodItems(t *testing.T) {
	l := NewDailyLog("2024-01-01", t0)

	item := FoodItem{ID: "food-1", Name: "Oatmeal", Calories: 300, Protein: 10, Carbs: 54, Fat: 5}
	l.AddFoodItem(MealBreakfast, item, t0.Add(time.Minute))

	require.Len(t, l.Meals()[0].Items, 1)
	require.Equal(t, "Oatmeal", l.Meals()[0].Items[0].Name)

	// Removal from the wrong bucket is a no-op
	l.RemoveFoodItem(MealLunch, "food-1", t0)
	require.Len(t, l.Meals()[0].Items, 1)

	l.RemoveFoodItem(MealBreakfast, "food-1", t0.Add(2*time.Minute))
	require.Empty(t, l.Meals()[0].Items)
}

func TestDailyLog_Bodyweight(t *testing.T) {
	l := NewDailyLog("2024-01-01", t0)
	l.MarkSynced()
	require.False(t, l.Dirty())

	l.SetBodyweight(182.5, t0.Add(time.Minute))
	require.NotNil(t, l.Bodyweight())
	require.Equal(t, 182.5, *l.Bodyweight())
	require.True(t, l.Dirty(), "mutations re-dirty the record")
}

func TestWeekKey(t *testing.T) {
	// 2024-03-04 is a Monday; its week starts Sunday 2024-03-03.
	monday := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	require.Equal(t, "2024-03-03", WeekKey(monday))

	// A Sunday maps to itself.
	sunday := time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "2024-03-03", WeekKey(sunday))

	// A Saturday maps back to the preceding Sunday.
	saturday := time.Date(2024, 3, 9, 0, 1, 0, 0, time.UTC)
	require.Equal(t, "2024-03-03", WeekKey(saturday))
}

func TestSplitAssignment(t *testing.T) {
	a := NewSplitAssignment("2024-03-03", SplitUpperLower, nil, t0)

	require.Equal(t, "2024-03-03", a.WeekStart())
	require.Equal(t, SplitUpperLower, a.Split())
	require.Nil(t, a.CustomPlans())
	require.True(t, a.Dirty())

	a.MarkSynced()
	a.SetCustomPlans([]DayPlan{{Day: 1, Focus: "Upper", Exercises: []string{"Bench Press"}}}, t0.Add(time.Minute))
	require.Len(t, a.CustomPlans(), 1)
	require.True(t, a.Dirty())
}

func TestSplitType_IsValid(t *testing.T) {
	require.True(t, SplitPPL.IsValid())
	require.True(t, SplitUpperLower.IsValid())
	require.True(t, SplitFullBody.IsValid())
	require.False(t, SplitType("BroSplit").IsValid())
	require.False(t, SplitType("").IsValid())
}
