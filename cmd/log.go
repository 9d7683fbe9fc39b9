package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/workout/domain"
	"github.com/fitna/fitna/internal/workout/logbook"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Track daily nutrition and bodyweight",
}

var logShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the daily log (defaults to today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogShow,
}

var logFoodCmd = &cobra.Command{
	Use:   "food <name>",
	Short: "Add a food item to a meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogFood,
}

var logRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a food item from a meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogRemove,
}

var logWeightCmd = &cobra.Command{
	Use:   "weight <kg>",
	Short: "Record bodyweight for a date",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogWeight,
}

var logGoalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Set nutrition goals for a date",
	RunE:  runLogGoals,
}

var (
	logDate      string
	logMeal      string
	logCalories  float64
	logProtein   float64
	logCarbs     float64
	logFat       float64
	goalCalories float64
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64
)

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logShowCmd, logFoodCmd, logRemoveCmd, logWeightCmd, logGoalsCmd)

	logCmd.PersistentFlags().StringVarP(&logDate, "date", "d", "",
		"date in YYYY-MM-DD form (default: today)")

	logFoodCmd.Flags().StringVarP(&logMeal, "meal", "m", string(domain.MealSnacks),
		"meal bucket: Breakfast, Lunch, Dinner, or Snacks")
	logFoodCmd.Flags().Float64Var(&logCalories, "calories", 0, "calories")
	logFoodCmd.Flags().Float64Var(&logProtein, "protein", 0, "protein grams")
	logFoodCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "carb grams")
	logFoodCmd.Flags().Float64Var(&logFat, "fat", 0, "fat grams")

	logRemoveCmd.Flags().StringVarP(&logMeal, "meal", "m", string(domain.MealSnacks),
		"meal bucket the item lives in")

	defaults := domain.DefaultNutritionGoals()
	logGoalsCmd.Flags().Float64Var(&goalCalories, "calories", defaults.Calories, "calorie target")
	logGoalsCmd.Flags().Float64Var(&goalProtein, "protein", defaults.Protein, "protein target")
	logGoalsCmd.Flags().Float64Var(&goalCarbs, "carbs", defaults.Carbs, "carb target")
	logGoalsCmd.Flags().Float64Var(&goalFat, "fat", defaults.Fat, "fat target")
}

// resolveDate returns the --date flag or today's local calendar day.
func resolveDate() string {
	if logDate != "" {
		return logDate
	}
	return time.Now().Format("2006-01-02")
}

// parseMeal validates a meal bucket name.
func parseMeal(value string) (domain.MealType, error) {
	for _, m := range domain.MealTypes() {
		if string(m) == value {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal %q (want Breakfast, Lunch, Dinner, or Snacks)", value)
}

func loadLogbook() (*logbook.Logbook, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return logbook.New(db.DailyLogRepository()), func() { db.Close() }, nil
}

func runLogShow(_ *cobra.Command, args []string) error {
	book, cleanup, err := loadLogbook()
	if err != nil {
		return err
	}
	defer cleanup()

	date := resolveDate()
	if len(args) == 1 {
		date = args[0]
	}

	dayLog, err := book.Get(date)
	if err != nil {
		return err
	}

	fmt.Println(dayLog.Date())
	var total domain.NutritionGoals
	for _, meal := range dayLog.Meals() {
		fmt.Printf("  %s\n", meal.Type)
		for _, item := range meal.Items {
			fmt.Printf("    %-24s %5.0f kcal  %4.0fp %4.0fc %4.0ff  (%s)\n",
				item.Name, item.Calories, item.Protein, item.Carbs, item.Fat, item.ID)
			total.Calories += item.Calories
			total.Protein += item.Protein
			total.Carbs += item.Carbs
			total.Fat += item.Fat
		}
	}
	goals := dayLog.Goals()
	fmt.Printf("  total %.0f/%.0f kcal  %.0f/%.0fp  %.0f/%.0fc  %.0f/%.0ff\n",
		total.Calories, goals.Calories, total.Protein, goals.Protein,
		total.Carbs, goals.Carbs, total.Fat, goals.Fat)
	if weight := dayLog.Bodyweight(); weight != nil {
		fmt.Printf("  bodyweight %.1f\n", *weight)
	}
	return nil
}

func runLogFood(_ *cobra.Command, args []string) error {
	book, cleanup, err := loadLogbook()
	if err != nil {
		return err
	}
	defer cleanup()

	meal, err := parseMeal(logMeal)
	if err != nil {
		return err
	}

	item, err := book.AddFood(resolveDate(), meal, domain.FoodItem{
		Name:     args[0],
		Calories: logCalories,
		Protein:  logProtein,
		Carbs:    logCarbs,
		Fat:      logFat,
	})
	if err != nil {
		return fmt.Errorf("adding food: %w", err)
	}
	fmt.Printf("Logged %q to %s (%s)\n", item.Name, meal, item.ID)
	return nil
}

func runLogRemove(_ *cobra.Command, args []string) error {
	book, cleanup, err := loadLogbook()
	if err != nil {
		return err
	}
	defer cleanup()

	meal, err := parseMeal(logMeal)
	if err != nil {
		return err
	}
	if err := book.RemoveFood(resolveDate(), meal, args[0]); err != nil {
		return fmt.Errorf("removing food: %w", err)
	}
	fmt.Printf("Removed item %s from %s\n", args[0], meal)
	return nil
}

func runLogWeight(_ *cobra.Command, args []string) error {
	book, cleanup, err := loadLogbook()
	if err != nil {
		return err
	}
	defer cleanup()

	weight, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parsing weight %q: %w", args[0], err)
	}
	if err := book.SetBodyweight(resolveDate(), weight); err != nil {
		return fmt.Errorf("recording bodyweight: %w", err)
	}
	fmt.Printf("Recorded bodyweight %.1f for %s\n", weight, resolveDate())
	return nil
}

func runLogGoals(_ *cobra.Command, _ []string) error {
	book, cleanup, err := loadLogbook()
	if err != nil {
		return err
	}
	defer cleanup()

	goals := domain.NutritionGoals{
		Calories: goalCalories,
		Protein:  goalProtein,
		Carbs:    goalCarbs,
		Fat:      goalFat,
	}
	if err := book.SetGoals(resolveDate(), goals); err != nil {
		return fmt.Errorf("setting goals: %w", err)
	}
	fmt.Printf("Goals for %s: %.0f kcal, %.0fp, %.0fc, %.0ff\n",
		resolveDate(), goals.Calories, goals.Protein, goals.Carbs, goals.Fat)
	return nil
}
