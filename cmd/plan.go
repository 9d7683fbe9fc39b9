package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/workout/domain"
	"github.com/fitna/fitna/internal/workout/schedule"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "View and assign the weekly training split",
}

var planShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show the training plan for a week (defaults to this week)",
	Long: `Show the plan for the week containing the given date. When no split
was assigned for that week the most recent assignment within the last
year carries forward; failing that the PPL default applies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlanShow,
}

var planSetCmd = &cobra.Command{
	Use:   "set <split>",
	Short: "Assign a split to the current week",
	Long:  `Assign PPL, UpperLower, or FullBody to the week containing today.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanSet,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planShowCmd, planSetCmd)
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func loadScheduler() (*schedule.Scheduler, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return schedule.New(db.SplitRepository()), func() { db.Close() }, nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := loadScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	at := time.Now()
	if len(args) == 1 {
		parsed, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
		if err != nil {
			return fmt.Errorf("parsing date %q: %w", args[0], err)
		}
		at = parsed
	}

	res, err := sched.Resolve(cmd.Context(), at)
	if err != nil {
		return fmt.Errorf("resolving plan: %w", err)
	}

	header := fmt.Sprintf("Week of %s: %s", res.WeekStart, res.Split)
	if res.CarriedOver {
		header += " (carried over)"
	}
	fmt.Println(header)
	for _, day := range res.Plans {
		name := "?"
		if day.Day >= 1 && day.Day <= 7 {
			name = weekdayNames[day.Day-1]
		}
		if len(day.Exercises) == 0 {
			fmt.Printf("  %s  %s\n", name, day.Focus)
			continue
		}
		fmt.Printf("  %s  %-6s %s\n", name, day.Focus, strings.Join(day.Exercises, ", "))
	}
	return nil
}

func runPlanSet(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := loadScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	assignment, err := sched.Assign(cmd.Context(), time.Now(), domain.SplitType(args[0]), nil)
	if err != nil {
		return fmt.Errorf("assigning split: %w", err)
	}
	fmt.Printf("Assigned %s to week of %s\n", assignment.Split(), assignment.WeekStart())
	return nil
}
