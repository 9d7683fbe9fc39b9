package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/workout/domain"
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise to the running session",
	Args:  cobra.ExactArgs(1),
	RunE:  runExerciseAdd,
}

var exerciseRemoveCmd = &cobra.Command{
	Use:   "remove <exercise-id>",
	Short: "Remove an exercise from the running session",
	Args:  cobra.ExactArgs(1),
	RunE:  runExerciseRemove,
}

var exerciseSetCmd = &cobra.Command{
	Use:   "set <exercise-id>",
	Short: "Log a set against a weightlifting exercise",
	Args:  cobra.ExactArgs(1),
	RunE:  runExerciseSet,
}

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercises in the running session",
}

var (
	exerciseType     string
	exerciseSets     int
	exerciseReps     int
	exerciseWeight   float64
	exerciseDuration int
	exerciseDistance float64
	exerciseFlow     string
	setWeight        float64
	setReps          int
	setWarmup        bool
)

func init() {
	sessionCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseRemoveCmd, exerciseSetCmd)

	exerciseAddCmd.Flags().StringVarP(&exerciseType, "type", "t", "weightlifting",
		"exercise type: weightlifting, cardio, or mobility")
	exerciseAddCmd.Flags().IntVar(&exerciseSets, "sets", 3, "number of sets (weightlifting)")
	exerciseAddCmd.Flags().IntVar(&exerciseReps, "reps", 8, "reps per set (weightlifting)")
	exerciseAddCmd.Flags().Float64Var(&exerciseWeight, "weight", 0, "weight per set (weightlifting)")
	exerciseAddCmd.Flags().IntVar(&exerciseDuration, "duration", 0, "duration in seconds (cardio, mobility)")
	exerciseAddCmd.Flags().Float64Var(&exerciseDistance, "distance", 0, "distance (cardio)")
	exerciseAddCmd.Flags().StringVar(&exerciseFlow, "flow", "", "flow type (mobility)")

	exerciseSetCmd.Flags().Float64Var(&setWeight, "weight", 0, "weight lifted")
	exerciseSetCmd.Flags().IntVar(&setReps, "reps", 0, "reps completed")
	exerciseSetCmd.Flags().BoolVar(&setWarmup, "warmup", false, "mark as a warmup set")
}

func runExerciseAdd(cmd *cobra.Command, args []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}

	name := args[0]
	id := uuid.NewString()

	var activity domain.Activity
	switch exerciseType {
	case "weightlifting":
		sets := make([]domain.Set, 0, exerciseSets)
		for i := 0; i < exerciseSets; i++ {
			sets = append(sets, domain.Set{
				ID:     uuid.NewString(),
				Weight: exerciseWeight,
				Reps:   exerciseReps,
			})
		}
		activity = domain.NewWeightliftingActivity(id, name, sets)
	case "cardio":
		activity = domain.NewCardioActivity(id, name, exerciseDuration, exerciseDistance)
	case "mobility":
		activity = domain.NewMobilityActivity(id, name, exerciseDuration, exerciseFlow)
	default:
		return fmt.Errorf("unknown exercise type %q (want weightlifting, cardio, or mobility)", exerciseType)
	}

	if err := trk.AddActivity(activity); err != nil {
		return fmt.Errorf("adding exercise: %w", err)
	}
	fmt.Printf("Added %s %q (%s)\n", exerciseType, name, id)
	return nil
}

func runExerciseSet(cmd *cobra.Command, args []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}

	activity := trk.Current().FindActivity(args[0])
	if activity == nil {
		return fmt.Errorf("no exercise %s in the running session", args[0])
	}

	activity.AddSet(domain.Set{
		ID:       uuid.NewString(),
		Weight:   setWeight,
		Reps:     setReps,
		IsWarmup: setWarmup,
	})
	if err := trk.UpdateActivity(*activity); err != nil {
		return fmt.Errorf("logging set: %w", err)
	}
	fmt.Printf("Logged %g x %d on %s\n", setWeight, setReps, activity.Name)
	return nil
}

func runExerciseRemove(cmd *cobra.Command, args []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}
	if err := trk.RemoveActivity(args[0]); err != nil {
		return fmt.Errorf("removing exercise: %w", err)
	}
	fmt.Printf("Removed exercise %s\n", args[0])
	return nil
}
