package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/remote"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your remote profile",
	Long: `Save name, onboarding state, and lifting baselines to the remote
store. Unlike workout data, profile saves go to the remote immediately
and fail loudly when it is unreachable.`,
	RunE: runProfile,
}

var (
	profileName       string
	profileOnboarded  bool
	profileSquat      float64
	profileBench      float64
	profileDeadlift   float64
	profileBodyweight float64
)

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringVar(&profileName, "name", "", "full name")
	profileCmd.Flags().BoolVar(&profileOnboarded, "onboarded", true, "onboarding complete")
	profileCmd.Flags().Float64Var(&profileSquat, "squat", 0, "squat 1RM")
	profileCmd.Flags().Float64Var(&profileBench, "bench", 0, "bench 1RM")
	profileCmd.Flags().Float64Var(&profileDeadlift, "deadlift", 0, "deadlift 1RM")
	profileCmd.Flags().Float64Var(&profileBodyweight, "bodyweight", 0, "bodyweight")
}

func runProfile(cmd *cobra.Command, _ []string) error {
	if !cfg.Auth.SignedIn() {
		return errors.New("not signed in; run 'fitna auth sign-in' first")
	}

	store, err := openRemote(cmd.Context())
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no remote configured; set remote.dsn in the config file")
	}
	defer store.Close()

	profile := remote.UserProfile{
		ID:        cfg.Auth.UserID,
		Email:     cfg.Auth.Email,
		FullName:  profileName,
		Onboarded: profileOnboarded,
		UpdatedAt: time.Now(),
	}
	if profileSquat > 0 {
		profile.SquatMax = &profileSquat
	}
	if profileBench > 0 {
		profile.BenchMax = &profileBench
	}
	if profileDeadlift > 0 {
		profile.DeadliftMax = &profileDeadlift
	}
	if profileBodyweight > 0 {
		profile.Bodyweight = &profileBodyweight
	}

	if err := store.SaveProfile(cmd.Context(), profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	fmt.Println("Profile saved")
	return nil
}
