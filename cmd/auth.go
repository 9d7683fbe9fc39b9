package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/config"
	syncengine "github.com/fitna/fitna/internal/sync"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage sign-in state",
}

var authSignInCmd = &cobra.Command{
	Use:   "sign-in",
	Short: "Sign in and sync with the remote store",
	Long: `Persist the user identity, pull the remote copy of your data into
the local store, and push anything recorded while signed out.`,
	RunE: runAuthSignIn,
}

var authSignOutCmd = &cobra.Command{
	Use:   "sign-out",
	Short: "Sign out and clear local data",
	Long: `Remove the persisted identity and wipe the local store. Unsynced
changes are pushed first when the remote is reachable.`,
	RunE: runAuthSignOut,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sign-in state",
	RunE:  runAuthStatus,
}

var (
	authUserID string
	authEmail  string
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSignInCmd, authSignOutCmd, authStatusCmd)

	authSignInCmd.Flags().StringVarP(&authUserID, "user", "u", "", "user id (required)")
	authSignInCmd.Flags().StringVarP(&authEmail, "email", "e", "", "email address")
	_ = authSignInCmd.MarkFlagRequired("user")
}

func runAuthSignIn(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.SaveAuth(configFilePath(), config.AuthConfig{
		UserID: authUserID,
		Email:  authEmail,
	}); err != nil {
		return fmt.Errorf("persisting sign-in: %w", err)
	}

	store, err := openRemote(cmd.Context())
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Printf("Signed in as %s (no remote configured, staying local)\n", authUserID)
		return nil
	}
	defer store.Close()

	auth := sessionAuth()
	auth.SignIn(authUserID)
	defer auth.Close()

	engine := syncengine.New(
		db.SessionRepository(), db.DailyLogRepository(), db.SplitRepository(),
		store, auth,
	)
	if err := engine.PullOnSignIn(cmd.Context(), authUserID); err != nil {
		return fmt.Errorf("pulling remote data: %w", err)
	}
	engine.PushPending(cmd.Context())

	fmt.Printf("Signed in as %s\n", authUserID)
	return nil
}

func runAuthSignOut(cmd *cobra.Command, _ []string) error {
	if !cfg.Auth.SignedIn() {
		return errors.New("not signed in")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := openRemote(cmd.Context())
	if err != nil {
		return err
	}
	auth := sessionAuth()
	defer auth.Close()

	engine := syncengine.New(
		db.SessionRepository(), db.DailyLogRepository(), db.SplitRepository(),
		store, auth,
	)

	// Last chance for unsynced work; silent no-op when unreachable.
	if store != nil {
		engine.PushPending(cmd.Context())
		defer store.Close()
	}

	if err := config.ClearAuth(configFilePath()); err != nil {
		return fmt.Errorf("clearing sign-in: %w", err)
	}
	if err := engine.ClearAllLocalData(cmd.Context()); err != nil {
		return fmt.Errorf("clearing local data: %w", err)
	}

	fmt.Println("Signed out, local data cleared")
	return nil
}

func runAuthStatus(_ *cobra.Command, _ []string) error {
	if !cfg.Auth.SignedIn() {
		fmt.Println("Signed out (data stays local)")
		return nil
	}
	if cfg.Auth.Email != "" {
		fmt.Printf("Signed in as %s <%s>\n", cfg.Auth.UserID, cfg.Auth.Email)
		return nil
	}
	fmt.Printf("Signed in as %s\n", cfg.Auth.UserID)
	return nil
}
