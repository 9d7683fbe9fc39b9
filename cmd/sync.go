package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	syncengine "github.com/fitna/fitna/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending changes to the remote store",
	Long: `Push locally modified records to the remote store now, instead of
waiting for the background daemon. Requires a configured remote and a
signed-in user.`,
	RunE: runSync,
}

var syncPull bool

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncPull, "pull", false,
		"also pull the remote copy before pushing")
}

func runSync(cmd *cobra.Command, _ []string) error {
	if !cfg.Auth.SignedIn() {
		return errors.New("not signed in; run 'fitna auth sign-in' first")
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
	if store == nil {
		return errors.New("no remote configured; set remote.dsn in the config file")
	}
	defer store.Close()

	if err := store.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}

	auth := sessionAuth()
	defer auth.Close()

	engine := syncengine.New(
		db.SessionRepository(), db.DailyLogRepository(), db.SplitRepository(),
		store, auth,
	)

	if syncPull {
		if err := engine.PullOnSignIn(cmd.Context(), cfg.Auth.UserID); err != nil {
			return fmt.Errorf("pulling remote data: %w", err)
		}
	}
	engine.PushPending(cmd.Context())

	fmt.Println("Sync complete")
	return nil
}
