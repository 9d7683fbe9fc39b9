package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions, newest first",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum sessions to show")
}

func runHistory(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := db.SessionRepository().ListAll()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	now := time.Now()
	shown := 0
	for _, s := range sessions {
		if historyLimit > 0 && shown >= historyLimit {
			break
		}
		state := "done"
		if !s.IsCompleted() {
			state = "open"
			if s.IsPaused() {
				state = "paused"
			}
		}
		fmt.Printf("%s  %-6s %-20s %-8s %d exercises  %s\n",
			s.StartTime().Local().Format("2006-01-02 15:04"),
			state,
			s.Name(),
			formatDuration(s.ActiveElapsed(now)),
			len(s.Activities()),
			s.ID(),
		)
		shown++
	}
	return nil
}
