package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/workout/domain"
	"github.com/fitna/fitna/internal/workout/tracker"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage workout sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a workout session",
	Long: `Start a new workout session. Any session left running is completed
first; only one session can be live at a time.

A start time on an earlier calendar day records a finished back-dated
session instead of starting the clock.`,
	RunE: runSessionStart,
}

var sessionPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session",
	RunE:  runSessionPause,
}

var sessionResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused session",
	RunE:  runSessionResume,
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Finish the running session",
	RunE:  runSessionEnd,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the running session",
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <session-id>",
	Short: "Edit a recorded session's times or name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionEdit,
}

var (
	sessionName     string
	sessionAt       string
	sessionEditName string
	sessionStart    string
	sessionEnd      string
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionPauseCmd, sessionResumeCmd,
		sessionEndCmd, sessionShowCmd, sessionDeleteCmd, sessionEditCmd)

	sessionStartCmd.Flags().StringVarP(&sessionName, "name", "n", "Workout",
		"session name")
	sessionStartCmd.Flags().StringVar(&sessionAt, "at", "",
		"start time (RFC3339 or \"2006-01-02 15:04\"); earlier days are recorded as completed")

	sessionEditCmd.Flags().StringVar(&sessionStart, "start", "", "new start time")
	sessionEditCmd.Flags().StringVar(&sessionEnd, "end", "", "new end time")
	sessionEditCmd.Flags().StringVarP(&sessionEditName, "name", "n", "", "new name")
}

// parseTimeFlag accepts RFC3339 or a local "2006-01-02 15:04" stamp.
func parseTimeFlag(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q (want RFC3339 or \"2006-01-02 15:04\")", value)
	}
	return t, nil
}

// loadTracker opens the database and builds a tracker with the remote
// configured for deletes when available.
func loadTracker(cmd *cobra.Command) (*tracker.Tracker, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	opts := []tracker.Option{}
	store, err := openRemote(cmd.Context())
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	cleanup := func() { db.Close() }
	if store != nil {
		opts = append(opts, tracker.WithRemote(store))
		cleanup = func() {
			store.Close()
			db.Close()
		}
	}

	return tracker.New(db.SessionRepository(), opts...), cleanup, nil
}

func runSessionStart(cmd *cobra.Command, _ []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var startOverride *time.Time
	if sessionAt != "" {
		at, err := parseTimeFlag(sessionAt)
		if err != nil {
			return err
		}
		startOverride = &at
	}

	session, err := trk.StartSession(currentUserID(), sessionName, startOverride, nil)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	if session.IsCompleted() {
		fmt.Printf("Recorded back-dated session %q (%s)\n", session.Name(), session.ID())
		return nil
	}
	fmt.Printf("Started session %q (%s)\n", session.Name(), session.ID())
	return nil
}

func runSessionPause(cmd *cobra.Command, _ []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}
	if err := trk.Pause(); err != nil {
		return fmt.Errorf("pausing session: %w", err)
	}
	fmt.Println("Session paused")
	return nil
}

func runSessionResume(cmd *cobra.Command, _ []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}
	if err := trk.Resume(); err != nil {
		return fmt.Errorf("resuming session: %w", err)
	}
	fmt.Println("Session resumed")
	return nil
}

func runSessionEnd(cmd *cobra.Command, _ []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := restoreActive(trk); err != nil {
		return err
	}
	session, err := trk.EndSession()
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}

	now := time.Now()
	fmt.Printf("Finished %q: %s active", session.Name(), formatDuration(session.ActiveElapsed(now)))
	if paused := session.TotalPaused(); paused > 0 {
		fmt.Printf(" (%s paused)", formatDuration(paused))
	}
	fmt.Println()
	return nil
}

func runSessionShow(cmd *cobra.Command, _ []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	session, err := trk.LoadActive()
	if err != nil {
		var noActive *domain.NoActiveSessionError
		if errors.As(err, &noActive) {
			fmt.Println("No session running")
			return nil
		}
		return err
	}

	now := time.Now()
	state := "running"
	if session.IsPaused() {
		state = "paused"
	}
	fmt.Printf("%s (%s)\n", session.Name(), state)
	fmt.Printf("  started  %s\n", session.StartTime().Local().Format("2006-01-02 15:04"))
	fmt.Printf("  active   %s\n", formatDuration(session.ActiveElapsed(now)))
	if paused := session.TotalPaused(); paused > 0 {
		fmt.Printf("  paused   %s\n", formatDuration(paused))
	}
	for _, a := range session.Activities() {
		fmt.Printf("  - %s (%s)\n", a.Name, a.Type)
	}
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := trk.DeleteSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}

func runSessionEdit(cmd *cobra.Command, args []string) error {
	trk, cleanup, err := loadTracker(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := trk.Restore(args[0]); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if sessionEditName != "" {
		if err := trk.Rename(sessionEditName); err != nil {
			return err
		}
	}
	if sessionStart != "" {
		start, err := parseTimeFlag(sessionStart)
		if err != nil {
			return err
		}
		if err := trk.UpdateStartTime(start); err != nil {
			return err
		}
	}
	if sessionEnd != "" {
		end, err := parseTimeFlag(sessionEnd)
		if err != nil {
			return err
		}
		if err := trk.UpdateEndTime(end); err != nil {
			return err
		}
	}

	fmt.Printf("Updated session %s\n", args[0])
	return nil
}

// restoreActive puts the persisted open session into the live slot, so
// pause/resume/end work across process restarts.
func restoreActive(trk *tracker.Tracker) error {
	if _, err := trk.LoadActive(); err != nil {
		var noActive *domain.NoActiveSessionError
		if errors.As(err, &noActive) {
			return errors.New("no session running")
		}
		return err
	}
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
