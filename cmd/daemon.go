package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitna/fitna/internal/log"
	syncengine "github.com/fitna/fitna/internal/sync"
	"github.com/fitna/fitna/internal/tracing"
	"github.com/fitna/fitna/internal/watcher"
	"github.com/fitna/fitna/internal/workout/schedule"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync daemon",
	Long: `Watch the local database for changes and push them to the remote
store after a quiet window. Sign-in and sign-out events trigger a full
pull and a local wipe respectively.

Example:
  fitna daemon                 # Sync with the configured debounce
  fitna daemon --debounce 10   # Wait 10s of quiet before pushing`,
	RunE: runDaemon,
}

var daemonDebounce int

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().IntVar(&daemonDebounce, "debounce", 0,
		"seconds of quiet before a push (overrides config)")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
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
		return errors.New("no remote configured; the daemon has nothing to sync")
	}
	defer store.Close()

	provider, err := tracing.NewProvider(cfg.Tracing.ToTracing())
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	auth := sessionAuth()
	defer auth.Close()

	scheduler := schedule.New(db.SplitRepository())

	debounce := cfg.Sync.Debounce()
	if daemonDebounce > 0 {
		debounce = time.Duration(daemonDebounce) * time.Second
	}

	engine := syncengine.New(
		db.SessionRepository(), db.DailyLogRepository(), db.SplitRepository(),
		store, auth,
		syncengine.WithDebounce(debounce),
		syncengine.WithTracer(provider.Tracer()),
		syncengine.WithCacheFlusher(scheduler),
	)

	w, err := watcher.New(watcher.DefaultConfig(db.Path()))
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// External db writes nudge the engine the same way in-process ones do.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				engine.Notify()
			}
		}
	}()

	// With --debug, mirror log lines to the console while they stream to
	// the log file.
	if listener := log.NewListener(ctx); listener != nil {
		go func() {
			for {
				event, ok := listener.Next()
				if !ok {
					return
				}
				fmt.Print(event.Payload)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		engine.Run(ctx, auth.Subscribe(ctx))
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Daemon watching %s (debounce %s)\n", db.Path(), debounce)
	fmt.Println("Press Ctrl+C to stop")

	sig := <-sigCh
	fmt.Printf("\nReceived %s, shutting down...\n", sig)
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn(log.CatSync, "Engine did not stop within shutdown window")
	}

	if err := w.Stop(); err != nil {
		log.ErrorErr(log.CatWatch, "Error stopping watcher", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := provider.Shutdown(shutdownCtx); err != nil {
		log.ErrorErr(log.CatSync, "Error flushing traces", err)
	}

	fmt.Println("Daemon stopped")
	return nil
}
