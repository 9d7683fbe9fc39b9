package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fitna/fitna/internal/config"
	"github.com/fitna/fitna/internal/infrastructure/sqlite"
	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/remote"
)

// anonymousUser owns local records until the user signs in.
const anonymousUser = "local"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fitna",
	Short: "An offline-first workout and nutrition logger",
	Long: `Track workout sessions, daily nutrition, and weekly training splits.
All data lives in a local database; when a remote store is configured and
you are signed in, changes sync in the background.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/fitna/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging")
	rootCmd.PersistentFlags().String("data-dir", "",
		"directory holding the local database")

	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("data_dir", defaults.DataDir)
	viper.SetDefault("auto_sync", defaults.AutoSync)
	viper.SetDefault("sync.debounce_seconds", defaults.Sync.DebounceSeconds)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .fitna/config.yaml (current directory)
		// 2. ~/.config/fitna/config.yaml (user config)
		if _, err := os.Stat(".fitna/config.yaml"); err == nil {
			viper.SetConfigFile(".fitna/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "fitna"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := config.DefaultConfigPath()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults
		}
	}

	_ = viper.Unmarshal(&cfg)

	if debugFlag || os.Getenv("FITNA_DEBUG") != "" {
		logPath := os.Getenv("FITNA_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		if _, err := log.Init(logPath); err == nil {
			log.SetEnabled(true)
		}
	}
}

// configFilePath returns the config file in use, for write-back commands.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

// openDB validates config and opens the local database, creating the data
// directory on first run.
func openDB() (*sqlite.DB, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sqlite.NewDB(filepath.Join(dataDir, config.DBFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// openRemote connects to the configured remote store. Returns nil without
// error when no DSN is configured; callers treat that as offline.
func openRemote(ctx context.Context) (*remote.Postgres, error) {
	if cfg.Remote.DSN == "" {
		return nil, nil
	}
	store, err := remote.NewPostgres(ctx, cfg.Remote.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to remote store: %w", err)
	}
	return store, nil
}

// sessionAuth builds an auth provider seeded from the persisted sign-in state.
func sessionAuth() *remote.SessionAuth {
	auth := remote.NewSessionAuth()
	if cfg.Auth.SignedIn() {
		auth.SignIn(cfg.Auth.UserID)
	}
	return auth
}

// currentUserID returns the signed-in user id, or the anonymous local owner.
func currentUserID() string {
	if cfg.Auth.SignedIn() {
		return cfg.Auth.UserID
	}
	return anonymousUser
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
