package main

import (
	"fmt"
	"os"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal"
	"github.com/AIR-DISCOVER/ExpertDrivingDataset/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

// env is shared by every subcommand once the root pre-run has loaded it
type env struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *internal.Logger
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "edd",
		Short: "Expert Driving Dataset analysis toolkit",
		Long: `Segment-resample physiological signals, compare expert and novice
drivers, and derive secondary channels from raw recordings.

Configuration is read from ./config/config.yaml (or --config) and EDD_*
environment variables; a .env file in the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				e.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Override log.level (ERROR, WARN, INFO, DEBUG, TRACE)")

	rootCmd.AddCommand(
		newSegmentCmd(e),
		newCompareCmd(e),
		newAccelerationCmd(e),
		newGazeGridCmd(e),
		newRMSSDCmd(e),
		newServeCmd(e),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (e *env) setup() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
	}

	logger, err := internal.NewFileLogger(internal.ParseLogLevel(cfg.Log.Level), internal.FileSink{
		Path:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger
	return nil
}

// openDatabase connects when a database URL is configured, nil otherwise
func (e *env) openDatabase() (*sqlx.DB, error) {
	if !e.cfg.Database.Enabled || e.cfg.Database.URL == "" {
		return nil, nil
	}
	db, err := sqlx.Connect("postgres", e.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
