package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/headscroll/internal/config"
	"github.com/san-kum/headscroll/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	sourceName string
	replayRun  string
	deadZone   float64
	step       float64
	frameRate  int
	detector   string
	logLevel   string
	logFile    string
	duration   float64
	seed       int64
	noSave     bool
	force      bool
)

// main registers the headscroll commands and exits with status 1 when a
// command fails.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:          "headscroll",
		Short:        "hands-free page scrolling driven by head movement",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultData, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless scroll session and save it",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	sessionFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scroll session with the live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	sessionFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot nose position and page offset of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s dead_zone=%.3f step=%.0f auto_calibrate_after=%v\n",
					name, cfg.DeadZone, cfg.Step, cfg.AutoCalibrateAfter)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&sourceName, "source", config.DefaultSource, "frame source (synthetic, remote, replay)")
	cmd.Flags().StringVar(&replayRun, "run", "", "run id to replay")
	cmd.Flags().Float64Var(&deadZone, "dead-zone", 0.05, "dead zone around the baseline")
	cmd.Flags().Float64Var(&step, "step", 25, "scroll step in pixels")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&detector, "detector", "", "landmark detector websocket url")
	cmd.Flags().Float64Var(&duration, "time", 0, "synthetic duration in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "synthetic random seed")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
}

// loadConfig resolves defaults, preset, config file, environment and flags,
// in that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = sourceName
	}
	if flags.Changed("run") && !flags.Changed("source") {
		cfg.Source = "replay"
	}
	if flags.Changed("dead-zone") {
		cfg.DeadZone = deadZone
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("detector") {
		cfg.Detector.URL = detector
	}
	if flags.Changed("time") {
		cfg.Synthetic.Duration = secondsToDuration(duration)
	}
	if flags.Changed("seed") {
		cfg.Synthetic.Seed = seed
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, quiet bool) (*logrus.Entry, error) {
	logger, err := logging.New(cfg.Log, quiet)
	if err != nil {
		return nil, err
	}
	return logger.WithField("component", "headscroll"), nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "headscroll.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
