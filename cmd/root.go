package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables consulted when the matching flag is not set.
const (
	envLogLevel    = "MAB_LOG_LEVEL"
	envDecisionLog = "MAB_DECISION_LOG"
	envSeed        = "MAB_SEED"
)

var (
	logLevel       string // Log verbosity level
	envFile        string // Optional dotenv file with MAB_* defaults
	configPath     string // Run file
	seed           int64  // Overrides the run file seed
	epochs         int    // Overrides the run file epoch count
	decisionLog    string // Decision log path
	decisionFormat string // csv or sqlite
	parallelism    int    // Concurrent sweep runs
	decisionDir    string // Directory for per-run sweep decision logs
	baselineIPC    float64
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "mab-uarch",
	Short: "Multi-armed-bandit selection of microarchitectural policies per decision epoch",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(cmd); err != nil {
			return err
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// loadEnv reads the dotenv file, if any, and fills flags the user did not set
// from MAB_* variables.
func loadEnv(cmd *cobra.Command) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	flags := cmd.Flags()
	if v, ok := os.LookupEnv(envLogLevel); ok && !flags.Changed("log") {
		logLevel = v
	}
	if v, ok := os.LookupEnv(envDecisionLog); ok && flags.Lookup("decision-log") != nil && !flags.Changed("decision-log") {
		decisionLog = v
	}
	if v, ok := os.LookupEnv(envSeed); ok && flags.Lookup("seed") != nil && !flags.Changed("seed") {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envSeed, err)
		}
		seed = s
		if err := flags.Set("seed", v); err != nil {
			return err
		}
	}
	return nil
}

// runCmd executes one run described by a run file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision loop for one configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := LoadRunFile(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			rf.Seed = seed
		}
		if epochs > 0 {
			rf.Epochs = epochs
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := executeRun(ctx, rf, decisionLog, decisionFormat)
		if res != nil {
			printResult(cmd.OutOrStdout(), res)
		}
		logFootprint()
		return err
	},
}

// sweepCmd executes every sweep entry of a run file in parallel
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every sweep entry of a run file concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := LoadRunFile(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			rf.Seed = seed
		}
		if epochs > 0 {
			rf.Epochs = epochs
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := executeSweep(ctx, rf, parallelism, decisionDir, decisionFormat)
		if err != nil {
			return err
		}
		printSweep(cmd.OutOrStdout(), results)
		logFootprint()

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sweep runs failed", failed, len(results))
		}
		return nil
	},
}

// parseStatsCmd extracts decision metrics from ChampSim output files
var parseStatsCmd = &cobra.Command{
	Use:   "parse-stats FILE...",
	Short: "Extract IPC and cache MPKI from ChampSim output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseStats(cmd.OutOrStdout(), args, baselineIPC)
	},
}

// Execute runs the CLI root command
func Execute() {
	exit(rootCmd.Execute())
}

// exit leaves the process through atexit so decision logs that are still
// open get their buffered epochs flushed, on failure as well as success.
func exit(err error) {
	if err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with MAB_LOG_LEVEL, MAB_DECISION_LOG, MAB_SEED defaults")

	for _, c := range []*cobra.Command{runCmd, sweepCmd} {
		c.Flags().StringVar(&configPath, "config", "", "Run file (YAML)")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed overriding the run file")
		c.Flags().IntVar(&epochs, "epochs", 0, "Number of decision epochs (0 keeps the run file value)")
		c.Flags().StringVar(&decisionFormat, "decision-format", "csv", "Decision log format (csv, sqlite)")
		_ = c.MarkFlagRequired("config")
	}
	runCmd.Flags().StringVar(&decisionLog, "decision-log", "", "Decision log path (empty disables persistence)")
	sweepCmd.Flags().IntVar(&parallelism, "parallel", 4, "Maximum number of concurrent runs")
	sweepCmd.Flags().StringVar(&decisionDir, "decision-dir", "", "Directory for per-run decision logs (empty disables persistence)")
	parseStatsCmd.Flags().Float64Var(&baselineIPC, "baseline-ipc", 0, "Baseline IPC; when set, ipc_delta is reported")

	rootCmd.AddCommand(runCmd, sweepCmd, parseStatsCmd)
}
