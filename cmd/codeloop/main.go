// Package main implements the codeloop CLI: a one-shot or interactive front
// end for the instruction loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hupe1980/codeloop"
	"github.com/hupe1980/codeloop/agent"
	"github.com/hupe1980/codeloop/config"
	"github.com/hupe1980/codeloop/confirm"
	"github.com/hupe1980/codeloop/logging"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// configPath is a configuration directory or file
	configPath string
	logLevel   string
	lang       string
	modelName  string
	maxRounds  int
	noRecord   bool
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codeloop [instruction]",
	Short: "Let a language model solve tasks by writing and running code",
	Long: `codeloop sends an instruction to a language model, runs the code block the
model marks as runnable, feeds the result back and repeats until the model
answers in plain text.

Examples:
  # Start the interactive shell
  codeloop

  # Run a single instruction and exit
  codeloop "How many files are in the current directory?"

  # Use a configuration file and a specific model
  codeloop -c ./codeloop.toml --model claude "Summarize README.md"`,
	Args:         cobra.ArbitraryArgs,
	Version:      version,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	defaultDir, err := config.DefaultDir()
	if err != nil {
		defaultDir = ""
	}
	rootCmd.Flags().StringVarP(&configPath, "config-dir", "c", defaultDir, "configuration directory or file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&lang, "lang", "", "message locale, e.g. en or zh")
	rootCmd.Flags().StringVar(&modelName, "model", "", "name of the configured model to use")
	rootCmd.Flags().IntVar(&maxRounds, "max-rounds", -1, "maximum feedback rounds per instruction (0 = unlimited)")
	rootCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record console output for export")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	reg := prometheus.NewRegistry()

	// Commands and the reset confirmation read from the same buffer.
	in := bufio.NewReader(cmd.InOrStdin())

	a, err := codeloop.New(cfg, func(o *codeloop.Options) {
		o.Output = cmd.OutOrStdout()
		o.Logger = logger
		o.Metrics = metrics.New(reg)
		o.Loader = loadConfig
		o.Confirmer = confirm.NewPrompter(func(po *confirm.Options) {
			po.Input = in
			po.Output = cmd.OutOrStdout()
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	if modelName != "" {
		if err := a.Use(modelName); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) > 0 {
		return a.Run(ctx, strings.Join(args, " "), agent.RunOptions{})
	}

	sh := newShell(a, func(o *shellOptions) {
		o.Input = in
		o.Output = cmd.OutOrStdout()
		o.Gatherer = reg
		o.ConfigPath = configPath
	})
	return sh.Run(ctx)
}

// loadConfig loads path and applies the command line overrides, so a reset
// from the shell keeps them.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cfg *config.Config) {
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if lang != "" {
		cfg.Lang = lang
	}
	if maxRounds >= 0 {
		cfg.MaxRounds = maxRounds
	}
	if noRecord {
		cfg.Record = false
	}
}
