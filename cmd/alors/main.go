package main

import (
	"fmt"
	"os"

	"alors/internal/config"
	"alors/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	cliFlags   layerFlags

	// Resolved in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "alors",
	Short: "alors - configuration and sandbox for a terminal coding agent",
	Long: `alors holds the settings of a coding agent session and enforces the
sandbox its tool calls run in.

Settings are layered: built-in defaults, then the config file
($XDG_CONFIG_HOME/alors/config.toml), then ALORS_* environment variables,
then command line flags. The config file is kept up to date with every
available setting; flags are never written back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Initialize(logger, nil)

		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/alors/config.toml)")
	cliFlags.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(promptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the config path and loads the effective config.
func loadConfig(cmd *cobra.Command) error {
	layer, err := cliFlags.layer(cmd.Flags())
	if err != nil {
		return err
	}

	if configPath == "" {
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err = config.Load(configPath, &layer)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("config has invalid values", zap.Error(err))
	}
	logging.BootDebug("config loaded from %s", configPath)
	return nil
}

// promptCmd prints the effective system prompt
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the effective system prompt",
	Args:  cobra.NoArgs,
	RunE:  showPrompt,
}

func showPrompt(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !cfg.HasSystemPrompt() {
		fmt.Fprintln(out, "(none)")
		return nil
	}
	fmt.Fprintln(out, cfg.SystemPrompt)
	return nil
}
