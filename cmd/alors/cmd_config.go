package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"alors/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFormat string

// configCmd groups config inspection commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (defaults, file, env and flags merged)",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var configWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report config file changes until interrupted",
	Args:  cobra.NoArgs,
	RunE:  watchConfig,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml or yaml")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configWatchCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	switch configFormat {
	case "toml", "":
		data, err = cfg.EncodeTOML()
	case "yaml":
		data, err = cfg.EncodeYAML()
	default:
		return fmt.Errorf("unknown format %q (expected toml or yaml)", configFormat)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func watchConfig(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	return config.Watch(ctx, configPath, config.DefaultWatchDebounce, func(c *config.Config) {
		if err := c.Validate(); err != nil {
			logger.Warn("reloaded config is invalid", zap.Error(err))
		}
		fmt.Fprintf(out, "config reloaded: backend=%s model=%s base_url=%s\n", c.Backend, c.Model, c.BaseURL)
	})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
