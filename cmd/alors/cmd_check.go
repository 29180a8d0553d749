package main

import (
	"errors"
	"fmt"
	"strings"

	"alors/internal/permissions"

	"github.com/spf13/cobra"
)

// errDenied makes the process exit non-zero after all results are printed.
var errDenied = errors.New("one or more checks were denied")

// checkCmd groups sandbox checks
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check paths and commands against the sandbox",
}

var checkPathCmd = &cobra.Command{
	Use:   "path [path...]",
	Short: "Check whether paths are within the accessible paths",
	Long: `Checks every path against accessible_paths and ignored_paths.

A path that does not exist yet is checked through its parent directory.

Example:
  alors check path src/main.go ../other/secret.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkPaths,
}

var checkCommandCmd = &cobra.Command{
	Use:   "command [command]",
	Short: "Check whether a shell command matches an allowed prefix",
	Long: `Checks a command against allowed_command_prefixes.

Example:
  alors check command git diff HEAD~1`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkCommand,
}

func init() {
	checkCmd.AddCommand(checkPathCmd)
	checkCmd.AddCommand(checkCommandCmd)
}

func sandboxPolicy() permissions.Policy {
	return permissions.Policy{
		AccessiblePaths:        cfg.AccessiblePaths,
		IgnoredPaths:           cfg.IgnoredPaths,
		AllowedCommandPrefixes: cfg.AllowedCommandPrefixes,
	}
}

func checkPaths(cmd *cobra.Command, args []string) error {
	policy := sandboxPolicy()
	out := cmd.OutOrStdout()

	denied := 0
	for _, p := range args {
		if err := policy.CheckPath(p); err != nil {
			denied++
			fmt.Fprintf(out, "denied  %s: %v\n", p, err)
			continue
		}
		fmt.Fprintf(out, "allowed %s\n", p)
	}

	if denied > 0 {
		return fmt.Errorf("%w: %d of %d paths", errDenied, denied, len(args))
	}
	return nil
}

func checkCommand(cmd *cobra.Command, args []string) error {
	command := joinArgs(args)
	out := cmd.OutOrStdout()

	if err := sandboxPolicy().CheckCommand(command); err != nil {
		fmt.Fprintf(out, "denied  %s: %v\n", command, err)
		return fmt.Errorf("%w: %s", errDenied, command)
	}
	fmt.Fprintf(out, "allowed %s\n", command)
	return nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
