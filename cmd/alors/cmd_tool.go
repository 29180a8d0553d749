package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"alors/internal/config"
	"alors/internal/tools"
	"alors/internal/tools/core"
	"alors/internal/tools/shell"

	"github.com/spf13/cobra"
)

// toolCmd runs a single tool call through the sandbox
var toolCmd = &cobra.Command{
	Use:   "tool [name] [key=value...]",
	Short: "Run one sandboxed tool call",
	Long: `Runs a tool exactly as the agent would: arguments are checked against
the sandbox, and unless auto_execute is enabled you are asked to approve
the call first.

Examples:
  alors tool read_file path=README.md start_line=1 end_line=20
  alors tool list_files path=. recursive=true
  alors tool run_command command="git diff --stat"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTool,
}

// toolsCmd lists the available tools
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available tools",
	Args:  cobra.NoArgs,
	RunE:  listTools,
}

// buildRegistry registers every tool against the effective config.
func buildRegistry(c *config.Config) (*tools.Registry, error) {
	env := tools.EnvFromConfig(c)
	reg := tools.NewRegistry()
	if err := core.RegisterAll(reg, env); err != nil {
		return nil, fmt.Errorf("failed to register file tools: %w", err)
	}
	if err := shell.RegisterAll(reg, env); err != nil {
		return nil, fmt.Errorf("failed to register shell tools: %w", err)
	}
	return reg, nil
}

func listTools(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, cat := range reg.Categories() {
		fmt.Fprintf(out, "%s\n", cat)
		for _, tool := range reg.GetByCategory(cat) {
			fmt.Fprintf(out, "  %-12s %s\n", tool.Name, tool.Description)
		}
	}
	fmt.Fprintf(out, "\n%d tools\n", reg.Count())
	return nil
}

func runTool(cmd *cobra.Command, args []string) error {
	name := args[0]
	toolArgs, err := tools.ParseKeyValues(args[1:])
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.ShowSystemPrompt && cfg.HasSystemPrompt() {
		fmt.Fprintf(out, "--- system prompt ---\n%s\n---------------------\n", cfg.SystemPrompt)
	}
	if cfg.PrintMessages {
		if err := printToolCallMessage(out, name, toolArgs); err != nil {
			return err
		}
	}

	approver := &promptApprover{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	guard := tools.NewGuard(reg, cfg, approver)

	// Tools apply timeout_seconds themselves, so approval time is not counted.
	result, runErr := guard.Run(cmdContext(cmd), name, toolArgs)
	if result != nil && result.Result != "" {
		fmt.Fprintln(out, result.Result)
	}
	if cfg.TerminalBell {
		fmt.Fprint(cmd.ErrOrStderr(), "\a")
	}
	return runErr
}

// printToolCallMessage prints the call in the chat completion wire shape.
func printToolCallMessage(w io.Writer, name string, args map[string]any) error {
	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode tool arguments: %w", err)
	}
	msg := map[string]any{
		"role": "assistant",
		"tool_calls": []map[string]any{{
			"type": "function",
			"function": map[string]any{
				"name":      name,
				"arguments": string(encodedArgs),
			},
		}},
	}
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// promptApprover asks on the terminal before each tool call.
type promptApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptApprover) Approve(ctx context.Context, tool *tools.Tool, args map[string]any) (bool, error) {
	fmt.Fprintf(p.out, "Run %s %s? [y/N] ", tool.Name, formatArgs(args))
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func formatArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(data)
}
