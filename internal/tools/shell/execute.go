package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"alors/internal/logging"
	"alors/internal/tools"
)

const (
	// maxOutputBytes caps combined stdout/stderr returned to the caller.
	maxOutputBytes = 50000

	defaultTimeout = 60 * time.Second

	// waitDelay bounds how long Wait blocks on pipes still held by
	// descendants after the command was killed.
	waitDelay = 2 * time.Second
)

// execCommandContext is swapped out in tests.
var execCommandContext = exec.CommandContext

// RunCommandTool returns a tool for executing shell commands.
func RunCommandTool(env *tools.Env) *tools.Tool {
	return &tools.Tool{
		Name:        "run_command",
		Description: "Execute a shell command and return its output",
		Category:    tools.CategoryShell,
		Priority:    70,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeRunCommand(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"command"},
			Properties: map[string]tools.Property{
				"command": {
					Type:        "string",
					Description: "The command to execute",
				},
				"working_dir": {
					Type:        "string",
					Description: "Working directory for the command",
				},
			},
		},
	}
}

func executeRunCommand(ctx context.Context, env *tools.Env, args map[string]any) (string, error) {
	command, _, err := tools.StringArg(args, "command")
	if err != nil {
		return "", err
	}
	if command == "" {
		return "", fmt.Errorf("command is required")
	}
	workingDir, _, err := tools.StringArg(args, "working_dir")
	if err != nil {
		return "", err
	}

	if err := env.Policy.CheckCommand(command); err != nil {
		return "", err
	}
	if workingDir != "" {
		if err := env.Policy.CheckPath(workingDir); err != nil {
			return "", err
		}
	}

	timeout := env.CommandTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logging.ShellDebug("run_command: cmd=%s, dir=%s, timeout=%s", command, workingDir, timeout)

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = execCommandContext(execCtx, "cmd", "/C", command)
	} else {
		cmd = execCommandContext(execCtx, "sh", "-c", command)
	}
	cmd.Dir = workingDir
	cmd.Env = os.Environ()
	setupProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n--- stderr ---\n"
		}
		output += stderr.String()
	}

	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n...[truncated]"
	}

	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			logging.ShellWarn("run_command timed out: %s", command)
			return output, fmt.Errorf("command timed out after %s", timeout)
		}
		logging.Shell("run_command failed: %s (%v)", command, err)
		return output, fmt.Errorf("command failed: %w\nOutput:\n%s", err, output)
	}

	logging.Shell("run_command completed: %s (%d bytes output)", command, len(output))
	return output, nil
}
