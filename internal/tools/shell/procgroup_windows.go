//go:build windows

package shell

import "os/exec"

// setupProcessGroup keeps the default cancellation, which kills the shell.
// WaitDelay still bounds how long orphaned children can hold the pipes.
func setupProcessGroup(cmd *exec.Cmd) {}
