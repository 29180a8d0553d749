// Package shell provides the sandboxed command execution tool.
//
// Tools:
//   - run_command: Execute a whitelisted shell command
package shell
