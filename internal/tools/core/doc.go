// Package core provides the sandboxed filesystem tools.
//
// Every path is checked against the Env policy before it is touched.
//
// Tools:
//   - read_file: Read file contents, capped at max_read_lines
//   - write_file: Write content to a file
//   - list_files: List directory contents, skipping ignored paths
package core
