package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"alors/internal/logging"
	"alors/internal/tools"
)

// maxListEntries caps list_files output.
const maxListEntries = 5000

// ReadFileTool returns a tool for reading file contents.
func ReadFileTool(env *tools.Env) *tools.Tool {
	return &tools.Tool{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Category:    tools.CategoryFiles,
		Priority:    90,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeReadFile(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"path"},
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "The file path to read",
				},
				"start_line": {
					Type:        "integer",
					Description: "Starting line number (1-indexed, optional)",
				},
				"end_line": {
					Type:        "integer",
					Description: "Ending line number (inclusive, optional)",
				},
			},
		},
	}
}

func executeReadFile(ctx context.Context, env *tools.Env, args map[string]any) (string, error) {
	path, _, err := tools.StringArg(args, "path")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	startLine, hasStart, err := tools.IntArg(args, "start_line")
	if err != nil {
		return "", err
	}
	endLine, hasEnd, err := tools.IntArg(args, "end_line")
	if err != nil {
		return "", err
	}

	if err := env.Policy.CheckPath(path); err != nil {
		return "", err
	}

	logging.FilesDebug("read_file: path=%s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) == 0 {
		return "", nil
	}

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")

	if !hasStart {
		startLine = 1
	}
	if !hasEnd || endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine < 1 {
		startLine = 1
	}
	if startLine > len(lines) {
		return "", fmt.Errorf("start_line %d is past the end of the file (%d lines)", startLine, len(lines))
	}
	if endLine < startLine {
		return "", fmt.Errorf("end_line %d is before start_line %d", endLine, startLine)
	}

	selected := lines[startLine-1 : endLine]

	truncated := 0
	if env.MaxReadLines > 0 && len(selected) > env.MaxReadLines {
		truncated = len(selected) - env.MaxReadLines
		selected = selected[:env.MaxReadLines]
	}

	result := strings.Join(selected, "\n")
	if truncated > 0 {
		next := startLine + len(selected)
		result += fmt.Sprintf("\n...[truncated: %d more lines, continue with start_line=%d]", truncated, next)
	}

	logging.Files("read_file completed: %s (%d lines, %d truncated)", path, len(selected), truncated)
	return result, nil
}

// WriteFileTool returns a tool for writing content to a file.
func WriteFileTool(env *tools.Env) *tools.Tool {
	return &tools.Tool{
		Name:        "write_file",
		Description: "Write content to a file, creating it if it doesn't exist",
		Category:    tools.CategoryFiles,
		Priority:    80,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeWriteFile(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"path", "content"},
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "The file path to write",
				},
				"content": {
					Type:        "string",
					Description: "The content to write",
				},
				"create_dirs": {
					Type:        "boolean",
					Description: "Create parent directories if they don't exist (default: true)",
					Default:     true,
				},
			},
		},
	}
}

func executeWriteFile(ctx context.Context, env *tools.Env, args map[string]any) (string, error) {
	path, _, err := tools.StringArg(args, "path")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	content, _, err := tools.StringArg(args, "content")
	if err != nil {
		return "", err
	}
	createDirs := true
	if cd, ok, err := tools.BoolArg(args, "create_dirs"); err != nil {
		return "", err
	} else if ok {
		createDirs = cd
	}

	logging.FilesDebug("write_file: path=%s, size=%d", path, len(content))

	if createDirs {
		if err := ensureParent(env, path); err != nil {
			return "", err
		}
	}

	if err := env.Policy.CheckPath(path); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logging.Files("write_file completed: %s (%d bytes)", path, len(content))
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
}

// ensureParent creates the parent directories of path, but only after the
// closest existing ancestor has been checked against the sandbox.
func ensureParent(env *tools.Env, path string) error {
	if env.Policy.Ignored(path) {
		return env.Policy.CheckPath(path)
	}

	dir := filepath.Dir(path)
	ancestor := dir
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		next := filepath.Dir(ancestor)
		if next == ancestor {
			break
		}
		ancestor = next
	}
	if ancestor == dir {
		return nil
	}

	if err := env.Policy.CheckPath(ancestor); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

// ListFilesTool returns a tool for listing directory contents.
func ListFilesTool(env *tools.Env) *tools.Tool {
	return &tools.Tool{
		Name:        "list_files",
		Description: "List files in a directory, skipping ignored paths",
		Category:    tools.CategoryFiles,
		Priority:    70,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeListFiles(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "Directory to list (default: .)",
					Default:     ".",
				},
				"recursive": {
					Type:        "boolean",
					Description: "Descend into subdirectories (default: false)",
					Default:     false,
				},
			},
		},
	}
}

func executeListFiles(ctx context.Context, env *tools.Env, args map[string]any) (string, error) {
	root, _, err := tools.StringArg(args, "path")
	if err != nil {
		return "", err
	}
	if root == "" {
		root = "."
	}
	recursive, _, err := tools.BoolArg(args, "recursive")
	if err != nil {
		return "", err
	}

	if err := env.Policy.CheckPath(root); err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}

	logging.FilesDebug("list_files: path=%s, recursive=%v", root, recursive)

	var entries []string
	errLimit := errors.New("entry limit reached")

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logging.FilesDebug("list_files: skipping %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if env.Policy.Ignored(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		entries = append(entries, rel)
		if len(entries) >= maxListEntries {
			return errLimit
		}

		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})

	switch {
	case errors.Is(walkErr, errLimit):
		entries = append(entries, fmt.Sprintf("...[truncated at %d entries]", maxListEntries))
	case walkErr != nil:
		return "", fmt.Errorf("failed to list %s: %w", root, walkErr)
	}

	logging.Files("list_files completed: %s (%d entries)", root, len(entries))
	return strings.Join(entries, "\n"), nil
}
