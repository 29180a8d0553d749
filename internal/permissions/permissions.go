// Package permissions holds every sandbox decision alors makes, so that
// security-sensitive checks live in one place instead of in each tool.
package permissions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"alors/internal/logging"
)

// Sandbox errors.
var (
	// ErrPathNotAllowed is returned when a path lies outside every accessible root.
	ErrPathNotAllowed = errors.New("path not allowed")

	// ErrPathUnresolvable is returned when a path (or its parent) cannot be resolved.
	ErrPathUnresolvable = errors.New("failed to resolve path")

	// ErrNoParent is returned for a non-existent path that has no parent directory.
	ErrNoParent = errors.New("path has no parent directory")

	// ErrPathIgnored is returned when a path matches an ignored entry.
	ErrPathIgnored = errors.New("path is ignored")

	// ErrCommandNotAllowed is returned when a command matches no allowed prefix.
	ErrCommandNotAllowed = errors.New("command not allowed")
)

// Error is a sandbox denial. Its message is shown to the user as is, and
// Unwrap exposes the sentinel for errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func denial(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// formatList renders a list as ["a", "b"].
func formatList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// IsPathAccessible returns nil when path lies within one of accessiblePaths.
//
// Existing paths are checked directly. A path that does not exist yet (a file
// about to be created) is checked through its parent directory, which must
// exist. Both sides are made absolute and have symlinks evaluated, and the
// comparison is per path component, so /srv/app does not grant /srv/app2.
// Accessible roots that cannot be resolved are skipped.
func IsPathAccessible(path string, accessiblePaths []string) error {
	candidate := path
	if _, err := os.Stat(path); err != nil {
		parent, ok := parentDir(path)
		if !ok {
			return denial(ErrNoParent, "Cannot check accessibility for '%s' because it has no parent directory.", path)
		}
		candidate = parent
	}

	resolved, err := resolve(candidate)
	if err != nil {
		return denial(ErrPathUnresolvable, "Failed to resolve path '%s': %v. It might not exist or there's a permission issue.", candidate, err)
	}

	for _, root := range accessiblePaths {
		resolvedRoot, err := resolve(root)
		if err != nil {
			logging.PermissionsDebug("skipping unresolvable accessible path %q: %v", root, err)
			continue
		}
		if within(resolvedRoot, resolved) {
			logging.PermissionsDebug("path %s allowed by %s", path, root)
			return nil
		}
	}

	logging.Permissions("denied path %s", path)
	return denial(ErrPathNotAllowed, "Operation on path '%s' is not allowed. It's not within any of the accessible paths: %s.",
		path, formatList(accessiblePaths))
}

// IsCommandAllowed returns nil when command starts with one of allowedPrefixes.
// An empty list allows every command.
//
// The match is a plain string prefix: "git diff" admits "git diff --stat"
// and also "git diffx". Callers that need stricter matching must configure
// prefixes ending in a space.
func IsCommandAllowed(command string, allowedPrefixes []string) error {
	if len(allowedPrefixes) == 0 {
		return nil
	}

	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(command, prefix) {
			logging.PermissionsDebug("command %q allowed by prefix %q", command, prefix)
			return nil
		}
	}

	logging.Permissions("denied command %q", command)
	return denial(ErrCommandNotAllowed, "Command `%s` is not allowed. It does not start with any of the allowed prefixes: %s.",
		command, formatList(allowedPrefixes))
}

// IsPathIgnored reports whether path is hidden by one of ignored.
// Entries without a separator (".git", "node_modules") match any path
// component. Entries with a separator match that path and everything below it.
func IsPathIgnored(path string, ignored []string) bool {
	if len(ignored) == 0 {
		return false
	}

	clean := filepath.Clean(path)
	components := strings.Split(filepath.ToSlash(clean), "/")
	// A symlink may hide an ignored target under another name, so the
	// components that only show up after resolution are checked too.
	resolvedPath, resolvedOK := resolveExisting(clean)
	if resolvedOK {
		seen := make(map[string]bool)
		if abs, err := filepath.Abs(clean); err == nil {
			for _, c := range strings.Split(filepath.ToSlash(abs), "/") {
				seen[c] = true
			}
		}
		for _, c := range strings.Split(filepath.ToSlash(resolvedPath), "/") {
			if !seen[c] {
				components = append(components, c)
			}
		}
	}

	for _, entry := range ignored {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entryClean := filepath.Clean(entry)

		if !strings.ContainsRune(filepath.ToSlash(entryClean), '/') {
			for _, c := range components {
				if c == entryClean {
					return true
				}
			}
			continue
		}

		absEntry, err1 := filepath.Abs(entryClean)
		absPath, err2 := filepath.Abs(clean)
		if err1 == nil && err2 == nil && within(absEntry, absPath) {
			return true
		}
		if resolvedOK {
			if resolvedEntry, ok := resolveExisting(entryClean); ok && within(resolvedEntry, resolvedPath) {
				return true
			}
		}
	}
	return false
}

// parentDir returns the directory a new entry at path would be created in.
// A bare file name lives in ".". The filesystem root and "" have no parent.
func parentDir(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	if clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return "", false
	}
	return filepath.Dir(clean), true
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// resolveExisting resolves path, or its closest existing ancestor with the
// remaining components appended, so paths about to be created still have
// symlinked parents evaluated.
func resolveExisting(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	var rest []string
	current := abs
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), true
		}
		next := filepath.Dir(current)
		if next == current {
			return "", false
		}
		rest = append([]string{filepath.Base(current)}, rest...)
		current = next
	}
}

// within reports whether target equals root or lies below it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
