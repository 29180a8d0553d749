// Package logging provides categorized logging for alors.
// Every category is a named child of one zap logger installed by Initialize.
// Until Initialize is called all output is discarded.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot        Category = "boot"        // CLI startup
	CategoryConfig      Category = "config"      // Config loading, persistence, watching
	CategoryPermissions Category = "permissions" // Sandbox decisions
	CategoryTools       Category = "tools"       // Tool registry and guard
	CategoryFiles       Category = "files"       // File tools
	CategoryShell       Category = "shell"       // Command execution
	CategoryAudit       Category = "audit"       // Tool call and sandbox audit trail
)

// Logger is a printf-style logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[Category]bool
	loggers    = make(map[Category]*Logger)
)

// Initialize installs the root logger. A nil or empty categories map enables
// every category; otherwise only categories mapped to true produce output.
func Initialize(root *zap.Logger, enabled map[Category]bool) {
	if root == nil {
		root = zap.NewNop()
	}

	mu.Lock()
	defer mu.Unlock()

	base = root
	categories = enabled
	loggers = make(map[Category]*Logger)
}

// IsCategoryEnabled reports whether a category produces output.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if len(categories) == 0 {
		return true
	}
	return categories[category]
}

// Get returns the logger for a category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	root := base
	if !categoryEnabledLocked(category) {
		root = zap.NewNop()
	}
	l := &Logger{
		category: category,
		sugar:    root.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With returns a logger carrying structured key/value fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes the root logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if err := base.Sync(); err != nil {
		return fmt.Errorf("failed to sync logger: %w", err)
	}
	return nil
}

// Convenience functions for quick logging

func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Info(format, args...)
}

func ConfigDebug(format string, args ...interface{}) {
	Get(CategoryConfig).Debug(format, args...)
}

func ConfigWarn(format string, args ...interface{}) {
	Get(CategoryConfig).Warn(format, args...)
}

func Permissions(format string, args ...interface{}) {
	Get(CategoryPermissions).Info(format, args...)
}

func PermissionsDebug(format string, args ...interface{}) {
	Get(CategoryPermissions).Debug(format, args...)
}

func ToolsDebug(format string, args ...interface{}) {
	Get(CategoryTools).Debug(format, args...)
}

func Files(format string, args ...interface{}) {
	Get(CategoryFiles).Info(format, args...)
}

func FilesDebug(format string, args ...interface{}) {
	Get(CategoryFiles).Debug(format, args...)
}

func Shell(format string, args ...interface{}) {
	Get(CategoryShell).Info(format, args...)
}

func ShellDebug(format string, args ...interface{}) {
	Get(CategoryShell).Debug(format, args...)
}

func ShellWarn(format string, args ...interface{}) {
	Get(CategoryShell).Warn(format, args...)
}
