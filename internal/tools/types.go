// Package tools provides the sandboxed tools an alors agent can call.
//
// Architecture:
//
//	config.Config → Env → tool constructors → Registry → Guard.Run() → Tool.Execute()
//
// Every tool receives an Env carrying the sandbox policy and limits, so
// no tool reads global configuration.
package tools

import (
	"context"
	"math"
	"time"

	"alors/internal/config"
	"alors/internal/permissions"
)

// ToolCategory groups tools for listing.
type ToolCategory string

const (
	// CategoryFiles covers reading, writing and listing files.
	CategoryFiles ToolCategory = "/files"

	// CategoryShell covers command execution.
	CategoryShell ToolCategory = "/shell"

	// CategoryGeneral is for everything else.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines a single callable tool.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description explains what the tool does.
	Description string

	// Category groups the tool for listing.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority orders tools inside a category (default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// CallID identifies this execution in logs.
	CallID string

	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the string output from the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}

// Env is what a tool may depend on.
type Env struct {
	Policy         permissions.Policy
	MaxReadLines   int
	CommandTimeout time.Duration
}

// EnvFromConfig derives a tool environment from the effective config.
func EnvFromConfig(cfg *config.Config) *Env {
	return &Env{
		Policy: permissions.Policy{
			AccessiblePaths:        cfg.AccessiblePaths,
			IgnoredPaths:           cfg.IgnoredPaths,
			AllowedCommandPrefixes: cfg.AllowedCommandPrefixes,
		},
		MaxReadLines:   clampInt(cfg.MaxReadLines),
		CommandTimeout: cfg.Timeout(),
	}
}

// clampInt converts n to int, saturating at math.MaxInt.
func clampInt(n uint64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}
