package config

import (
	"fmt"
	"os"
	"strings"
)

// Layer is a partial configuration from one source. Nil scalars and empty
// lists leave the underlying value alone.
type Layer struct {
	Backend                *Backend `toml:"backend"`
	Model                  *string  `toml:"model"`
	SystemPrompt           *string  `toml:"system_prompt"`
	TimeoutSeconds         *uint64  `toml:"timeout_seconds"`
	MaxIterations          *uint8   `toml:"max_iterations"`
	MaxReadLines           *uint64  `toml:"max_read_lines"`
	AllowedCommandPrefixes []string `toml:"allowed_command_prefixes"`
	IgnoredPaths           []string `toml:"ignored_paths"`
	AccessiblePaths        []string `toml:"accessible_paths"`
	TerminalBell           *bool    `toml:"terminal_bell"`
	ShowSystemPrompt       *bool    `toml:"show_system_prompt"`
	DebugToolCalls         *bool    `toml:"debug_tool_calls"`
	AutoExecute            *bool    `toml:"auto_execute"`
	PrintMessages          *bool    `toml:"print_messages"`
	BaseURL                *string  `toml:"base_url"`
}

// IsEmpty reports whether the layer sets nothing.
func (l *Layer) IsEmpty() bool {
	return l.Backend == nil && l.Model == nil && l.SystemPrompt == nil &&
		l.TimeoutSeconds == nil && l.MaxIterations == nil && l.MaxReadLines == nil &&
		len(l.AllowedCommandPrefixes) == 0 && len(l.IgnoredPaths) == 0 && len(l.AccessiblePaths) == 0 &&
		l.TerminalBell == nil && l.ShowSystemPrompt == nil && l.DebugToolCalls == nil &&
		l.AutoExecute == nil && l.PrintMessages == nil && l.BaseURL == nil
}

// Environment variables read by EnvLayer.
const (
	EnvBackend = "ALORS_BACKEND"
	EnvModel   = "ALORS_MODEL"
	EnvBaseURL = "ALORS_BASE_URL"
)

// EnvLayer builds a layer from ALORS_* variables using getenv. A nil getenv
// reads the process environment.
func EnvLayer(getenv func(string) string) (Layer, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var l Layer
	if v := strings.TrimSpace(getenv(EnvBackend)); v != "" {
		b, err := ParseBackend(v)
		if err != nil {
			return Layer{}, fmt.Errorf("%s: %w", EnvBackend, err)
		}
		l.Backend = &b
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		l.Model = &v
	}
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		l.BaseURL = &v
	}
	return l, nil
}

// Ptr returns a pointer to v. It keeps layer literals short.
func Ptr[T any](v T) *T {
	return &v
}
