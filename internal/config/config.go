// Package config holds the alors agent settings.
//
// The effective configuration is assembled from layers, later layers winning:
//
//	Default() → config.toml → ALORS_* environment → CLI flags
//
// Load rewrites config.toml so that it always shows every available setting,
// but only the file layer is ever persisted.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config errors.
var (
	// ErrUnknownBackend is returned when a backend name is not recognized.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid config")
)

const defaultSystemPrompt = `You are an AI coding assistant.

You are pair programming with a USER to solve their coding task. You decide which files are important for the task.

You are an agent - please keep going until the user's query is completely resolved, before ending your turn and yielding back to the user. Only terminate your turn when you are sure that the problem is solved. Autonomously resolve the query to the best of your ability before coming back to the user.
Keep it simple and precise.

Your main goal is to follow the USER's instructions at each message.

<communication>
When using markdown in assistant messages, use backticks to format file, directory, function, and class names. Use \( and \) for inline math, \[ and \] for block math.
</communication>


<tool_calling>
You have tools at your disposal to solve the coding task. Follow these rules regarding tool calls:
1. ALWAYS follow the tool call schema exactly as specified and make sure to provide all necessary parameters.
2. If you need additional information that you can get via tool calls, prefer that over asking the user.
3. Only use the standard tool call format and the available tools.
4. If you are not sure about file content or codebase structure pertaining to the user's request, use your tools to read files and gather the relevant information: do NOT guess or make up an answer.
5. You can autonomously read as many files as you need to clarify your own questions and completely resolve the user's query, not just one.
6. Batch those shell command calls (e.g. for compiling/linting) together with edit calls where appropriate.
</tool_calling>


<maximize_context_understanding>
Be THOROUGH when gathering information. Make sure you have the FULL picture before replying. Use additional tool calls or clarifying questions as needed.
TRACE every symbol back to its definitions and usages so you fully understand it.
Look past the first seemingly relevant result. EXPLORE alternative implementations, edge cases, and varied search terms until you have COMPREHENSIVE coverage of the topic.
</maximize_context_understanding>

Answer the user's request using the relevant tool(s), if they are available. Check that all the required parameters for each tool call are provided or can reasonably be inferred from context. IF there are no relevant tools or there are missing values for required parameters, ask the user to supply these values; otherwise proceed with the tool calls. If the user provides a specific value for a parameter (for example provided in quotes), make sure to use that value EXACTLY. DO NOT make up values for or ask about optional parameters. Carefully analyze descriptive terms in the request as they may indicate required parameter values that should be included even if not explicitly quoted.

To search for code, use the ripgrep ` + "`rg -n`" + ` command.`

// Config is the effective agent configuration.
type Config struct {
	// Backend selects the chat completion API.
	Backend Backend `toml:"backend" yaml:"backend"`

	// Model is passed verbatim to the backend.
	Model string `toml:"model" yaml:"model"`

	// SystemPrompt is sent before the conversation. Empty means no prompt.
	SystemPrompt string `toml:"system_prompt,multiline" yaml:"system_prompt"`

	// TimeoutSeconds bounds API requests and shell commands.
	TimeoutSeconds uint64 `toml:"timeout_seconds" yaml:"timeout_seconds"`

	// MaxIterations bounds tool calls per user turn.
	MaxIterations uint8 `toml:"max_iterations" yaml:"max_iterations"`

	// MaxReadLines caps the lines returned by a single file read.
	MaxReadLines uint64 `toml:"max_read_lines" yaml:"max_read_lines"`

	// Sandbox
	AllowedCommandPrefixes []string `toml:"allowed_command_prefixes" yaml:"allowed_command_prefixes"`
	IgnoredPaths           []string `toml:"ignored_paths" yaml:"ignored_paths"`
	AccessiblePaths        []string `toml:"accessible_paths" yaml:"accessible_paths"`

	// UX
	TerminalBell     bool `toml:"terminal_bell" yaml:"terminal_bell"`
	ShowSystemPrompt bool `toml:"show_system_prompt" yaml:"show_system_prompt"`
	DebugToolCalls   bool `toml:"debug_tool_calls" yaml:"debug_tool_calls"`
	AutoExecute      bool `toml:"auto_execute" yaml:"auto_execute"`
	PrintMessages    bool `toml:"print_messages" yaml:"print_messages"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `toml:"base_url" yaml:"base_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	backend := DefaultBackend
	return Config{
		Backend:        backend,
		Model:          "openai/gpt-4.1-mini",
		SystemPrompt:   defaultSystemPrompt,
		TimeoutSeconds: 120,
		MaxIterations:  50,
		MaxReadLines:   1000,
		AllowedCommandPrefixes: []string{
			"ls", "cat", "echo", "pwd", "rg", "git diff",
		},
		IgnoredPaths:     []string{".git"},
		AccessiblePaths:  []string{"."},
		TerminalBell:     true,
		ShowSystemPrompt: false,
		DebugToolCalls:   false,
		AutoExecute:      false,
		PrintMessages:    false,
		BaseURL:          backend.Defaults().BaseURL,
	}
}

// Merge applies a layer on top of c. Set values in the layer win.
func (c *Config) Merge(l *Layer) {
	if l == nil {
		return
	}

	if l.Backend != nil {
		c.Backend = *l.Backend
		// A backend switch drags its endpoint along unless the same layer
		// pins one explicitly.
		if l.BaseURL == nil {
			c.BaseURL = c.Backend.Defaults().BaseURL
		}
	}
	if l.Model != nil {
		c.Model = *l.Model
	}
	if l.SystemPrompt != nil {
		if strings.TrimSpace(*l.SystemPrompt) == "" {
			c.SystemPrompt = ""
		} else {
			c.SystemPrompt = *l.SystemPrompt
		}
	}
	if l.TimeoutSeconds != nil {
		c.TimeoutSeconds = *l.TimeoutSeconds
	}
	if l.MaxIterations != nil {
		c.MaxIterations = *l.MaxIterations
	}
	if l.MaxReadLines != nil {
		c.MaxReadLines = *l.MaxReadLines
	}
	if len(l.AllowedCommandPrefixes) > 0 {
		c.AllowedCommandPrefixes = cloneStrings(l.AllowedCommandPrefixes)
	}
	if len(l.IgnoredPaths) > 0 {
		c.IgnoredPaths = cloneStrings(l.IgnoredPaths)
	}
	if len(l.AccessiblePaths) > 0 {
		c.AccessiblePaths = cloneStrings(l.AccessiblePaths)
	}
	if l.TerminalBell != nil {
		c.TerminalBell = *l.TerminalBell
	}
	if l.ShowSystemPrompt != nil {
		c.ShowSystemPrompt = *l.ShowSystemPrompt
	}
	if l.DebugToolCalls != nil {
		c.DebugToolCalls = *l.DebugToolCalls
	}
	if l.AutoExecute != nil {
		c.AutoExecute = *l.AutoExecute
	}
	if l.PrintMessages != nil {
		c.PrintMessages = *l.PrintMessages
	}
	if l.BaseURL != nil {
		c.BaseURL = *l.BaseURL
	}
}

// HasSystemPrompt reports whether a system prompt will be sent.
func (c *Config) HasSystemPrompt() bool {
	return c.SystemPrompt != ""
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the values a running agent depends on.
func (c *Config) Validate() error {
	var errs []error

	if !c.Backend.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.TimeoutSeconds == 0 {
		errs = append(errs, errors.New("timeout_seconds must be greater than zero"))
	}
	if c.MaxIterations == 0 {
		errs = append(errs, errors.New("max_iterations must be greater than zero"))
	}
	if c.MaxReadLines == 0 {
		errs = append(errs, errors.New("max_read_lines must be greater than zero"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// EncodeTOML renders the config the way it is stored on disk.
func (c *Config) EncodeTOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// EncodeYAML renders the config as YAML for display.
func (c *Config) EncodeYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
