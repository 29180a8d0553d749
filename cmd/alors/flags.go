package main

import (
	"alors/internal/config"

	"github.com/spf13/pflag"
)

// layerFlags binds one CLI flag per config.Layer field. A field only reaches
// the layer when its flag was passed explicitly.
type layerFlags struct {
	backend                string
	model                  string
	systemPrompt           string
	timeoutSeconds         uint64
	maxIterations          uint8
	maxReadLines           uint64
	allowedCommandPrefixes []string
	ignoredPaths           []string
	accessiblePaths        []string
	terminalBell           bool
	showSystemPrompt       bool
	debugToolCalls         bool
	autoExecute            bool
	printMessages          bool
	baseURL                string
}

func (f *layerFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "backend", "", "LLM backend (openrouter, openai, ollama)")
	fs.StringVar(&f.model, "model", "", "Model to use for the agent")
	fs.StringVar(&f.systemPrompt, "system-prompt", "", "System prompt (empty string disables it)")
	fs.Uint64Var(&f.timeoutSeconds, "timeout-seconds", 0, "Timeout for API requests and commands in seconds")
	fs.Uint8Var(&f.maxIterations, "max-iterations", 0, "Maximum number of tool calls per turn")
	fs.Uint64Var(&f.maxReadLines, "max-read-lines", 0, "Maximum number of lines returned by one file read")
	fs.StringSliceVar(&f.allowedCommandPrefixes, "allowed-command-prefixes", nil, "Command prefixes the agent may execute (comma separated)")
	fs.StringSliceVar(&f.ignoredPaths, "ignored-paths", nil, "Paths hidden from listing and reading (comma separated)")
	fs.StringSliceVar(&f.accessiblePaths, "accessible-paths", nil, "Paths the agent may access (comma separated)")
	fs.BoolVar(&f.terminalBell, "terminal-bell", false, "Ring the terminal bell when a tool call finishes")
	fs.BoolVar(&f.showSystemPrompt, "show-system-prompt", false, "Show the system prompt before starting")
	fs.BoolVar(&f.debugToolCalls, "debug-tool-calls", false, "Log tool call arguments and output")
	fs.BoolVar(&f.autoExecute, "auto-execute", false, "Execute tool calls without asking")
	fs.BoolVar(&f.printMessages, "print-messages", false, "Print API messages before sending them")
	fs.StringVar(&f.baseURL, "base-url", "", "Base URL for the API client")
}

// layer returns the config layer for the flags the user actually set.
func (f *layerFlags) layer(fs *pflag.FlagSet) (config.Layer, error) {
	var l config.Layer

	if fs.Changed("backend") {
		b, err := config.ParseBackend(f.backend)
		if err != nil {
			return config.Layer{}, err
		}
		l.Backend = &b
	}
	if fs.Changed("model") {
		l.Model = config.Ptr(f.model)
	}
	if fs.Changed("system-prompt") {
		l.SystemPrompt = config.Ptr(f.systemPrompt)
	}
	if fs.Changed("timeout-seconds") {
		l.TimeoutSeconds = config.Ptr(f.timeoutSeconds)
	}
	if fs.Changed("max-iterations") {
		l.MaxIterations = config.Ptr(f.maxIterations)
	}
	if fs.Changed("max-read-lines") {
		l.MaxReadLines = config.Ptr(f.maxReadLines)
	}
	if fs.Changed("allowed-command-prefixes") {
		l.AllowedCommandPrefixes = f.allowedCommandPrefixes
	}
	if fs.Changed("ignored-paths") {
		l.IgnoredPaths = f.ignoredPaths
	}
	if fs.Changed("accessible-paths") {
		l.AccessiblePaths = f.accessiblePaths
	}
	if fs.Changed("terminal-bell") {
		l.TerminalBell = config.Ptr(f.terminalBell)
	}
	if fs.Changed("show-system-prompt") {
		l.ShowSystemPrompt = config.Ptr(f.showSystemPrompt)
	}
	if fs.Changed("debug-tool-calls") {
		l.DebugToolCalls = config.Ptr(f.debugToolCalls)
	}
	if fs.Changed("auto-execute") {
		l.AutoExecute = config.Ptr(f.autoExecute)
	}
	if fs.Changed("print-messages") {
		l.PrintMessages = config.Ptr(f.printMessages)
	}
	if fs.Changed("base-url") {
		l.BaseURL = config.Ptr(f.baseURL)
	}

	return l, nil
}
