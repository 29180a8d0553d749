package config

import (
	"fmt"
	"strings"
)

// Backend identifies an OpenAI-compatible chat completion API.
type Backend string

const (
	BackendOpenRouter Backend = "openrouter"
	BackendOpenAI     Backend = "openai"
	BackendOllama     Backend = "ollama"
)

// DefaultBackend is used when neither the file nor the CLI picks one.
const DefaultBackend = BackendOpenRouter

// BackendDefaults holds per-backend defaults.
type BackendDefaults struct {
	BaseURL string
}

var backendDefaults = map[Backend]BackendDefaults{
	BackendOpenRouter: {BaseURL: "https://openrouter.ai/api/v1"},
	BackendOpenAI:     {BaseURL: "https://api.openai.com/v1"},
	BackendOllama:     {BaseURL: "http://localhost:11434/v1"},
}

// Backends lists every known backend in display order.
func Backends() []Backend {
	return []Backend{BackendOpenRouter, BackendOpenAI, BackendOllama}
}

// ParseBackend parses a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownBackend, s, Backends())
	}
	return b, nil
}

// Valid reports whether b is a known backend.
func (b Backend) Valid() bool {
	_, ok := backendDefaults[b]
	return ok
}

// Defaults returns the backend's defaults. Unknown backends get the defaults
// of DefaultBackend.
func (b Backend) Defaults() BackendDefaults {
	if d, ok := backendDefaults[b]; ok {
		return d
	}
	return backendDefaults[DefaultBackend]
}

func (b Backend) String() string {
	return string(b)
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown names.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
