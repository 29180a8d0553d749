package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"alors/internal/logging"

	"github.com/adrg/xdg"
	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
)

// RelativePath is the config file location below the XDG config home.
const RelativePath = "alors/config.toml"

// DefaultPath returns $XDG_CONFIG_HOME/alors/config.toml, creating the
// alors directory if needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(RelativePath)
	if err != nil {
		return "", fmt.Errorf("failed to locate config file: %w", err)
	}
	return path, nil
}

// Load assembles the effective configuration from the file at path, the
// process environment and cli. It keeps the file in sync with the
// file-derived state so new settings show up for the user.
func Load(path string, cli *Layer) (*Config, error) {
	return load(path, cli, os.Stdout, os.Getenv)
}

func load(path string, cli *Layer, out io.Writer, getenv func(string) string) (*Config, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	fileLayer := parseFileLayer(path, existing)

	onDisk := Default()
	onDisk.Merge(&fileLayer)

	encoded, err := onDisk.EncodeTOML()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(encoded, existing) {
		err := writeAtomic(path, encoded)
		logging.Audit().ConfigWrite(path, err)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			fmt.Fprintf(out, "Created default config at: %s\n", path)
		}
		logging.ConfigDebug("normalized config file %s (%d bytes)", path, len(encoded))
	}

	envLayer, err := EnvLayer(getenv)
	if err != nil {
		logging.ConfigWarn("ignoring environment overrides: %v", err)
		envLayer = Layer{}
	}
	if !envLayer.IsEmpty() {
		logging.ConfigDebug("applying environment overrides")
	}
	if cli != nil && !cli.IsEmpty() {
		logging.ConfigDebug("applying command line overrides")
	}

	effective := onDisk
	effective.Merge(&envLayer)
	effective.Merge(cli)

	logging.ConfigDebug("loaded config: backend=%s model=%s base_url=%s", effective.Backend, effective.Model, effective.BaseURL)
	return &effective, nil
}

// ReadFile returns the configuration stored at path merged over the
// defaults, without environment or CLI layers and without writing anything.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	layer := parseFileLayer(path, data)
	cfg := Default()
	cfg.Merge(&layer)
	return &cfg, nil
}

// parseFileLayer decodes a config file. Unparsable content yields an empty
// layer so a broken file degrades to the defaults.
func parseFileLayer(path string, data []byte) Layer {
	var layer Layer
	if len(data) == 0 {
		return layer
	}
	if err := toml.Unmarshal(data, &layer); err != nil {
		logging.ConfigWarn("failed to parse %s, falling back to defaults: %v", path, err)
		return Layer{}
	}
	return layer
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
