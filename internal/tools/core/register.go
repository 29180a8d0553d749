package core

import (
	"alors/internal/tools"
)

// RegisterAll registers all core filesystem tools with the given registry.
func RegisterAll(registry *tools.Registry, env *tools.Env) error {
	allTools := []*tools.Tool{
		ReadFileTool(env),
		WriteFileTool(env),
		ListFilesTool(env),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
