package shell

import (
	"alors/internal/tools"
)

// RegisterAll registers all shell execution tools with the given registry.
func RegisterAll(registry *tools.Registry, env *tools.Env) error {
	allTools := []*tools.Tool{
		RunCommandTool(env),
	}

	for _, tool := range allTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	return nil
}
