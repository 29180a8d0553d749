package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"alors/internal/config"
	"alors/internal/logging"
)

// Approver decides whether a tool call may run.
type Approver interface {
	Approve(ctx context.Context, tool *Tool, args map[string]any) (bool, error)
}

// Guard runs tool calls the way the config allows: behind user approval
// unless auto_execute is set, and at most max_iterations times.
type Guard struct {
	registry    *Registry
	approver    Approver
	autoExecute bool
	debug       bool
	maxCalls    int

	mu    sync.Mutex
	calls int
}

// NewGuard creates a guard over registry. approver may be nil when
// cfg.AutoExecute is set; otherwise every call is denied.
func NewGuard(registry *Registry, cfg *config.Config, approver Approver) *Guard {
	return &Guard{
		registry:    registry,
		approver:    approver,
		autoExecute: cfg.AutoExecute,
		debug:       cfg.DebugToolCalls,
		maxCalls:    int(cfg.MaxIterations),
	}
}

// Run executes a tool call through the guard.
func (g *Guard) Run(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	tool := g.registry.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrToolNotFound, name, strings.Join(g.registry.Names(), ", "))
	}

	if err := g.reserve(); err != nil {
		return nil, err
	}

	log := logging.Get(logging.CategoryTools)
	trace := log.Debug
	if g.debug {
		trace = log.Info
	}
	trace("tool call %s args=%v (%d calls left)", name, args, g.Remaining())

	if !g.autoExecute {
		approved := false
		if g.approver != nil {
			ok, err := g.approver.Approve(ctx, tool, args)
			if err != nil {
				return nil, fmt.Errorf("approval for %s failed: %w", name, err)
			}
			approved = ok
		}
		if !approved {
			log.Info("tool call %s denied", name)
			logging.Audit().ToolDenied(name)
			return nil, fmt.Errorf("%w: %s", ErrDenied, name)
		}
	}

	logging.Audit().ToolInvoke(name)
	result, err := g.registry.ExecuteTool(ctx, tool, args)
	if result != nil {
		errMsg := ""
		if !result.IsSuccess() {
			errMsg = result.Error.Error()
		}
		logging.AuditWithCall(result.CallID).ToolExec(name, result.DurationMs, result.IsSuccess(), errMsg)
		trace("tool call %s (call=%s) returned %d bytes in %dms", name, result.CallID, len(result.Result), result.DurationMs)
		if g.debug && result.Result != "" {
			log.Info("tool output %s:\n%s", result.CallID, result.Result)
		}
	}
	return result, err
}

// Remaining returns how many calls the guard still admits.
func (g *Guard) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxCalls - g.calls
}

func (g *Guard) reserve() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls >= g.maxCalls {
		return fmt.Errorf("%w (%d)", ErrIterationLimit, g.maxCalls)
	}
	g.calls++
	return nil
}
