package tools

import (
	"context"
	"errors"
	"math"
	"testing"

	"alors/internal/config"
	"alors/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type approverFunc func(ctx context.Context, tool *Tool, args map[string]any) (bool, error)

func (f approverFunc) Approve(ctx context.Context, tool *Tool, args map[string]any) (bool, error) {
	return f(ctx, tool, args)
}

func guardRegistry(t *testing.T, calls *int) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Tool{
		Name: "count",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			*calls++
			return "ok", nil
		},
	}))
	return reg
}

func TestGuard_AutoExecuteSkipsApproval(t *testing.T) {
	var calls int
	cfg := config.Default()
	cfg.AutoExecute = true

	g := NewGuard(guardRegistry(t, &calls), &cfg, nil)
	res, err := g.Run(context.Background(), "count", nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", res.Result)
	assert.Equal(t, 1, calls)
}

func TestGuard_ApprovalRequired(t *testing.T) {
	var calls int
	cfg := config.Default()

	var asked []string
	approve := true
	approver := approverFunc(func(ctx context.Context, tool *Tool, args map[string]any) (bool, error) {
		asked = append(asked, tool.Name)
		return approve, nil
	})

	g := NewGuard(guardRegistry(t, &calls), &cfg, approver)

	_, err := g.Run(context.Background(), "count", nil)
	require.NoError(t, err)

	approve = false
	_, err = g.Run(context.Background(), "count", nil)
	assert.ErrorIs(t, err, ErrDenied)

	assert.Equal(t, []string{"count", "count"}, asked)
	assert.Equal(t, 1, calls)
}

func TestGuard_NoApproverDenies(t *testing.T) {
	var calls int
	cfg := config.Default()

	g := NewGuard(guardRegistry(t, &calls), &cfg, nil)
	_, err := g.Run(context.Background(), "count", nil)

	assert.ErrorIs(t, err, ErrDenied)
	assert.Zero(t, calls)
}

func TestGuard_ApproverError(t *testing.T) {
	var calls int
	cfg := config.Default()
	boom := errors.New("stdin closed")

	g := NewGuard(guardRegistry(t, &calls), &cfg, approverFunc(func(context.Context, *Tool, map[string]any) (bool, error) {
		return false, boom
	}))
	_, err := g.Run(context.Background(), "count", nil)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, calls)
}

func TestGuard_IterationLimit(t *testing.T) {
	var calls int
	cfg := config.Default()
	cfg.AutoExecute = true
	cfg.MaxIterations = 2

	g := NewGuard(guardRegistry(t, &calls), &cfg, nil)
	ctx := context.Background()

	_, err := g.Run(ctx, "count", nil)
	require.NoError(t, err)
	_, err = g.Run(ctx, "count", nil)
	require.NoError(t, err)
	assert.Zero(t, g.Remaining())

	_, err = g.Run(ctx, "count", nil)
	assert.ErrorIs(t, err, ErrIterationLimit)
	assert.Equal(t, 2, calls)
}

func TestGuard_UnknownToolDoesNotConsumeBudget(t *testing.T) {
	var calls int
	cfg := config.Default()
	cfg.AutoExecute = true

	g := NewGuard(guardRegistry(t, &calls), &cfg, nil)
	_, err := g.Run(context.Background(), "missing", nil)

	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Contains(t, err.Error(), "available: count")
	assert.Equal(t, int(cfg.MaxIterations), g.Remaining())
}

func TestGuard_DebugToolCallsLogsAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logging.Initialize(zap.New(core), nil)
	t.Cleanup(func() { logging.Initialize(nil, nil) })

	var calls int
	cfg := config.Default()
	cfg.AutoExecute = true
	cfg.DebugToolCalls = true

	g := NewGuard(guardRegistry(t, &calls), &cfg, nil)
	_, err := g.Run(context.Background(), "count", map[string]any{"x": 1})
	require.NoError(t, err)

	assert.NotZero(t, logs.FilterMessageSnippet("tool call count").Len())
	assert.NotZero(t, logs.FilterMessageSnippet("tool output").Len())
}

func TestEnvFromConfig(t *testing.T) {
	cfg := config.Default()
	env := EnvFromConfig(&cfg)

	assert.Equal(t, cfg.AccessiblePaths, env.Policy.AccessiblePaths)
	assert.Equal(t, cfg.IgnoredPaths, env.Policy.IgnoredPaths)
	assert.Equal(t, cfg.AllowedCommandPrefixes, env.Policy.AllowedCommandPrefixes)
	assert.Equal(t, 1000, env.MaxReadLines)
	assert.Equal(t, cfg.Timeout(), env.CommandTimeout)
}

func TestEnvFromConfig_HugeMaxReadLinesStaysACap(t *testing.T) {
	cfg := config.Default()
	cfg.MaxReadLines = math.MaxUint64

	env := EnvFromConfig(&cfg)

	assert.Equal(t, math.MaxInt, env.MaxReadLines)
	assert.Positive(t, env.MaxReadLines)
}
