package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names an audit event. It doubles as the fact atom.
type AuditEventType string

const (
	// Tool execution -> tool_exec/6
	AuditToolInvoke   AuditEventType = "tool_invoke"
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"
	AuditToolDenied   AuditEventType = "tool_denied"

	// Sandbox decisions -> safety_check/5
	AuditSafetyAllow AuditEventType = "safety_allow"
	AuditSafetyBlock AuditEventType = "safety_block"

	// Config persistence -> config_write/3
	AuditConfigWrite AuditEventType = "config_write"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	Timestamp  int64          // Unix milliseconds
	EventType  AuditEventType // Fact atom
	Target     string         // Tool name, path or command
	Action     string         // Call ID or check kind
	Success    bool
	DurationMs int64
	Error      string
	Message    string
}

// AuditLogger writes audit events to the "audit" child of the root logger.
type AuditLogger struct {
	callID string
}

// Audit returns an unscoped audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithCall scopes audit events to one tool call.
func AuditWithCall(callID string) *AuditLogger {
	return &AuditLogger{callID: callID}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsCategoryEnabled(CategoryAudit) {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Action == "" && a.callID != "" {
		event.Action = a.callID
	}

	mu.RLock()
	root := base
	mu.RUnlock()

	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.String("target", event.Target),
		zap.Bool("success", event.Success),
		zap.String("fact", auditFact(event)),
	}
	if event.Action != "" {
		fields = append(fields, zap.String("action", event.Action))
	}
	if event.DurationMs > 0 {
		fields = append(fields, zap.Int64("dur_ms", event.DurationMs))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}

	msg := event.Message
	if msg == "" {
		msg = string(event.EventType)
	}
	root.Named(string(CategoryAudit)).Info(msg, fields...)
}

// auditFact renders an event as a Datalog-style fact string.
func auditFact(e AuditEvent) string {
	switch e.EventType {
	case AuditToolInvoke, AuditToolComplete, AuditToolError, AuditToolDenied:
		return fmt.Sprintf("tool_exec(%d, /%s, \"%s\", \"%s\", %v, %d).",
			e.Timestamp, e.EventType, escapeString(e.Target), escapeString(e.Action), e.Success, e.DurationMs)

	case AuditSafetyAllow, AuditSafetyBlock:
		return fmt.Sprintf("safety_check(%d, /%s, /%s, \"%s\", %v).",
			e.Timestamp, e.EventType, e.Action, escapeString(e.Target), e.Success)

	case AuditConfigWrite:
		return fmt.Sprintf("config_write(%d, \"%s\", %v).",
			e.Timestamp, escapeString(e.Target), e.Success)

	default:
		return fmt.Sprintf("audit_event(%d, /%s, \"%s\", %v).",
			e.Timestamp, e.EventType, escapeString(e.Message), e.Success)
	}
}

func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/10)

	for _, c := range s {
		switch c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// ToolInvoke logs a tool call about to run
func (a *AuditLogger) ToolInvoke(toolName string) {
	a.Log(AuditEvent{
		EventType: AuditToolInvoke,
		Target:    toolName,
		Success:   true,
		Message:   fmt.Sprintf("Tool %s invoked", toolName),
	})
}

// ToolDenied logs a tool call the user refused
func (a *AuditLogger) ToolDenied(toolName string) {
	a.Log(AuditEvent{
		EventType: AuditToolDenied,
		Target:    toolName,
		Message:   fmt.Sprintf("Tool %s denied", toolName),
	})
}

// ToolExec logs tool execution
func (a *AuditLogger) ToolExec(toolName string, durationMs int64, success bool, errMsg string) {
	eventType := AuditToolComplete
	if !success {
		eventType = AuditToolError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     toolName,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("Tool %s (%dms, success=%v)", toolName, durationMs, success),
	})
}

// SafetyCheck logs a sandbox decision. kind is "path" or "command".
func (a *AuditLogger) SafetyCheck(kind, target string, allowed bool, reason string) {
	eventType := AuditSafetyAllow
	if !allowed {
		eventType = AuditSafetyBlock
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Action:    kind,
		Target:    target,
		Success:   allowed,
		Error:     reason,
		Message:   fmt.Sprintf("Sandbox %s: %s %s", eventType, kind, target),
	})
}

// ConfigWrite logs a config file rewrite
func (a *AuditLogger) ConfigWrite(path string, err error) {
	e := AuditEvent{
		EventType: AuditConfigWrite,
		Target:    path,
		Success:   err == nil,
		Message:   fmt.Sprintf("Config written: %s", path),
	}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}
