package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditToolExec(t *testing.T) {
	logs := observe(t, nil)

	AuditWithCall("call-1").ToolExec("read_file", 12, true, "")
	Audit().ToolExec("run_command", 3, false, "exit status 1")

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, "tool_complete", ok["event"])
	assert.Equal(t, "read_file", ok["target"])
	assert.Equal(t, "call-1", ok["action"])
	assert.Equal(t, true, ok["success"])
	assert.Contains(t, ok["fact"], `/tool_complete, "read_file", "call-1", true, 12).`)

	failed := entries[1].ContextMap()
	assert.Equal(t, "tool_error", failed["event"])
	assert.Equal(t, "exit status 1", failed["error"])
}

func TestAuditSafetyCheck(t *testing.T) {
	logs := observe(t, nil)

	Audit().SafetyCheck("path", `/tmp/"quoted"`, false, "not allowed")

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "safety_block", fields["event"])
	assert.Contains(t, fields["fact"], `/safety_block, /path, "/tmp/\"quoted\"", false).`)
}

func TestAuditConfigWrite(t *testing.T) {
	logs := observe(t, nil)

	Audit().ConfigWrite("/cfg/config.toml", nil)
	Audit().ConfigWrite("/ro/config.toml", errors.New("read-only file system"))

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0].ContextMap()["success"])
	assert.Equal(t, false, entries[1].ContextMap()["success"])
	assert.Equal(t, "read-only file system", entries[1].ContextMap()["error"])
}

func TestAuditDisabledCategory(t *testing.T) {
	logs := observe(t, map[Category]bool{CategoryTools: true})

	Audit().ToolInvoke("read_file")

	assert.Zero(t, logs.FilterLoggerName("audit").Len())
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, `a\"b\\c\nd\te`, escapeString("a\"b\\c\nd\te"))
	assert.Equal(t, "plain", escapeString("plain"))
}

func BenchmarkEscapeString(b *testing.B) {
	input := strings.Repeat("Hello \"World\"\nThis is a backslash: \\ \tAnd a tab.", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = escapeString(input)
	}
}

func BenchmarkEscapeStringNoEscapes(b *testing.B) {
	input := strings.Repeat("Hello World This is a normal string without special chars.", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = escapeString(input)
	}
}
