package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsFiltersAndPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewIsolatedLogger(path)

	l.Info("GATEWAY", "copy generated", nil)
	l.Warn("GATEWAY", "gateway unavailable, using fallback", map[string]interface{}{"operation": "generate_copy"})
	l.Info("WORKFLOW", "page confirmed", map[string]interface{}{"page": "briefing"})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs(LogFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "page confirmed", all[0].Message, "newest first")

	warns, err := l.GetLogs(LogFilter{Level: "WARN"})
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "generate_copy", warns[0].Details["operation"])

	gateway, err := l.GetLogs(LogFilter{Module: "GATEWAY", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, gateway, 1)
	assert.Equal(t, "copy generated", gateway[0].Message)

	found, err := l.GetLogById(warns[0].Id)
	require.NoError(t, err)
	assert.Equal(t, warns[0].Message, found.Message)

	_, err = l.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "none.log"))
	logs, err := l.GetLogs(LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	nop := NewNopLogger()
	nop.Info("TEST", "ignored", nil)
	logs, err = nop.GetLogs(LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestGetLogsByWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.log")
	l := NewIsolatedLogger(path)

	l.Info("Hub", "Client registered", map[string]interface{}{"workflow_id": "wf-1"})
	l.Info("Hub", "Client registered", map[string]interface{}{"workflow_id": "wf-2"})
	l.Error("CONSUMER", "Failed to record stage event", map[string]interface{}{"workflow_id": "wf-1", "error": "boom"})
	require.NoError(t, l.Sync())

	logs, err := l.GetLogs(LogFilter{WorkflowId: "wf-1"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "CONSUMER", logs[0].Module)
	assert.NotEmpty(t, logs[0].Id)
	assert.NotEqual(t, logs[0].Id, logs[1].Id)
}
