package model

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("SQL_DSN", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, InitDB())
	t.Cleanup(func() {
		_ = CloseDB()
		DB = nil
	})
}

func TestRequestLogRoundTrip(t *testing.T) {
	setupTestDB(t)

	RecordRequestLog(&RequestLog{
		RequestId: "r1", Mode: "video_plan", Provider: "gemini",
		StatusCode: 200, Success: true, DurationMs: 42, PromptTokens: 120,
	})
	RecordRequestLog(&RequestLog{
		RequestId: "r2", Mode: "loop_sequence", Provider: "gemini",
		StatusCode: 400, Success: false,
	})

	planLogs, err := SearchRequestLogs("video_plan", 10)
	require.NoError(t, err)
	require.Len(t, planLogs, 1)
	assert.Equal(t, "r1", planLogs[0].RequestId)
	assert.True(t, planLogs[0].Success)
	assert.Greater(t, planLogs[0].CreatedAt, int64(0))

	all, err := SearchRequestLogs("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordRequestLogWithoutDB(t *testing.T) {
	// Must be a no-op, not a panic.
	RecordRequestLog(&RequestLog{RequestId: "r3"})
}

func TestPing(t *testing.T) {
	assert.Error(t, Ping(context.Background()))
	setupTestDB(t)
	assert.NoError(t, Ping(context.Background()))
}
