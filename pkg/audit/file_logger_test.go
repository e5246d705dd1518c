package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewFileLogger(FileLoggerConfig{BasePath: tmpDir, MaxSize: 1024 * 1024, MaxFiles: 5})
	require.NoError(t, err)
	defer logger.Close()

	event := NewEvent(EventTypeSubscriberCreate, EventStatusSuccess)
	event.Subscriber = "Alice"
	event.PhoneNumber = "555-0100"
	event.Plan = "Basic"
	event.Message = "Subscriber created"

	require.NoError(t, logger.Log(context.Background(), event))

	// Verify log file was created
	assert.FileExists(t, filepath.Join(tmpDir, "audit.log"))
	assert.Equal(t, filepath.Join(tmpDir, "audit.log"), logger.Path())

	events, err := ReadLogs(tmpDir, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, EventTypeSubscriberCreate, events[0].EventType)
	assert.Equal(t, "Alice", events[0].Subscriber)
	assert.Equal(t, "Basic", events[0].Plan)
}

func TestFileLogger_Appends(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	logger, err := NewFileLogger(DefaultFileLoggerConfig(tmpDir))
	require.NoError(t, err)
	require.NoError(t, logger.Log(ctx, NewEvent(EventTypeSubscriberCreate, EventStatusSuccess)))
	require.NoError(t, logger.Close())

	// A second process appends to the same file
	logger, err = NewFileLogger(DefaultFileLoggerConfig(tmpDir))
	require.NoError(t, err)
	defer logger.Close()
	require.NoError(t, logger.Log(ctx, NewEvent(EventTypeUsageRecord, EventStatusDenied)))

	events, err := ReadLogs(tmpDir, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeSubscriberCreate, events[0].EventType)
	assert.Equal(t, EventStatusDenied, events[1].Status)
}

func TestFileLogger_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	logger, err := NewFileLogger(FileLoggerConfig{BasePath: tmpDir, Rotate: true, MaxSize: 200, MaxFiles: 2})
	require.NoError(t, err)
	defer logger.Close()

	for i := 0; i < 20; i++ {
		event := NewEvent(EventTypeUsageRecord, EventStatusSuccess)
		event.Subscriber = strings.Repeat("x", 50)
		require.NoError(t, logger.Log(ctx, event))
	}

	rotated, err := filepath.Glob(filepath.Join(tmpDir, "audit-*.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, rotated)
	assert.LessOrEqual(t, len(rotated), 2)

	info, err := os.Stat(filepath.Join(tmpDir, "audit.log"))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(1024))
}

func TestFileLogger_Closed(t *testing.T) {
	logger, err := NewFileLogger(DefaultFileLoggerConfig(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	err = logger.Log(context.Background(), NewEvent(EventTypeSubscriberCreate, EventStatusSuccess))
	assert.Error(t, err)
}

func TestNewFileLogger_RequiresPath(t *testing.T) {
	_, err := NewFileLogger(FileLoggerConfig{})
	assert.Error(t, err)
}

func TestReadLogs(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		events, err := ReadLogs(t.TempDir(), 5)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("keeps the newest", func(t *testing.T) {
		tmpDir := t.TempDir()
		logger, err := NewFileLogger(DefaultFileLoggerConfig(tmpDir))
		require.NoError(t, err)
		defer logger.Close()

		for _, name := range []string{"a", "b", "c", "d"} {
			event := NewEvent(EventTypeSubscriberCreate, EventStatusSuccess)
			event.Subscriber = name
			require.NoError(t, logger.Log(context.Background(), event))
		}

		events, err := ReadLogs(tmpDir, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "c", events[0].Subscriber)
		assert.Equal(t, "d", events[1].Subscriber)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "audit.log"), []byte("{not json\n"), 0644))

		_, err := ReadLogs(tmpDir, 0)
		assert.Error(t, err)
	})
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventTypeSubscriberUpdate, EventStatusSuccess)
	b := NewEvent(EventTypeSubscriberUpdate, EventStatusSuccess)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.NotNil(t, a.Metadata)
}

func TestChangeDetailsEmpty(t *testing.T) {
	var nilChanges *ChangeDetails
	assert.True(t, nilChanges.Empty())
	assert.True(t, (&ChangeDetails{}).Empty())
	assert.False(t, (&ChangeDetails{After: map[string]interface{}{"plan": "Turbo"}}).Empty())
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.NoError(t, l.Log(context.Background(), NewEvent(EventTypeSubscriberCreate, EventStatusSuccess)))
	assert.NoError(t, l.Close())
}
