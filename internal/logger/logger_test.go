package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		SetFormat("text")
		SetLevel("INFO")
	}

	return buf, cleanup
}

// jsonLines decodes every JSON log line in buf.
func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("WarnLevelFiltersDebugAndInfo", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("WARN")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("ErrorAlwaysLogged", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")
		Warn("warn message")
		Error("error message")

		assert.NotContains(t, buf.String(), "warn message")
		assert.Contains(t, buf.String(), "error message")
	})
}

func TestSetLevelIgnoresInvalid(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	SetLevel("LOUD")
	assert.Equal(t, LevelWarn, Level(currentLevel.Load()))

	SetLevel("debug")
	assert.Equal(t, LevelDebug, Level(currentLevel.Load()))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestTextFormatIncludesFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("text")
	SetLevel("INFO")

	Info("directory created", KeyPath, "/a/b", KeyRefID, "a/b")

	out := buf.String()
	assert.Contains(t, out, "directory created")
	assert.Contains(t, out, "path=/a/b")
	assert.Contains(t, out, "ref_id=a/b")
	assert.NotContains(t, out, "\x1b[", "colors must be disabled for non-terminals")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	SetLevel("INFO")

	Info("moved", KeyOldRef, "a/x", KeyNewRef, "b/x")

	entries := jsonLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "moved", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "a/x", entries[0]["old_ref"])
	assert.Equal(t, "b/x", entries[0]["new_ref"])
}

func TestContextLogging(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetFormat("json")

		lc := &LogContext{
			TraceID:   "abc123",
			SpanID:    "xyz789",
			RequestID: "host/req-1",
			Method:    "PUT",
			Path:      "/movethisdir",
			ClientIP:  "192.168.1.100",
			Subject:   "ci-bot",
		}
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "operation completed", "extra_field", "value")

		entries := jsonLines(t, buf)
		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, "abc123", entry["trace_id"])
		assert.Equal(t, "xyz789", entry["span_id"])
		assert.Equal(t, "host/req-1", entry["request_id"])
		assert.Equal(t, "PUT", entry["method"])
		assert.Equal(t, "/movethisdir", entry["path"])
		assert.Equal(t, "192.168.1.100", entry["client_ip"])
		assert.Equal(t, "ci-bot", entry["subject"])
		assert.Equal(t, "value", entry["extra_field"])
	})

	t.Run("NilContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		require.NotPanics(t, func() {
			//nolint:staticcheck // nil context is tolerated on purpose
			InfoCtx(nil, "test message")
		})
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("DebugCtxFiltered", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		DebugCtx(context.Background(), "hidden")
		assert.Empty(t, buf.String())
	})
}

func TestLogContext(t *testing.T) {
	t.Run("NewLogContext", func(t *testing.T) {
		lc := NewLogContext("192.168.1.100")
		assert.Equal(t, "192.168.1.100", lc.ClientIP)
		assert.False(t, lc.StartTime.IsZero())
		assert.GreaterOrEqual(t, lc.DurationMs(), 0.0)
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		lc := &LogContext{TraceID: "trace123", Method: "GET"}
		clone := lc.Clone()
		clone.Method = "DELETE"
		assert.Equal(t, "GET", lc.Method)
		assert.Equal(t, "trace123", clone.TraceID)
	})

	t.Run("CloneNil", func(t *testing.T) {
		var lc *LogContext
		assert.Nil(t, lc.Clone())
		assert.Zero(t, lc.DurationMs())
	})

	t.Run("WithSubjectAndPath", func(t *testing.T) {
		lc := NewLogContext("10.0.0.1")
		lc2 := lc.WithSubject("alice").WithPath("/a")
		assert.Equal(t, "alice", lc2.Subject)
		assert.Equal(t, "/a", lc2.Path)
		assert.Empty(t, lc.Subject)
	})
}

func TestFieldHelpers(t *testing.T) {
	t.Run("ErrHandlesNil", func(t *testing.T) {
		assert.Equal(t, "", Err(nil).Key)
	})

	t.Run("ErrFormatsError", func(t *testing.T) {
		attr := Err(assert.AnError)
		assert.Equal(t, KeyError, attr.Key)
		assert.Contains(t, attr.Value.String(), "assert.AnError")
	})

	t.Run("RefHelpers", func(t *testing.T) {
		assert.Equal(t, KeyOldRef, OldRef("a").Key)
		assert.Equal(t, KeyNewRef, NewRef("b").Key)
		assert.Equal(t, "b", NewRef("b").Value.String())
	})
}

func TestConcurrentLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Info("concurrent", "i", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, jsonLines(t, buf), 20)
}

func TestInitWithWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	_, cleanup := captureOutput()
	defer cleanup()

	InitWithWriter(buf, "DEBUG", "json", false)
	Debug("via writer")

	entries := jsonLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "via writer", entries[0]["msg"])
}

func TestInitFileOutput(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	path := t.TempDir() + "/filebank.log"
	require.NoError(t, Init(Config{Level: "INFO", Format: "json", Output: path}))

	err := Init(Config{Output: t.TempDir() + "/missing/dir/log"})
	assert.Error(t, err)
}
