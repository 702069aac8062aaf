package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.ReleaseMode)
	var buf bytes.Buffer
	return NewWithWriter(&buf, level), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := getLogLevel(in); got != want {
			t.Errorf("getLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBookingHelpersWriteStructuredFields(t *testing.T) {
	log, buf := newJSONLogger(t, "info")
	ctx := context.Background()

	log.LogBookingCreated(ctx, "bk-1", "sch-1", "usr-1", []string{"A1", "B1"})
	log.LogBookingStatusChanged(ctx, "bk-1", "pending", "booked")
	log.LogLayoutUpdated(ctx, "bus-1", 38)

	entries := decodeLines(t, buf)
	if len(entries) != 3 {
		t.Fatalf("got %d log lines, want 3", len(entries))
	}
	if entries[0]["msg"] != "Booking Created" || entries[0]["schedule_id"] != "sch-1" {
		t.Errorf("booking created entry = %v", entries[0])
	}
	if entries[1]["to"] != "booked" {
		t.Errorf("status change entry = %v", entries[1])
	}
	if entries[2]["total_seats"] != float64(38) {
		t.Errorf("layout entry = %v", entries[2])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	log, buf := newJSONLogger(t, "warn")

	log.DebugWithContext(context.Background(), "hidden", nil)
	log.WithError(errors.New("boom")).Warn("shown")

	entries := decodeLines(t, buf)
	if len(entries) != 1 || entries[0]["error"] != "boom" {
		t.Errorf("entries = %v", entries)
	}
}
