package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newCloudRunHandler(slog.LevelInfo, &buf)).With("request_id", "r-1")

	log.Debug("hidden")
	log.Warn("export failed", "format", "xlsx")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if event["severity"] != "WARNING" || event["message"] != "export failed" {
		t.Fatalf("unexpected event: %v", event)
	}
	data, _ := event["data"].(map[string]any)
	if data["format"] != "xlsx" || data["request_id"] != "r-1" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestNewParsesLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := getSlogLevel(in); got != want {
			t.Errorf("getSlogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	log := New("warn", NewTestHandler)
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
	log := slog.New(NewTestHandler(slog.LevelDebug))
	ctx := ToContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Fatal("expected stored logger")
	}
	if !IsDebugEnabled(ctx) {
		t.Fatal("expected debug enabled")
	}
}
