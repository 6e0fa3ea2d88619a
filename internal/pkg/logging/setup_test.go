package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Samstix636/duel-value-betting-bot/internal/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) error = nil, want error")
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	var text, js bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&text, opts),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)).With("component", "matcher")

	logger.Info("pass done", "pairs", 3)
	logger.Warn("unresolved selection")

	if !strings.Contains(text.String(), "pass done") || !strings.Contains(text.String(), "unresolved selection") {
		t.Errorf("text handler output = %q", text.String())
	}
	lines := strings.Split(strings.TrimSpace(js.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("json handler lines = %d, want 1: %q", len(lines), js.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("json line: %v", err)
	}
	if rec["component"] != "matcher" || rec["msg"] != "unresolved selection" {
		t.Errorf("json record = %v", rec)
	}
}

func TestSetupLoggerFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "main.log")
	logger, closer, err := SetupLogger(&config.LoggingConfig{Level: "info", File: path}, "valuebet")
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"service":"valuebet"`) {
		t.Errorf("log file = %q, want service attr", data)
	}
}
