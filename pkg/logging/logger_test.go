package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("browser", "firefox").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got %q: %v", buf.String(), err)
	}
	if entry["browser"] != "firefox" {
		t.Errorf("browser field = %v, want firefox", entry["browser"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message field = %v, want hello", entry["message"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerFromConfigLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := NewLoggerFromConfig(&Config{Level: "error", Format: "json", Output: "discard"})

	if logger.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("logger level = %v, want error", logger.GetLevel())
	}
}

func TestSetDefault(t *testing.T) {
	old := *Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(New(&buf))

	Warn().Msg("careful")

	if !strings.Contains(buf.String(), "careful") {
		t.Errorf("expected default logger output to contain message, got %q", buf.String())
	}
}
