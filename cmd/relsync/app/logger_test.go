package app

import "testing"

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{"default", &Config{}, "info"},
		{"verbose", &Config{Verbose: true}, "debug"},
		{"quiet", &Config{Quiet: true}, "warn"},
		{"both prefers quiet", &Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit level wins", &Config{LogLevel: "error", Verbose: true}, "error"},
		{"env level", &Config{LogLevel: "trace"}, "trace"},
		{"invalid level falls back", &Config{LogLevel: "loud"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.want {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := validateLogLevel(level); got != level {
			t.Errorf("validateLogLevel(%q) = %q", level, got)
		}
	}
	if got := validateLogLevel("chatty"); got != "info" {
		t.Errorf("validateLogLevel(chatty) = %q, want info", got)
	}
}
