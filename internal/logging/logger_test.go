package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewProducesUsableLogger(t *testing.T) {
	log := New(Config{Level: "debug", Format: "json", Output: "stdout"})
	if log == nil {
		t.Fatal("New returned nil logger")
	}
	log.Info("smoke test", "component", "logging")
}

func TestNewDefaultsToTextOnStdout(t *testing.T) {
	log := New(Config{})
	if log == nil {
		t.Fatal("New returned nil logger")
	}
}
