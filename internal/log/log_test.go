package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWriterFiltersByLevel(t *testing.T) {
	t.Setenv("GO_ENV", "")

	var buf bytes.Buffer
	if err := InitWriter(&buf, "warn"); err != nil {
		t.Fatal(err)
	}

	Info("hidden")
	Warn("shown", "port", "COM3")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "port=COM3") {
		t.Errorf("Expected warn message with attrs, got %q", out)
	}
}

func TestInitWriterRejectsBadLevel(t *testing.T) {
	if err := InitWriter(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
