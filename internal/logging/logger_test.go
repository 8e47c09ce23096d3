package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewLogger(&buf, "multiply", zerolog.DebugLevel)

	logger.Debug("multiplication completed",
		String("strategy", "sparse"),
		Int("workers", 4),
		Int64("terms", 1234),
		Uint64("estimate", 1200),
		Float64("ratio", 1.5),
		Duration("elapsed", 3*time.Millisecond),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "multiply" {
		t.Errorf("expected component 'multiply', got %v", entry["component"])
	}
	if entry["strategy"] != "sparse" {
		t.Errorf("expected strategy 'sparse', got %v", entry["strategy"])
	}
	if entry["workers"] != float64(4) {
		t.Errorf("expected workers 4, got %v", entry["workers"])
	}
	if entry["level"] != "debug" {
		t.Errorf("expected level debug, got %v", entry["level"])
	}
}

func TestZerologAdapter_LevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test", zerolog.InfoLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message should be filtered at info level, got %q", buf.String())
	}

	logger.Error("failed", errors.New("overflow"))
	if !strings.Contains(buf.String(), `"error":"overflow"`) {
		t.Errorf("error field missing: %q", buf.String())
	}
}

func TestNewConsoleLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "polycalc", zerolog.InfoLevel)

	logger.Info("product ready", Int("terms", 70))
	out := buf.String()
	if json.Valid(buf.Bytes()) {
		t.Errorf("console output should not be JSON: %q", out)
	}
	for _, want := range []string{"product ready", "terms=70", "component=polycalc"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("console output to a buffer should be uncolored: %q", out)
	}
}

func TestNewLoggerFor(t *testing.T) {
	t.Parallel()
	t.Run("Buffer gets JSON lines", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewLoggerFor(&buf, "polycalc", zerolog.InfoLevel).Info("ready")
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
		}
		if entry["component"] != "polycalc" {
			t.Errorf("component = %v", entry["component"])
		}
	})

	t.Run("Regular file gets JSON lines", func(t *testing.T) {
		t.Parallel()
		f, err := os.CreateTemp(t.TempDir(), "log")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		NewLoggerFor(f, "polycalc", zerolog.InfoLevel).Info("ready")
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatal(err)
		}
		if !json.Valid(bytes.TrimSpace(data)) {
			t.Errorf("expected a JSON line, got %q", data)
		}
	})
}

func TestNop(t *testing.T) {
	t.Parallel()
	// Must not panic.
	Nop().Info("ignored", String("k", "v"))
	Nop().Error("ignored", errors.New("x"))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
