package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerFromEnvJSON(t *testing.T) {
	t.Setenv("CLAIMS_LOG_FORMAT", "json")
	t.Setenv("CLAIMS_LOG_LEVEL", "info")

	var buf bytes.Buffer
	l := NewFromEnv(&buf)
	l.Debug("hidden")
	l.Info("visible", "claim_id", "CLM-1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "ai-claims" {
		t.Errorf("expected service field, got %v", rec["service"])
	}
	if rec["claim_id"] != "CLM-1" {
		t.Errorf("expected claim_id field, got %v", rec["claim_id"])
	}
}

func TestSetLoggerIgnoresNil(t *testing.T) {
	custom := Discard()
	SetLogger(custom)
	SetLogger(nil)
	if Logger() != custom {
		t.Errorf("expected SetLogger(nil) to keep the previous logger")
	}
}
