package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/loadprogress/internal/config"
)

// TestParseLevel verifies config level names and the info fallback.
func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warn": slog.LevelWarn,
		"error": slog.LevelError, "bogus": slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestNewHandlerJSON verifies the json format emits one decodable object per
// record and honours the level.
func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, config.LoggingConfig{Level: "warn", Format: "json"}))
	log.Info("hidden")
	log.Warn("shown", "exercise", "Squats")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "shown" || rec["exercise"] != "Squats" {
		t.Errorf("record = %v", rec)
	}
}

// TestNewWritesFile verifies file output goes through the rotating writer and
// that the .log suffix is appended.
func TestNewWritesFile(t *testing.T) {
	stdout := false
	base := filepath.Join(t.TempDir(), "app")
	log, closer := New(config.LoggingConfig{Level: "info", Format: "text", File: base, MaxSizeMB: 1, Stdout: &stdout})
	log.Info("set added")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(base + ".log")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "set added") {
		t.Errorf("log file = %q", data)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// TestCombinedWriterContinuesPastFailure verifies that one broken sink does
// not starve the others.
func TestCombinedWriterContinuesPastFailure(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCombinedWriter(failWriter{}, &buf)
	n, err := cw.Write([]byte("hello"))
	if err == nil {
		t.Error("expected combined error")
	}
	if n != 5 || buf.String() != "hello" {
		t.Errorf("n = %d, buf = %q", n, buf.String())
	}
}
