package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, Info), "channel")
	logger.Info("push dropped", F("event", "progress_update"), F("reason", "stale generation"), F("gen", uint64(3)))

	line := buf.String()
	for _, want := range []string{"level=info", `msg="push dropped"`, "component=channel", "event=progress_update", `reason="stale generation"`, "gen=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Warn)
	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Error("shown", F("err", errors.New("bad thing")))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected lower levels to be filtered: %q", out)
	}
	if !strings.Contains(out, `err="bad thing"`) {
		t.Fatalf("expected error field: %q", out)
	}
}

func TestNopDiscardsEverything(t *testing.T) {
	if Nop().Enabled(Error) {
		t.Fatalf("nop logger must not enable any level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": Debug, "WARNING": Warn, "error": Error, "": Info, "nonsense": Info}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ui.log")
	logger, closer, err := OpenFile(path, Debug)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Debug("tick", F("dur", 1500*time.Millisecond))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "dur=1.5s") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}
