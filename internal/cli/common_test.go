package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		errors int
		want   int
	}{
		{0, 0},
		{1, 1},
		{125, 125},
		{400, MaxExitCode},
		{-1, 1},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.errors); got != tt.want {
			t.Errorf("ExitCode(%d) = %d, want %d", tt.errors, got, tt.want)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	var text bytes.Buffer
	if err := PrintVersion(&text, "dieselopt", false); err != nil {
		t.Fatalf("PrintVersion() error = %v", err)
	}
	if !strings.HasPrefix(text.String(), "dieselopt v"+Version+"\n") {
		t.Errorf("unexpected text output:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := PrintVersion(&js, "dieselopt", true); err != nil {
		t.Fatalf("PrintVersion() error = %v", err)
	}
	var decoded struct {
		Tool        string      `json:"tool"`
		VersionInfo VersionInfo `json:"version_info"`
	}
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, js.String())
	}
	if decoded.Tool != "dieselopt" || decoded.VersionInfo.Version != Version {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		debug   bool
		want    []string
	}{
		{"quiet", false, false, []string{"WARN", "ERROR"}},
		{"verbose", true, false, []string{"INFO", "WARN", "ERROR"}},
		{"debug", true, true, []string{"INFO", "DEBUG", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerTo(&buf, tt.verbose, tt.debug)
			l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

			l.Info("info %d", 1)
			l.Debug("debug %d", 2)
			l.Warn("warn %d", 3)
			l.Error("error %d", 4)

			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(tt.want), buf.String())
			}
			for i, level := range tt.want {
				prefix := "[" + level + "] 03:04:05 " + l.RunID + ": "
				if !strings.HasPrefix(lines[i], prefix) {
					t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
				}
			}
		})
	}
}

func TestLoggerRunID(t *testing.T) {
	l := NewLoggerTo(&bytes.Buffer{}, false, false)
	if len(l.RunID) != 8 {
		t.Errorf("RunID = %q, want 8 characters", l.RunID)
	}
	next := l.NewRun()
	if next.RunID == l.RunID {
		t.Error("NewRun() kept the run ID")
	}
	if next.Verbose != l.Verbose || next.out != l.out {
		t.Error("NewRun() changed the logger settings")
	}
}
