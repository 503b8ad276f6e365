package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func reset() {
	SetVerbose(false)
	SetTimestamps(false)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetLevel(LevelInfo)
	if IsVerbose() {
		t.Error("expected LevelInfo not to be verbose")
	}
}

func TestLevels(t *testing.T) {
	defer reset()

	tests := []struct {
		name  string
		level Level
		want  []string
		skip  []string
	}{
		{"default", LevelWarn, []string{"[WARN] w", "[ERROR] e"}, []string{"[DEBUG]", "[INFO]"}},
		{"info", LevelInfo, []string{"[INFO] i", "[WARN] w", "[ERROR] e"}, []string{"[DEBUG]"}},
		{"debug", LevelDebug, []string{"[DEBUG] d", "[INFO] i", "=== s ==="}, nil},
		{"error", LevelError, []string{"[ERROR] e"}, []string{"[WARN]", "[INFO]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetOutput(&buf)
			SetLevel(tt.level)

			Debug("d")
			Info("i")
			Warn("w")
			Error("e")
			Section("s")

			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in output %q", s, out)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("did not expect %q in output %q", s, out)
				}
			}
		})
	}
}

func TestFormatArgs(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("retrieved %d chunks for %q", 3, "dune")

	if got := buf.String(); got != "[DEBUG] retrieved 3 chunks for \"dune\"\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTimestamps(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	SetTimestamps(true)
	now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local) }

	Info("GET / %d", 200)

	if got := buf.String(); got != "2024-05-01 09:30:00 [INFO] GET / 200\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("x")
		}()
		go func() {
			defer wg.Done()
			_ = IsVerbose()
			Warn("y")
		}()
	}
	wg.Wait()
}
