package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExtractTimestampTextLine(t *testing.T) {
	ts := extractTimestamp("[2024-01-15 10:30:45] [INFO] hub is running addr=http://192.168.1.10:3000")
	want := time.Date(2024, 1, 15, 10, 30, 45, 0, time.Local)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

func TestExtractTimestampJSONLine(t *testing.T) {
	ts := extractTimestamp(`{"time":"2024-01-15T10:30:45.123Z","level":"INFO","msg":"hub is running"}`)
	if ts.IsZero() {
		t.Fatal("expected timestamp, got zero")
	}
	if ts.Year() != 2024 || ts.Month() != time.January || ts.Day() != 15 {
		t.Errorf("unexpected date: %v", ts)
	}
}

func TestExtractTimestampAbsent(t *testing.T) {
	for _, line := range []string{
		"plain text without any timestamp",
		"",
		"[not a stamp] [INFO] bracketed but wrong",
		`{"level":"INFO","msg":"no time field"}`,
	} {
		if ts := extractTimestamp(line); !ts.IsZero() {
			t.Errorf("line %q: expected zero time, got %v", line, ts)
		}
	}
}

func TestPrintLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("[2024-01-15 10:30:%02d] [INFO] line %d", i, i))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := printLastLines(&buf, path, 3, time.Time{}); err != nil {
		t.Fatal(err)
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != 3 || !strings.HasSuffix(got[0], "line 8") || !strings.HasSuffix(got[2], "line 10") {
		t.Errorf("unexpected tail: %q", got)
	}
}

func TestPrintLastLinesSinceFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	content := "[2024-01-15 10:00:00] [INFO] old line\n" +
		"[2024-01-15 12:00:00] [INFO] new line\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	since := time.Date(2024, 1, 15, 11, 0, 0, 0, time.Local)
	var buf strings.Builder
	if err := printLastLines(&buf, path, 100, since); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "old line") || !strings.Contains(out, "new line") {
		t.Errorf("since filter not applied: %q", out)
	}
}
