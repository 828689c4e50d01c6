package commands

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestReadPidFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	if _, err := readPidFile(filepath.Join(dir, "absent.pid")); err == nil {
		t.Error("missing file: expected error")
	}
	if _, err := readPidFile(write("garbage.pid", "notanumber")); err == nil {
		t.Error("garbage content: expected error")
	}
	if _, err := readPidFile(write("negative.pid", "-4")); err == nil {
		t.Error("negative pid: expected error")
	}
	if _, err := readPidFile(write("zero.pid", "0")); err == nil {
		t.Error("zero pid: expected error")
	}

	pid, err := readPidFile(write("padded.pid", "  "+strconv.Itoa(os.Getpid())+"\n"))
	if err != nil {
		t.Fatalf("padded pid: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("padded pid: got %d, want %d", pid, os.Getpid())
	}
}

func TestWritePidFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.pid")
	if err := writePidFile(path); err != nil {
		t.Fatalf("writePidFile: %v", err)
	}
	pid, err := readPidFile(path)
	if err != nil {
		t.Fatalf("readPidFile: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("got %d, want %d", pid, os.Getpid())
	}
}

func TestProcessAlive(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	// Beyond pid_max on Linux and implausible elsewhere.
	if processAlive(9999999) {
		t.Error("pid 9999999 should not be alive")
	}
}
