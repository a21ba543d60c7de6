// Package testutil provides testing helpers shared by the end-to-end
// suites.
package testutil

import (
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// OpenScratch opens a fresh temp file and returns the raw descriptor. The
// caller owns it; the file itself is cleaned up with the test's TempDir.
func OpenScratch(t *testing.T) int {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratch")
	raw, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0o600)
	if err != nil {
		t.Fatalf("open scratch file: %v", err)
	}
	return raw
}

// PIDExists probes pid with the null signal.
func PIDExists(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
