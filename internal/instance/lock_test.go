package instance

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLockAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "sabini.lock")

	fl, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	if _, err := Lock(path); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected second Lock() to fail, got %v", err)
	}

	Release(fl)

	fl2, err := Lock(path)
	if err != nil {
		t.Fatalf("Lock() after Release should succeed: %v", err)
	}
	Release(fl2)
	Release(nil)
}
