package testutil

import (
	"os"
	"testing"
)

// RequireVM skips the test if the V6WATCH_VM_TEST environment variable is not set.
// Tests that read or mutate real kernel interface state only run in a disposable VM.
func RequireVM(t *testing.T) {
	t.Helper()
	if os.Getenv("V6WATCH_VM_TEST") == "" {
		t.Skip("Skipping test: requires V6WATCH_VM_TEST environment")
	}
}
