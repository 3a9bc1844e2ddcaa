package engine

import "testing"

// Loads the real engine library and probes its diagnostic entry point.
// Skipped when no engine build is installed on the host.
func TestLibraryLoadAndProbe(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Skipf("native engine library unavailable: %v", err)
	}

	if lib == nil {
		t.Fatal("library not loaded")
	}
	if !lib.SelfTest(123) {
		t.Fatal("test function failed")
	}
}
