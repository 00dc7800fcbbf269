package testutil

import (
	"os"
	"testing"
	"time"
)

// OpenFDs returns the number of descriptors open in this process. It skips
// the test where /proc/self/fd is unavailable.
//
// Callers must not run in parallel with other tests: their descriptors
// would be counted too.
func OpenFDs(t *testing.T) int {
	t.Helper()

	ents, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("cannot count descriptors: %v", err)
	}
	// ReadDir's own descriptor is closed again before it returns.
	return len(ents)
}

// WaitFDs polls until at most want descriptors are open or timeout passes,
// and returns the last count.
func WaitFDs(t *testing.T, want int, timeout time.Duration) int {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		n := OpenFDs(t)
		if n <= want || time.Now().After(deadline) {
			return n
		}
		time.Sleep(10 * time.Millisecond)
	}
}
