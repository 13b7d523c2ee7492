package main

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies the concurrent per-file scan in scanCommand leaves no
// goroutines running after app.Run returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
