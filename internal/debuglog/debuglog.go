// Package debuglog appends diagnostic lines to a file when RAILGPT_DEBUG_LOG
// names one. The chat view owns the terminal, so background failures that are
// deliberately silent in the UI (reconciliation, history refresh) land here
// instead of stderr.
package debuglog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	path = os.Getenv("RAILGPT_DEBUG_LOG")
)

// Logf appends one timestamped line to the debug log. Logging failures are
// swallowed; diagnostics must never take down the program.
func Logf(format string, args ...any) {
	if path == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
