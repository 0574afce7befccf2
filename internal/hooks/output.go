package hooks

import (
	"fmt"
	"os"
)

// ExitError logs to stderr and exits 0 (hooks must never break the editor
// that invoked them).
func ExitError(err error) {
	fmt.Fprintf(os.Stderr, "revisit hook: %v\n", err)
	os.Exit(0)
}
