package commands

import (
	"fmt"
	"io"
)

// ═══════════════════════════════════════════════════════════
// Common formatting helpers
// every command prints status lines the same way
// ═══════════════════════════════════════════════════════════

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "✅ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "⚠️  "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "ℹ️  "+format+"\n", args...)
}
