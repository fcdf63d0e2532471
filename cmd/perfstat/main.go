package main

import (
	"os"

	"github.com/wonny/perfstat/cmd/perfstat/commands"
)

// main is the entry point for the perfstat CLI
// ⭐ single CLI entry point: go run ./cmd/perfstat [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
