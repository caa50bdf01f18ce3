package main

import (
	"os"

	"github.com/quantterm/backend/cmd/quantterm/commands"
)

// main is the entry point for the quantterm CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/quantterm [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
