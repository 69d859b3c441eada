package main

import (
	"os"

	"github.com/wonny/housedash/cmd/housedash/commands"
)

// main is the entry point for the housedash CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/housedash [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
