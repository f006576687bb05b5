package main

import (
	"os"

	"github.com/wonny/nice/cmd/nice/commands"
)

// main is the entry point for the NICE scanner CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/nice [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
