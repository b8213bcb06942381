package main

import (
	"os"

	"github.com/wonny/salesdesk/backend/cmd/salesctl/commands"
)

// main is the entry point for the salesdesk CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/salesctl [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
