package main

import (
	"os"

	"github.com/ailevelup-ai/heal-mcp/cmd"
)

func main() {
	// Cobra has already reported the error.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
