// ABOUTME: Entry point for tradejournal CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
