// Package main is the entry point for the pricesync CLI.
package main

import (
	"os"

	"pricesync/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
