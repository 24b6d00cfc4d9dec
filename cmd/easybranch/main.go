// Package main is the entry point for the easybranch CLI.
package main

import (
	"os"

	"github.com/runger/easybranch/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
