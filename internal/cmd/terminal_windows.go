//go:build windows

package cmd

import (
	"errors"
	"os"

	"golang.org/x/term"
)

func checkTTY() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("no TTY available")
	}
	return nil
}

func checkTERM() error {
	if os.Getenv("TERM") == "dumb" {
		return errors.New("TERM=dumb is not supported")
	}
	return nil
}

// Windows has no flock; a single console session is assumed.
func acquireLock(string) (int, error) { return -1, nil }

func releaseLock(int) {}
