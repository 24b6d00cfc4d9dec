//go:build windows

package tty

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

func windowSize(f *os.File) (int, int, error) {
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("get window size: %w", err)
	}
	return rows, cols, nil
}
