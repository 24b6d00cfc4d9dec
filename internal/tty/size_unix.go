//go:build !windows

package tty

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// windowSize asks the kernel for the size of the terminal behind f.
func windowSize(f *os.File) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("get window size: %w", err)
	}
	return int(ws.Row), int(ws.Col), nil
}
