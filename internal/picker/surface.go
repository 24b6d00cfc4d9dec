package picker

import "context"

// Surface is the terminal the picker draws on and reads keys from.
// Errors returned by any method end the session and are passed to the
// caller unchanged in meaning.
type Surface interface {
	// Size returns the current terminal rows and columns.
	Size() (rows, cols int, err error)

	// SaveCursor records the redraw anchor; RestoreCursor returns to it.
	SaveCursor() error
	RestoreCursor() error

	ClearScreen() error
	ClearBelow() error

	Write(text string) error
	WriteLine(text string) error

	// ReadKey blocks until one key is available or ctx is done.
	ReadKey(ctx context.Context) (Key, error)
}
