// Package tty adapts a terminal device to the picker's Surface: raw-mode
// key input and the handful of ANSI controls the picker draws with.
package tty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/runger/easybranch/internal/picker"
)

// DevicePath is the controlling terminal. It is used instead of
// stdin/stdout so the selection can be printed to a pipe.
const DevicePath = "/dev/tty"

// ANSI controls.
const (
	seqSaveCursor    = "\x1b7"
	seqRestoreCursor = "\x1b8"
	seqClearScreen   = "\x1b[2J"
	seqClearBelow    = "\x1b[J"
	seqNewline       = "\r\n"
)

// readBufSize bounds a single read; a paste larger than this is decoded
// over several reads.
const readBufSize = 256

// Terminal is a raw-mode terminal implementing picker.Surface.
type Terminal struct {
	f        *os.File
	out      io.Writer
	reader   cancelreader.CancelReader
	oldState *term.State
	owned    bool // f was opened by Open and is closed by Close

	pending []byte
	buf     [readBufSize]byte
}

var _ picker.Surface = (*Terminal)(nil)

// Open opens the controlling terminal and puts it in raw mode.
func Open() (*Terminal, error) {
	f, err := os.OpenFile(DevicePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", DevicePath, err)
	}
	t, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	t.owned = true
	return t, nil
}

// New wraps an already open terminal file and puts it in raw mode.
func New(f *os.File) (*Terminal, error) {
	if !term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	oldState, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	reader, err := cancelreader.NewReader(f)
	if err != nil {
		_ = term.Restore(int(f.Fd()), oldState)
		return nil, fmt.Errorf("create key reader: %w", err)
	}
	return &Terminal{
		f:        f,
		out:      f,
		reader:   reader,
		oldState: oldState,
	}, nil
}

// Close restores the terminal mode and releases the device.
func (t *Terminal) Close() error {
	t.reader.Cancel()
	err := t.reader.Close()
	if restoreErr := term.Restore(int(t.f.Fd()), t.oldState); restoreErr != nil {
		err = errors.Join(err, fmt.Errorf("restore terminal: %w", restoreErr))
	}
	if t.owned {
		err = errors.Join(err, t.f.Close())
	}
	return err
}

// File returns the underlying terminal device.
func (t *Terminal) File() *os.File {
	return t.f
}

// ColorProfile detects the colour support of the terminal itself rather
// than of stdout, which is often a pipe.
func (t *Terminal) ColorProfile() termenv.Profile {
	return termenv.NewOutput(t.f).ColorProfile()
}

// Size returns the terminal rows and columns.
func (t *Terminal) Size() (int, int, error) {
	return windowSize(t.f)
}

func (t *Terminal) SaveCursor() error    { return t.Write(seqSaveCursor) }
func (t *Terminal) RestoreCursor() error { return t.Write(seqRestoreCursor) }
func (t *Terminal) ClearScreen() error   { return t.Write(seqClearScreen) }
func (t *Terminal) ClearBelow() error    { return t.Write(seqClearBelow) }

// Write writes text as is.
func (t *Terminal) Write(text string) error {
	_, err := io.WriteString(t.out, text)
	return err
}

// WriteLine writes text followed by a raw-mode newline.
func (t *Terminal) WriteLine(text string) error {
	return t.Write(text + seqNewline)
}

// ReadKey blocks until a complete key has been read or ctx is done.
// Bytes beyond the first key are kept for the next call.
func (t *Terminal) ReadKey(ctx context.Context) (picker.Key, error) {
	for {
		if k, n := picker.DecodeKey(t.pending); n > 0 {
			t.pending = t.pending[n:]
			return k, nil
		}
		n, err := t.read(ctx)
		if err != nil {
			return picker.Key{}, err
		}
		t.pending = append(t.pending, t.buf[:n]...)
	}
}

// read performs one blocking read that is abandoned when ctx is done.
func (t *Terminal) read(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			t.reader.Cancel()
		case <-done:
		}
	}()

	n, err := t.reader.Read(t.buf[:])
	if err != nil {
		if errors.Is(err, cancelreader.ErrCanceled) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("read %s: %w", t.f.Name(), err)
	}
	return n, nil
}
