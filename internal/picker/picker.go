// Package picker implements an interactive single-choice terminal picker.
//
// The user types a query; candidates that do not contain it are blanked,
// matches are highlighted and moved to the bottom, and the last match is
// armed so that Enter selects it. Escape cancels.
package picker

import (
	"context"
	"fmt"
)

// Options configures a picker session.
type Options struct {
	Prompt string // Optional line shown above the candidates
	Style  Style
}

// Pick runs an interactive session on s and returns the chosen candidate.
// ok is false when the user cancelled or candidates is empty; neither is an
// error. Terminal failures are returned as errors.
func Pick(ctx context.Context, s Surface, opts Options, candidates []string) (choice string, ok bool, err error) {
	session := NewSession(opts, candidates)

	if err := s.SaveCursor(); err != nil {
		return "", false, fmt.Errorf("save cursor: %w", err)
	}

	for {
		if err := draw(s, session); err != nil {
			return "", false, err
		}
		if session.Done() {
			break
		}

		key, err := s.ReadKey(ctx)
		if err != nil {
			if cleanupErr := clearRegion(s); cleanupErr != nil {
				return "", false, fmt.Errorf("read key: %w (cleanup: %v)", err, cleanupErr)
			}
			return "", false, fmt.Errorf("read key: %w", err)
		}
		session.Handle(key)
		if session.Done() {
			break
		}
	}

	if err := clearRegion(s); err != nil {
		return "", false, err
	}
	choice, ok = session.Result()
	return choice, ok, nil
}

// draw renders the session at the anchor. Sessions that terminate while
// rendering draw nothing.
func draw(s Surface, session *Session) error {
	rows, cols, err := s.Size()
	if err != nil {
		return fmt.Errorf("read terminal size: %w", err)
	}
	frame := session.Render(rows, cols)
	if session.Done() {
		return nil
	}

	if err := s.RestoreCursor(); err != nil {
		return fmt.Errorf("restore cursor: %w", err)
	}
	if err := s.ClearScreen(); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	last := len(frame.Lines) - 1
	for i, line := range frame.Lines {
		if i == last {
			err = s.Write(line)
		} else {
			err = s.WriteLine(line)
		}
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	return nil
}

// clearRegion leaves the terminal as it was before the session started.
func clearRegion(s Surface) error {
	if err := s.RestoreCursor(); err != nil {
		return fmt.Errorf("restore cursor: %w", err)
	}
	if err := s.ClearBelow(); err != nil {
		return fmt.Errorf("clear below cursor: %w", err)
	}
	return nil
}
