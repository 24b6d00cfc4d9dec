package picker

import "unicode/utf8"

// sessionState represents the current state of the picker's state machine.
type sessionState int

const (
	stateRendering  sessionState = iota // Frame must be recomputed and drawn
	stateIdle                           // Waiting for the next key
	stateTerminated                     // Selection made, cancelled, or nothing to pick
)

// Session holds the state of one picker invocation: the query typed so far
// and the frame it produced. Candidates are never modified.
type Session struct {
	candidates []string
	prompt     string
	style      Style

	state    sessionState
	query    string
	frame    Frame
	result   string
	selected bool
}

// NewSession creates a session in the rendering state with an empty query.
func NewSession(opts Options, candidates []string) *Session {
	return &Session{
		candidates: candidates,
		prompt:     opts.Prompt,
		style:      opts.Style,
		state:      stateRendering,
		frame:      Frame{Selected: -1},
	}
}

// Query returns the current query.
func (s *Session) Query() string {
	return s.query
}

// Frame returns the most recently rendered frame.
func (s *Session) Frame() Frame {
	return s.frame
}

// Done reports whether the session has terminated.
func (s *Session) Done() bool {
	return s.state == stateTerminated
}

// Result returns the committed candidate. ok is false when the session was
// cancelled, had no candidates, or has not terminated yet.
func (s *Session) Result() (string, bool) {
	return s.result, s.selected
}

// Render recomputes the frame for a terminal of rows x cols. A session
// with no candidates terminates here without a selection.
func (s *Session) Render(rows, cols int) Frame {
	if s.state == stateTerminated {
		return s.frame
	}
	s.frame = Render(LayoutInput{
		Entries:    Match(s.candidates, s.query, s.style),
		Candidates: len(s.candidates),
		Rows:       rows,
		Cols:       cols,
		Prompt:     s.prompt,
		Query:      s.query,
		Style:      s.style,
	})
	if s.frame.Empty {
		s.state = stateTerminated
		return s.frame
	}
	s.state = stateIdle
	return s.frame
}

// Handle applies one key. It returns true when the caller must re-render,
// which is every key that does not end the session.
func (s *Session) Handle(k Key) bool {
	if s.state == stateTerminated {
		return false
	}

	switch k.Type {
	case KeyEnter:
		if i, ok := s.frame.Selection(); ok {
			s.result = s.candidates[i]
			s.selected = true
			s.state = stateTerminated
			return false
		}
		// Nothing armed; Enter is a no-op.

	case KeyEscape:
		s.state = stateTerminated
		return false

	case KeyBackspace:
		if s.query != "" {
			_, size := utf8.DecodeLastRuneInString(s.query)
			s.query = s.query[:len(s.query)-size]
		}

	case KeyRune:
		s.query += string(k.Rune)
	}

	s.state = stateRendering
	return true
}
