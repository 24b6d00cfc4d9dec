package picker

// LayoutInput is everything the renderer needs to lay out one frame.
type LayoutInput struct {
	Entries    []Entry // Output of Match, already partitioned
	Candidates int     // Number of candidates before filtering
	Rows       int     // Terminal rows, read fresh for this frame
	Cols       int     // Terminal columns; 0 disables width fitting
	Prompt     string  // Optional prompt line; empty means none
	Query      string
	Style      Style
}

// Frame is a fully laid out screen.
type Frame struct {
	Lines    []string
	Selected int  // Original index of the auto-selected candidate; -1 when none
	Empty    bool // No candidates at all; the session must end
}

// Selection returns the auto-selected candidate index, if any.
func (f Frame) Selection() (int, bool) {
	return f.Selected, f.Selected >= 0
}

// Render lays out in for a terminal of in.Rows rows.
//
// The body keeps the trailing entries when there are more entries than
// rows, so hidden entries (which sort first) are dropped before matches.
// The auto-selection is the last entry of the full sequence when it is a
// match.
func Render(in LayoutInput) Frame {
	f := Frame{Selected: -1}
	if in.Candidates == 0 {
		f.Empty = true
		return f
	}

	if in.Query != "" && len(in.Entries) > 0 {
		if last := in.Entries[len(in.Entries)-1]; last.Visible {
			f.Selected = last.Index
		}
	}

	body := in.Entries
	if rows := bodyRows(in.Rows, in.Prompt != ""); len(body) > rows {
		body = body[len(body)-rows:]
	}

	f.Lines = make([]string, 0, len(body)+2)
	if in.Prompt != "" {
		f.Lines = append(f.Lines, promptLine(in.Style, fitPrompt(in.Prompt, in.Cols)))
	}
	for _, e := range body {
		if e.Visible {
			f.Lines = append(f.Lines, e.Text)
		} else {
			f.Lines = append(f.Lines, "")
		}
	}
	f.Lines = append(f.Lines, fitQuery(in.Style.InputMarker, in.Query, in.Cols))
	return f
}

// bodyRows is the number of rows left for entries once the prompt and the
// query line are placed.
func bodyRows(rows int, hasPrompt bool) int {
	if hasPrompt {
		rows--
	}
	rows-- // query line
	if rows < 0 {
		return 0
	}
	return rows
}
