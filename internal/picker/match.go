package picker

import (
	"strings"
	"unicode/utf8"
)

// Entry is one candidate as seen by the renderer. Hidden entries stand in
// for candidates that do not match the current query; they keep their slot
// in the sequence but carry no text.
type Entry struct {
	Index   int // Position in the original candidate slice
	Visible bool
	Text    string // Decorated display text; empty when hidden
}

func visibleEntry(index int, text string) Entry {
	return Entry{Index: index, Visible: true, Text: text}
}

func hiddenEntry(index int) Entry {
	return Entry{Index: index}
}

// Match filters, highlights and reorders candidates for query.
//
// With an empty query every candidate is returned visible and in order.
// Otherwise candidates containing query (case-insensitively) are visible
// with each occurrence emphasised, the rest are hidden, and the result is
// a stable partition: all hidden entries first, then all visible ones.
func Match(candidates []string, query string, style Style) []Entry {
	if query == "" {
		entries := make([]Entry, len(candidates))
		for i, c := range candidates {
			entries[i] = visibleEntry(i, bulleted(style, displayText(c)))
		}
		return entries
	}

	needle := strings.ToLower(query)
	hidden := make([]Entry, 0, len(candidates))
	var shown []Entry
	for i, c := range candidates {
		if !strings.Contains(strings.ToLower(c), needle) {
			hidden = append(hidden, hiddenEntry(i))
			continue
		}
		shown = append(shown, visibleEntry(i, bulleted(style, highlight(displayText(c), query, style))))
	}
	return append(hidden, shown...)
}

// highlight wraps every case-insensitive occurrence of query in text with
// the style's emphasis, preserving the case found in text.
func highlight(text, query string, style Style) string {
	var b strings.Builder
	rest := text
	for rest != "" {
		start, end := indexFold(rest, query)
		if start < 0 {
			break
		}
		b.WriteString(rest[:start])
		b.WriteString(emphasize(style, rest[start:end]))
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}

// indexFold returns the byte span of the first occurrence of substr in s
// under Unicode case folding, or -1, -1.
func indexFold(s, substr string) (int, int) {
	n := utf8.RuneCountInString(substr)
	if n == 0 {
		return -1, -1
	}
	for i := 0; i < len(s); {
		end := i
		count := 0
		for end < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		if count < n {
			return -1, -1
		}
		if strings.EqualFold(s[i:end], substr) {
			return i, end
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, -1
}
