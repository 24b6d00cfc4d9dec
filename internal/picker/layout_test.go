package picker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderFor(candidates []string, query, prompt string, rows int) Frame {
	style := PlainStyle()
	return Render(LayoutInput{
		Entries:    Match(candidates, query, style),
		Candidates: len(candidates),
		Rows:       rows,
		Prompt:     prompt,
		Query:      query,
		Style:      style,
	})
}

func TestRender_EmptyCandidates(t *testing.T) {
	f := renderFor(nil, "", "Choose:", 24)
	assert.True(t, f.Empty)
	assert.Empty(t, f.Lines)
	_, ok := f.Selection()
	assert.False(t, ok)
}

func TestRender_EmptyQueryShowsAllWithoutSelection(t *testing.T) {
	f := renderFor([]string{"a", "b", "c"}, "", "", 24)
	assert.Equal(t, []string{"- a", "- b", "- c", "> "}, f.Lines)
	assert.Equal(t, -1, f.Selected)
}

func TestRender_PromptLine(t *testing.T) {
	f := renderFor([]string{"a"}, "", "Choose a branch:", 24)
	assert.Equal(t, []string{"Choose a branch:", "- a", "> "}, f.Lines)
}

func TestRender_SelectsLastMatch(t *testing.T) {
	candidates := []string{"main", "develop", "feature/foo", "feature/bar"}
	f := renderFor(candidates, "fea", "", 24)

	i, ok := f.Selection()
	require.True(t, ok)
	assert.Equal(t, "feature/bar", candidates[i])
	assert.Equal(t, []string{"", "", "- feature/foo", "- feature/bar", "> fea"}, f.Lines)
}

func TestRender_NoMatchNoSelection(t *testing.T) {
	f := renderFor([]string{"main", "develop"}, "zzz", "", 24)
	_, ok := f.Selection()
	assert.False(t, ok)
	assert.Equal(t, []string{"", "", "> zzz"}, f.Lines)
}

func TestRender_TruncatesFromFront(t *testing.T) {
	var candidates []string
	for i := range 10 {
		candidates = append(candidates, fmt.Sprintf("b%d", i))
	}

	// 5 rows: 1 prompt, 1 query, 3 body.
	f := renderFor(candidates, "", "P", 5)
	assert.Equal(t, []string{"P", "- b7", "- b8", "- b9", "> "}, f.Lines)
	assert.Len(t, f.Lines, 5)
}

func TestRender_TruncationDropsHiddenBeforeMatches(t *testing.T) {
	candidates := []string{"x1", "m1", "x2", "x3", "m2", "x4"}
	// 4 rows without prompt: 3 body rows.
	f := renderFor(candidates, "m", "", 4)
	assert.Equal(t, []string{"", "- m1", "- m2", "> m"}, f.Lines)
}

func TestRender_ManyMatchesDropsEarliest(t *testing.T) {
	candidates := []string{"m1", "m2", "m3", "m4", "m5"}
	f := renderFor(candidates, "m", "", 3)
	assert.Equal(t, []string{"- m4", "- m5", "> m"}, f.Lines)
	assert.Equal(t, 4, f.Selected)
}

func TestRender_SelectionIgnoresTruncation(t *testing.T) {
	candidates := []string{"m1", "x1", "x2", "x3"}
	// Zero body rows: the match is off screen but still armed.
	f := renderFor(candidates, "m", "P", 2)
	assert.Equal(t, []string{"P", "> m"}, f.Lines)
	assert.Equal(t, 0, f.Selected)
}

func TestRender_TinyTerminal(t *testing.T) {
	f := renderFor([]string{"a", "b"}, "", "P", 1)
	assert.Equal(t, []string{"P", "> "}, f.Lines)
}

func TestRender_Idempotent(t *testing.T) {
	candidates := []string{"main", "feature/foo", "develop", "feature/bar"}
	a := renderFor(candidates, "e", "Choose:", 6)
	b := renderFor(candidates, "e", "Choose:", 6)
	assert.Equal(t, a, b)
}

func TestRender_FitsToColumns(t *testing.T) {
	style := PlainStyle()
	f := Render(LayoutInput{
		Entries:    Match([]string{"main"}, "", style),
		Candidates: 1,
		Rows:       10,
		Cols:       9,
		Prompt:     "Choose a branch:",
		Query:      "",
		Style:      style,
	})
	assert.Equal(t, "Choo…nch:", f.Lines[0])
}

func TestBodyRows(t *testing.T) {
	assert.Equal(t, 22, bodyRows(24, true))
	assert.Equal(t, 23, bodyRows(24, false))
	assert.Equal(t, 0, bodyRows(1, true))
	assert.Equal(t, 0, bodyRows(0, false))
}
