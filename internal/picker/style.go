package picker

import "github.com/charmbracelet/lipgloss"

const (
	defaultBullet      = "- "
	defaultInputMarker = "> "
	defaultColor       = "12"
)

// Style controls how matches, the prompt and the input line are decorated.
// It carries no shared state; every formatting helper takes the Style it
// should apply.
type Style struct {
	Highlight   lipgloss.Style
	Prompt      lipgloss.Style
	Bullet      string
	InputMarker string
}

// DefaultStyle returns bold, coloured emphasis rendered through r.
// A nil renderer uses the lipgloss default renderer.
func DefaultStyle(r *lipgloss.Renderer, color string) Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	if color == "" {
		color = defaultColor
	}
	accent := r.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	return Style{
		Highlight:   accent,
		Prompt:      accent,
		Bullet:      defaultBullet,
		InputMarker: defaultInputMarker,
	}
}

// PlainStyle returns a Style that adds markers but no emphasis.
func PlainStyle() Style {
	return Style{
		Highlight:   lipgloss.NewStyle(),
		Prompt:      lipgloss.NewStyle(),
		Bullet:      defaultBullet,
		InputMarker: defaultInputMarker,
	}
}

func bulleted(s Style, text string) string {
	return s.Bullet + text
}

func emphasize(s Style, text string) string {
	if text == "" {
		return ""
	}
	return s.Highlight.Render(text)
}

func promptLine(s Style, prompt string) string {
	return s.Prompt.Render(prompt)
}
