package decorate

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Protocol-Lattice/dreamsearch/render"
)

// Theme holds the terminal styles used by the ANSI policy.
type Theme struct {
	Negation   lipgloss.Style
	Key        lipgloss.Style
	NegatedKey lipgloss.Style
	Operator   lipgloss.Style
	Numeral    lipgloss.Style
	Unit       lipgloss.Style
	Boolean    lipgloss.Style
	Date       lipgloss.Style
	Separator  lipgloss.Style
	Bracket    lipgloss.Style // list delimiters
	Paren      lipgloss.Style // group delimiters
	ValueText  lipgloss.Style // untyped text on the value side of a filter
}

// Search palette.
var (
	Red        = lipgloss.Color("#f13333")
	DarkRed    = lipgloss.Color("#5c1a1a")
	Orange     = lipgloss.Color("#ff8a65")
	DeepOrange = lipgloss.Color("#f4511e")
	Green      = lipgloss.Color("#8BC34A")
	Gray       = lipgloss.Color("#9e9e9e")
	Blue       = lipgloss.Color("#2196F3")
	Ink        = lipgloss.Color("#3c3642")
	Mist       = lipgloss.Color("#e7e1ec")
)

// DefaultTheme builds the default styles on r, or on lipgloss's default
// renderer when r is nil.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	style := func() lipgloss.Style {
		return r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	}
	return Theme{
		Negation:   style().Foreground(Red).Background(DarkRed),
		Key:        style().Bold(true),
		NegatedKey: style().Bold(true).Foreground(Red),
		Operator:   style().Foreground(Red),
		Numeral:    style().Foreground(Orange),
		Unit:       style().Bold(true).Foreground(DeepOrange),
		Boolean:    style().Bold(true).Foreground(Red),
		Date:       style().Foreground(Green),
		Separator:  style().Foreground(Gray),
		Bracket:    style().Foreground(Blue),
		Paren:      style().Foreground(Green),
		ValueText:  style().Foreground(Ink).Background(Mist),
	}
}

// ANSI returns a terminal policy styling units with theme.
func ANSI(theme Theme) Policy { return &ansiPolicy{theme: theme} }

type ansiPolicy struct {
	theme Theme
}

func (p *ansiPolicy) Name() string { return "ansi" }

func (p *ansiPolicy) Decorate(u render.Unit, parent render.Kind, inner string) string {
	t := p.theme
	switch u.Kind {
	case render.KindNegation:
		return paint(t.Negation, inner)
	case render.KindKey:
		if u.Negated {
			return paint(t.NegatedKey, inner)
		}
		return paint(t.Key, inner)
	case render.KindOperator:
		return paint(t.Operator, inner)
	case render.KindNumeral:
		return paint(t.Numeral, inner)
	case render.KindUnit:
		return paint(t.Unit, inner)
	case render.KindBoolean:
		return paint(t.Boolean, inner)
	case render.KindDate:
		return paint(t.Date, inner)
	case render.KindSeparator:
		return paint(t.Separator, inner)
	case render.KindGroup:
		return paint(t.Paren, "(") + inner + paint(t.Paren, ")")
	case render.KindList:
		return paint(t.Bracket, listOpener(u)) + inner + paint(t.Bracket, "]")
	case render.KindPlain:
		if parent == render.KindValue || parent == render.KindList {
			return paint(t.ValueText, inner)
		}
	}
	return inner
}

// paint renders s with style, leaving empty strings untouched.
func paint(style lipgloss.Style, s string) string {
	if s == "" {
		return ""
	}
	return style.Render(s)
}
