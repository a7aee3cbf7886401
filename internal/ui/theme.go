package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/juanzandev/CS487Project/internal/theme"
)

// Theme defines colors for one palette.
type Theme struct {
	Name theme.Palette

	Background string
	Surface    string
	Highlight  string // changed-course background
	Border     string
	Title      string

	Text  string
	Muted string
	Faint string

	// Grade bands, best first: >=90, >=80, >=70, below.
	GradeA string
	GradeB string
	GradeC string
	GradeD string
}

// ThemeFor returns the colors for a resolved palette. Unknown ids fall back
// to light.
func ThemeFor(p theme.Palette) Theme {
	switch p {
	case theme.PaletteDark:
		return darkTheme()
	case theme.PaletteNord:
		return nordTheme()
	default:
		return lightTheme()
	}
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Title)).
			Bold(true),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.GradeD)).
			Bold(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		ChangedCard: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(t.Title)).
			Background(lipgloss.Color(t.Highlight)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Title)).
			Padding(1, 2),

		bands: [4]string{t.GradeA, t.GradeB, t.GradeC, t.GradeD},
		faint: t.Faint,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Title     lipgloss.Style
	Text      lipgloss.Style
	MutedText lipgloss.Style
	FaintText lipgloss.Style
	ErrorText lipgloss.Style

	Card        lipgloss.Style
	ChangedCard lipgloss.Style
	Footer      lipgloss.Style
	Modal       lipgloss.Style

	bands [4]string
	faint string
}

// GradeStyle colors a grade line by its score band. A nil score renders faint.
func (s Styles) GradeStyle(score *float64) lipgloss.Style {
	if score == nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(s.faint))
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.bands[gradeBand(*score)])).
		Bold(true)
}

func lightTheme() Theme {
	return Theme{
		Name:       theme.PaletteLight,
		Background: "#f5f5f5",
		Surface:    "#ffffff",
		Highlight:  "#e3f2fd",
		Border:     "#2196F3",
		Title:      "#1976D2",
		Text:       "#212121",
		Muted:      "#666666",
		Faint:      "#888888",
		GradeA:     "#2E7D32",
		GradeB:     "#F57C00",
		GradeC:     "#D32F2F",
		GradeD:     "#B71C1C",
	}
}

func darkTheme() Theme {
	return Theme{
		Name:       theme.PaletteDark,
		Background: "#1e1e1e",
		Surface:    "#2b2b2b",
		Highlight:  "#263238",
		Border:     "#42A5F5",
		Title:      "#64B5F6",
		Text:       "#e0e0e0",
		Muted:      "#9e9e9e",
		Faint:      "#757575",
		GradeA:     "#66BB6A",
		GradeB:     "#FFA726",
		GradeC:     "#EF5350",
		GradeD:     "#E57373",
	}
}

func nordTheme() Theme {
	return Theme{
		Name:       theme.PaletteNord,
		Background: "#2E3440",
		Surface:    "#3B4252",
		Highlight:  "#434C5E",
		Border:     "#4C566A",
		Title:      "#88C0D0",
		Text:       "#ECEFF4",
		Muted:      "#D8DEE9",
		Faint:      "#616E88",
		GradeA:     "#A3BE8C",
		GradeB:     "#EBCB8B",
		GradeC:     "#D08770",
		GradeD:     "#BF616A",
	}
}
