package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Tree   TreeTheme
	Footer FooterTheme
	Banner BannerTheme
	Modal  ModalTheme
}

// HeaderTheme styles the title line.
type HeaderTheme struct {
	Title  lipgloss.Style
	Server lipgloss.Style
}

// TreeTheme styles forest rows.
type TreeTheme struct {
	Row        lipgloss.Style
	Selected   lipgloss.Style
	Deleted    lipgloss.Style
	Disclosure lipgloss.Style
	Leaf       lipgloss.Style
	Glyph      lipgloss.Style
	Loading    lipgloss.Style
	Error      lipgloss.Style
	Guide      lipgloss.Style
}

// FooterTheme groups styles used by the bottom status and help lines.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
}

// BannerTheme styles the blocking error shown when the roots cannot load.
type BannerTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// ModalTheme styles the centered edit and move modal.
type ModalTheme struct {
	Frame      lipgloss.Style
	Title      lipgloss.Style
	Body       lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Error      lipgloss.Style
	Suggestion lipgloss.Style
	Hint       lipgloss.Style
}

// Default returns the built-in theme used across the UI. It targets dark
// terminals.
func Default() Theme {
	return ForBackground(true)
}

// ForBackground returns the theme tuned for a dark or light terminal.
func ForBackground(dark bool) Theme {
	pick := func(l, d string) color.Color {
		if dark {
			return lipgloss.Color(d)
		}
		return lipgloss.Color(l)
	}
	tab := lipgloss.NewStyle().Foreground(pick("240", "244")).Padding(0, 1)
	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true).Foreground(pick("162", "212")),
			Server: lipgloss.NewStyle().Foreground(pick("240", "244")),
		},
		Tree: TreeTheme{
			Row:        lipgloss.NewStyle(),
			Selected:   lipgloss.NewStyle().Reverse(true),
			Deleted:    lipgloss.NewStyle().Foreground(pick("245", "241")).Strikethrough(true),
			Disclosure: lipgloss.NewStyle().Foreground(pick("25", "39")),
			Leaf:       lipgloss.NewStyle().Foreground(pick("250", "238")),
			Glyph:      lipgloss.NewStyle().Foreground(pick("136", "178")),
			Loading:    lipgloss.NewStyle().Foreground(pick("162", "205")),
			Error:      lipgloss.NewStyle().Foreground(pick("160", "196")),
			Guide:      lipgloss.NewStyle().Foreground(pick("250", "238")),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(pick("242", "245")),
			Status: lipgloss.NewStyle().Foreground(pick("240", "244")),
		},
		Banner: BannerTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(pick("160", "196")).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true).Foreground(pick("160", "196")),
			Body:  lipgloss.NewStyle(),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title:      lipgloss.NewStyle().Bold(true),
			Body:       lipgloss.NewStyle(),
			Tab:        tab,
			ActiveTab:  tab.Foreground(pick("162", "212")).Bold(true).Underline(true),
			Error:      lipgloss.NewStyle().Foreground(pick("160", "196")),
			Suggestion: lipgloss.NewStyle().Foreground(pick("28", "42")),
			Hint:       lipgloss.NewStyle().Foreground(pick("245", "241")),
		},
	}
}
