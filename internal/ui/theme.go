package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/framepick/framepick/internal/api"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Border  string

	SelectionBg   string
	SelectionText string
}

var themes = map[string]Theme{
	"dark": {
		Name:          "dark",
		Text:          "#f8f8f2",
		Muted:         "#9ca3af",
		Faint:         "#6b7280",
		Accent:        "#8be9fd",
		Success:       "#50fa7b",
		Warning:       "#f1fa8c",
		Danger:        "#ff5555",
		Border:        "#44475a",
		SelectionBg:   "#44475a",
		SelectionText: "#f8f8f2",
	},
	"light": {
		Name:          "light",
		Text:          "#1f2937",
		Muted:         "#6b7280",
		Faint:         "#9ca3af",
		Accent:        "#2563eb",
		Success:       "#16a34a",
		Warning:       "#ca8a04",
		Danger:        "#dc2626",
		Border:        "#d1d5db",
		SelectionBg:   "#e5e7eb",
		SelectionText: "#111827",
	},
}

// GetTheme returns the named theme, defaulting to dark.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["dark"]
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(1, 2),
	}
}

// Styles holds the rendered Lipgloss styles.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Box         lipgloss.Style
}

// statusStyle picks the style for a processing status, matching the
// badge colors of the web UI.
func (s Styles) statusStyle(status string) lipgloss.Style {
	switch status {
	case api.StatusCompleted:
		return s.SuccessText
	case api.StatusFailed:
		return s.DangerText
	case api.StatusProcessing:
		return s.AccentText
	case api.StatusPending:
		return s.WarningText
	default:
		return s.MutedText
	}
}
