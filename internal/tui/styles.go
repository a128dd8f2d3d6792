package tui

import (
	"github.com/blogstory/internal/flash"
	"github.com/charmbracelet/lipgloss"
)

// Colours adapt to light and dark terminals.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted     = ac("240", "245")
	colorAccent    = ac("27", "62")
	colorAccentFg  = ac("255", "235")
	colorSelected  = ac("#e9e9e9", "#262626")
	colorBorder    = ac("250", "243")
	colorSuccessFg = ac("28", "78")
	colorErrorFg   = ac("160", "203")
	colorInfoFg    = ac("25", "75")
	colorWarnFg    = ac("130", "214")
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleHeading  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleError    = lipgloss.NewStyle().Foreground(colorErrorFg)
	styleWarn     = lipgloss.NewStyle().Foreground(colorWarnFg)
	styleSelected = lipgloss.NewStyle().Background(colorSelected).Bold(true)
	styleBrand    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorAccentFg).Background(colorAccent)
	styleNavItem  = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	styleNavOn    = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true)
	styleCard     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	styleCardOn   = styleCard.BorderForeground(colorAccent)
	styleModal    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2)
	styleButton   = lipgloss.NewStyle().Padding(0, 1).Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	styleDisabled = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
)

func noticeStyle(kind flash.Kind) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch kind {
	case flash.Success:
		return st.Foreground(colorSuccessFg)
	case flash.Error:
		return st.Foreground(colorErrorFg)
	default:
		return st.Foreground(colorInfoFg)
	}
}

func button(label string, enabled bool) string {
	if !enabled {
		return styleDisabled.Render(label)
	}
	return styleButton.Render(label)
}

func clampWidth(w, min, max int) int {
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}
