// Package tui provides the terminal upload-and-transcribe form built on Charm libraries
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"} // Violet
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#0EA5E9", Dark: "#38BDF8"} // Sky blue
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"} // Amber

	ColorSuccess = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#6366F1", Dark: "#818CF8"}

	ColorText   = lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#F1F5F9"}
	ColorSubtle = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#64748B"}
	ColorBorder = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSubtle)

	BodyStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	RangeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2).
			MarginTop(1)

	FocusedBoxStyle = BoxStyle.
			BorderForeground(ColorPrimary)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Padding(0, 2)

	ActiveButtonStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ColorSuccess).
				Padding(0, 2)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 2)

	CopiedBadgeStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(ColorSuccess).
				Foreground(lipgloss.Color("#FFFFFF"))
)

// HeaderASCII is the banner shown above the form
var HeaderASCII = `
 ╦ ╦╦ ╦╦╔═╗╔═╗╔═╗╦═╗  ╔═╗╔═╗╦═╗╔╦╗
 ║║║╠═╣║╚═╗╠═╝║╣ ╠╦╝  ╠╣ ║ ║╠╦╝║║║
 ╚╩╝╩ ╩╩╚═╝╩  ╚═╝╩╚═  ╚  ╚═╝╩╚═╩ ╩
`

// GetHeader returns the styled header
func GetHeader() string {
	return lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(HeaderASCII)
}

// KeyHelp renders keyboard shortcut help from key/description pairs
func KeyHelp(pairs ...string) string {
	helpStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorSubtle).Bold(true)

	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+helpStyle.Render(pairs[i+1]))
	}
	return helpStyle.Render(strings.Join(parts, "  |  "))
}
