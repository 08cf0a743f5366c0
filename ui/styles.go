package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray  = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	yellowG   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Padding(0, 1).
			Render

	labelStyle        = lipgloss.NewStyle().Foreground(gray).Width(8).Render
	focusedLabelStyle = lipgloss.NewStyle().Foreground(fuchsia).Bold(true).Width(8).Render

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(midGray).
			Padding(0, 2).
			MarginRight(1)
	focusedButtonStyle = buttonStyle.
				Background(fuchsia).
				Bold(true)
	disabledButtonStyle = buttonStyle.
				Foreground(normalDim).
				Background(darkGray)

	suggestionStyle        = lipgloss.NewStyle().Foreground(gray).PaddingLeft(10).Render
	firstSuggestionStyle   = lipgloss.NewStyle().Foreground(yellowG).PaddingLeft(10).Render
	subtleStyle            = lipgloss.NewStyle().Foreground(gray).Render
	statusBarNoteStyle     = lipgloss.NewStyle().Foreground(statusBarNoteFg).Background(statusBarBg).Render
	statusBarMessageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#080808")).Background(yellowG).Render
	statusBarErrorStyle    = lipgloss.NewStyle().Foreground(cream).Background(red).Render
	statusBarHelpStyle     = lipgloss.NewStyle().Foreground(statusBarNoteFg).Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).Render
	previewBorderStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(midGray)
	previewPlaceholderText = lipgloss.NewStyle().Foreground(gray).Italic(true).Render
)

func logoView() string {
	return logoStyle("memegen")
}
