package ui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 32

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	faintGray = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			PaddingRight(2).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(faintGray)

	mainStyle = lipgloss.NewStyle().PaddingLeft(2)

	titleStyle = lipgloss.NewStyle().Bold(true).Render

	focusedTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(fuchsia).Render

	cursorStyle = lipgloss.NewStyle().Foreground(fuchsia).Render

	selectedStyle = lipgloss.NewStyle().Foreground(darkGreen).Render

	captionStyle = lipgloss.NewStyle().Foreground(gray).Render

	errorStyle = lipgloss.NewStyle().Foreground(red).Render

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Padding(0, 1).
			Render

	statusMessageStyle = lipgloss.NewStyle().Foreground(mintGreen).Render

	helpStyle = lipgloss.NewStyle().Foreground(gray).Render
)
