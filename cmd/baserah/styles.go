package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6C7A89")
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#E53935")

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	replyStyle  = lipgloss.NewStyle().PaddingLeft(2)
	metaStyle   = lipgloss.NewStyle().Foreground(muted).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
	errorStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
)

func printBanner() {
	fmt.Println(bannerStyle.Render(fmt.Sprintf("Baserah %s\nبصيرة: مساعد عربي قائم على القواعد", version)))
	fmt.Println()
}

func meta(format string, args ...any) string {
	return metaStyle.Render(fmt.Sprintf(format, args...))
}
