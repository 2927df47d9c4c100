package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			MarginBottom(1)
)

// renderStatusBar renders the top status line.
func renderStatusBar(live bool, detail string, width int) string {
	var dot string
	if live {
		dot = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●") + " live"
	} else {
		dot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●") + " paused"
	}
	status := dot
	if detail != "" {
		status += "  " + detail
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderHelpBar renders the bottom keybinding line.
func renderHelpBar(width int) string {
	help := "p: pause/resume  r: refresh  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

// renderSection renders a titled block of label/value rows.
func renderSection(title string, rows [][2]string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return sectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func value(s string) string {
	return valueStyle.Render(s)
}

func optional(s *string) string {
	if s == nil {
		return dimStyle.Render("none")
	}
	if *s == "" {
		return dimStyle.Render(`""`)
	}
	return value(*s)
}

func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
