package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func title(s string) string { return titleStyle.Render(s) }

// field renders one "label value" summary line.
func field(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}
