package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the browser's palette, in ANSI 256-color codes.
type Theme struct {
	NormalText         lipgloss.Color
	FaintText          lipgloss.Color
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	HeaderForeground   lipgloss.Color
	BorderColor        lipgloss.Color
	ExpiredText        lipgloss.Color
	ErrorText          lipgloss.Color
}

// DefaultTheme suits dark terminals.
var DefaultTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	HeaderForeground:   lipgloss.Color("39"),
	BorderColor:        lipgloss.Color("240"),
	ExpiredText:        lipgloss.Color("167"),
	ErrorText:          lipgloss.Color("196"),
}

type styles struct {
	header   lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	faint    lipgloss.Style
	expired  lipgloss.Style
	err      lipgloss.Style
	detail   lipgloss.Style
	label    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(t.HeaderForeground),
		row:      lipgloss.NewStyle().Foreground(t.NormalText),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.SelectedForeground).Background(t.SelectedBackground),
		faint:    lipgloss.NewStyle().Foreground(t.FaintText),
		expired:  lipgloss.NewStyle().Foreground(t.ExpiredText),
		err:      lipgloss.NewStyle().Foreground(t.ErrorText),
		detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderColor).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(t.FaintText).Width(10),
	}
}
