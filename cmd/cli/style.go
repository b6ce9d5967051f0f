package main

import "github.com/charmbracelet/lipgloss"

var (
	green = lipgloss.Color("#10B981")
	red   = lipgloss.Color("#EF4444")
	dim   = lipgloss.Color("#6B7280")
	brand = lipgloss.Color("#7C3AED")

	passed  = lipgloss.NewStyle().Foreground(green).Bold(true)
	failed  = lipgloss.NewStyle().Foreground(red).Bold(true)
	dimText = lipgloss.NewStyle().Foreground(dim)
	bold    = lipgloss.NewStyle().Bold(true)

	tableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(brand).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dim)
)
