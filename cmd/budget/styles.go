package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"envelope/internal/core"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// money renders an amount coloured by sign.
func money(d decimal.Decimal) string {
	return signStyle(d).Render(core.FormatAmount(d))
}

// cardMoney renders a credit card balance with an explicit sign.
func cardMoney(d decimal.Decimal) string {
	return signStyle(d).Render(core.FormatCardBalance(d))
}

func signStyle(d decimal.Decimal) lipgloss.Style {
	switch {
	case d.IsNegative():
		return negativeStyle
	case d.IsPositive():
		return positiveStyle
	default:
		return mutedStyle
	}
}

func success(msg string) string {
	return successStyle.Render("✓") + " " + msg
}
