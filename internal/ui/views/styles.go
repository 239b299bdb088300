package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Header      lipgloss.Style
	Dim         lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Position    lipgloss.Style
	Jump        lipgloss.Style
	Help        lipgloss.Style
	Page        lipgloss.Style
	PageFaded   lipgloss.Style
	Binary      lipgloss.Style
	Empty       lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Header:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		Dim:         lipgloss.NewStyle().Faint(true),
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Position:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		Jump:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:        lipgloss.NewStyle().Faint(true),
		Page:        lipgloss.NewStyle(),
		PageFaded:   lipgloss.NewStyle().Faint(true),
		Binary:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true),
	}
}
