package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHelpContent renders the help shown in ov
func renderHelpContent(keys KeyMap) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("lazypager Help"))
	help.WriteString("\n")

	sections := []struct {
		title    string
		bindings []keyHelp
	}{
		{"Paging", []keyHelp{
			fromBinding(keys.Prev), fromBinding(keys.Next),
			fromBinding(keys.First), fromBinding(keys.Last),
			{"0-9 ⏎", "Jump to page number"},
		}},
		{"Page", []keyHelp{
			fromBinding(keys.ZoomIn), fromBinding(keys.ZoomOut),
			fromBinding(keys.DoubleTap), fromBinding(keys.Tap),
			fromBinding(keys.Open),
		}},
		{"Other", []keyHelp{
			fromBinding(keys.Reload), fromBinding(keys.Dismiss),
			fromBinding(keys.Help), fromBinding(keys.HelpInOv),
			fromBinding(keys.Quit),
		}},
	}
	for _, s := range sections {
		help.WriteString(sectionStyle.Render(s.title))
		help.WriteString("\n")
		for _, b := range s.bindings {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(b.key), descStyle.Render(b.desc)))
		}
	}
	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  More files are read from the directory as you page towards the end."))
	return help.String()
}

type keyHelp struct {
	key  string
	desc string
}

func fromBinding(b key.Binding) keyHelp {
	h := b.Help()
	return keyHelp{key: h.Key, desc: h.Desc}
}
