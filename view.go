package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"akservo/servo"
)

// ------------------------------ Styles -----------------------------------------

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(10)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	readStyle   = lipgloss.NewStyle().PaddingRight(3)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func defaultTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	return s
}

// ------------------------------ View -------------------------------------------

func (m appModel) View() string {
	help := "tab:ports/sliders  c:connect  x:disconnect  r:refresh  o:origin  " +
		"←/→:move  shift+←/→:move x10  0:zero  e:exact value  enter:send  q:quit"

	var b strings.Builder
	b.WriteString(titleStyle.Render("akservo — AK servo mode controller") + "\n\n")

	b.WriteString(m.ports.View() + "\n")
	if port := m.session.Port(); port != "" {
		b.WriteString(okStyle.Render(fmt.Sprintf("Connected: %s", port)) + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("Not connected") + "\n\n")
	}

	for i, s := range m.sliders {
		label := labelStyle.Render(capitalize(s.mode.String()) + ":")
		value := fmt.Sprintf("% 12.2f", s.value)
		line := label + " " + s.bar.ViewAs(s.percent()) + " " + value
		if m.focus == focusSliders && i == m.active {
			line = activeStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if m.entering {
		b.WriteString("\n" + capitalize(m.sliders[m.active].mode.String()) + " value: " + m.input.View() + "\n")
	}

	t := m.telemetry
	b.WriteString("\n" + lipgloss.JoinHorizontal(lipgloss.Top,
		readStyle.Render("Position: "+t.Position),
		readStyle.Render("Speed: "+t.Speed),
		readStyle.Render("Current: "+t.Current),
		readStyle.Render("Temperature: "+t.Temperature),
		readStyle.Render("Error code: "+t.ErrorCode),
	) + "\n")
	if t.ErrorCode != "" {
		b.WriteString(dimStyle.Render("fault: "+servo.DescribeFault(t.ErrorCode)) + "\n")
	}
	st := m.session.Stats()
	b.WriteString(dimStyle.Render(fmt.Sprintf("frames %d  malformed %d  overruns %d", st.Frames, st.Malformed, st.Overruns)) + "\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(okStyle.Render(m.status) + "\n")
	b.WriteString(help)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
