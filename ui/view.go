package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	listeningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	choiceStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	choiceSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("213")).
				Foreground(lipgloss.Color("213")).
				Padding(0, 1)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("213")).
			Padding(1, 2)
)

// syncViewport re-renders the story text into the viewport and follows the
// tail, so streamed chunks appear as they arrive.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	content := m.currentText
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = rendered
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Connecting to Azure services..."
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	switch {
	case m.showHelp:
		b.WriteString(m.helpView())
	case m.showDebug:
		b.WriteString(m.debugView())
	default:
		b.WriteString(storyStyle.Width(m.viewport.Width).Render(m.viewport.View()))
		b.WriteString("\n")
		b.WriteString(m.choicesView())
	}

	b.WriteString("\n")
	b.WriteString(m.textinput.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())

	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("PARALLEL PATHS")
	status := statusStyle.Render(fmt.Sprintf("scene %s · sanity %d%%", m.state.Scene, m.state.Sanity))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
}

func (m Model) choicesView() string {
	if len(m.choices) == 0 || m.isLoading {
		return ""
	}

	boxWidth := (m.width / 2) - 4
	if boxWidth < 10 {
		boxWidth = 10
	}

	rendered := make([]string, 0, len(m.choices))
	for i, choice := range m.choices {
		style := choiceStyle
		if i == m.selected {
			style = choiceSelectedStyle
		}
		label := fmt.Sprintf("%c · %s", 'A'+i, choice)
		rendered = append(rendered, style.Width(boxWidth).Render(label))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) statusView() string {
	switch {
	case m.listening:
		return listeningStyle.Render("🎤 Listening...")
	case m.isLoading:
		return m.spinner.View() + " Processing..."
	}

	audio := "off"
	if m.audioOn {
		audio = "on"
	}
	return statusStyle.Render(fmt.Sprintf("Enter to send · Tab to switch choices · H help · audio %s", audio))
}

func (m Model) helpView() string {
	lines := []string{
		"PARALLEL PATHS — HELP",
		"",
		"Enter   send typed text, or commit the highlighted choice",
		"Tab/↑/↓ switch between the two story choices",
		"V       voice input (speak your answer)",
		"E       codex: describe the current Environment",
		"I       codex: describe an Item found here",
		"L       codex: reveal a fragment of Lore",
		"M       toggle spoken narration",
		"D       toggle debug info",
		"H       toggle this help screen",
		"Esc     skip the current reveal / quit",
		"",
		"Hotkeys are uppercase and only fire while the input line is empty.",
		"Your choices affect the story and can lead to multiple endings.",
	}
	return overlayStyle.Width(m.width - 4).Render(strings.Join(lines, "\n"))
}

func (m Model) debugView() string {
	lines := []string{
		"DEBUG",
		"",
		fmt.Sprintf("Session:  %s", m.state.SessionID),
		fmt.Sprintf("Scene:    %s", m.state.Scene),
		fmt.Sprintf("Sanity:   %d%%", m.state.Sanity),
		fmt.Sprintf("Choices:  %d", len(m.state.ChoicesMade)),
		fmt.Sprintf("Messages: %d", len(m.state.History)),
		fmt.Sprintf("Voice:    %t   Audio: %t", m.voiceOn, m.audioOn),
		"",
		m.stats.String(),
	}
	return overlayStyle.Width(m.width - 4).Render(strings.Join(lines, "\n"))
}
