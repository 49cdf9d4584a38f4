package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethanbaker/mitra/pkg/chat"
)

const timeFormat = "15:04"

// View renders the whole screen
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing...\n"
	}

	snap := m.view.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput(snap))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(snap))

	return b.String()
}

func (m Model) renderHeader(snap chat.Snapshot) string {
	title := m.styles.Header.Render(m.branding.Title)
	if !snap.BatchEnabled {
		return title
	}

	chatTab, batchTab := m.styles.Tab, m.styles.Tab
	if m.pane == BatchPane {
		batchTab = m.styles.ActiveTab
	} else {
		chatTab = m.styles.ActiveTab
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		title,
		" ",
		chatTab.Render("Chat"),
		batchTab.Render("CSV Upload"),
	)
}

// renderTranscript lists every message with its sender and time
func (m Model) renderTranscript(snap chat.Snapshot) string {
	var b strings.Builder

	for _, msg := range snap.Transcript {
		stamp := m.styles.Timestamp.Render(msg.Timestamp.Format(timeFormat))

		if msg.Role == chat.RoleUser {
			fmt.Fprintf(&b, "%s %s\n%s\n\n", m.styles.User.Render("You"), stamp, msg.Content)
			continue
		}

		fmt.Fprintf(&b, "%s %s\n%s\n\n", m.styles.Assistant.Render("Assistant"), stamp, m.renderMarkdown(msg.Content))
	}

	if snap.QueryPending() {
		fmt.Fprintf(&b, "%s %s\n", m.styles.Assistant.Render("Assistant"), m.spinner.View())
	}

	return b.String()
}

// renderMarkdown formats assistant replies through glamour when a renderer is available
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

// renderResults lists the batch results, the pending state and the visible error
func (m Model) renderResults(snap chat.Snapshot) string {
	var b strings.Builder

	if snap.FileName != "" {
		fmt.Fprintf(&b, "%s %s\n\n", m.styles.Muted.Render("Selected file:"), snap.FileName)
	}

	if snap.BatchError != "" {
		fmt.Fprintf(&b, "%s\n%s\n\n", m.styles.Error.Render(snap.BatchError), m.styles.Muted.Render("Press Esc to dismiss"))
	}

	if snap.BatchPending() {
		fmt.Fprintf(&b, "%s Processing...\n\n", m.spinner.View())
	}

	if len(snap.Results) == 0 {
		b.WriteString(m.styles.Muted.Render("No results yet. Type the path of a CSV file and press Enter."))
		return b.String()
	}

	for i, result := range snap.Results {
		fmt.Fprintf(&b, "%s %s\n", m.styles.User.Render(fmt.Sprintf("%d. Query:", i+1)), result.Query)
		fmt.Fprintf(&b, "%s %s\n", m.styles.Assistant.Render("   Response:"), result.Response)
		fmt.Fprintf(&b, "%s\n\n", m.styles.Muted.Render(fmt.Sprintf("   Source: %s | Confidence: %.0f%%", result.Source, result.Confidence*100)))
	}

	return b.String()
}

func (m Model) renderInput(snap chat.Snapshot) string {
	width := max(m.width-4, 20)

	if m.pane == BatchPane {
		if snap.BatchPending() {
			return m.styles.Input.Width(width).Render(m.styles.Muted.Render("Uploading..."))
		}
		return m.styles.Input.Width(width).Render(m.pathInput.View())
	}

	if snap.QueryPending() {
		return m.styles.Input.Width(width).Render(m.styles.Muted.Render("Waiting for a reply..."))
	}
	return m.styles.Input.Width(width).Render(m.chatInput.View())
}

func (m Model) renderFooter(snap chat.Snapshot) string {
	if m.notice != "" {
		return m.styles.Error.Render(m.notice)
	}

	help := "Enter: send • Ctrl+C: quit"
	if snap.BatchEnabled {
		help = "Enter: send • Tab: switch pane • Esc: dismiss error • Ctrl+C: quit"
	}
	return m.styles.Footer.Render(help)
}
