package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/framepick/framepick/internal/api"
)

// handleDetailKey processes keyboard input for the video detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.stopWatching()
		m.currentView = ViewVideos
		return m, m.fetchListCmd()

	case "e":
		m.stopWatching()
		return m, tea.Quit

	case "d":
		// No-op unless the job completed; the gate lives in the
		// subscription so no request is ever sent early.
		if m.sub != nil && m.detailSnap.HasStatus && m.detailSnap.Status.Status == api.StatusCompleted {
			return m, downloadCmd(m.ctx, m.sub)
		}
		return m, nil
	}
	return m, nil
}

// renderDetail renders the live status of one processing job.
func (m Model) renderDetail() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Video detail"))
	b.WriteString("\n\n")

	snap := m.detailSnap
	if !snap.HasStatus {
		if snap.LastError != nil {
			b.WriteString(m.styles.WarningText.Render("Status unavailable, retrying..."))
		} else {
			b.WriteString(m.styles.MutedText.Render("Fetching status..."))
		}
		b.WriteString("\n")
		b.WriteString(m.renderDetailFooter())
		return m.styles.Box.Render(b.String())
	}

	status := snap.Status
	b.WriteString(m.styles.Text.Render(status.Filename))
	b.WriteString("\n\n")
	b.WriteString(m.styles.MutedText.Render("status    "))
	b.WriteString(m.styles.statusStyle(status.Status).Render(status.Status))
	b.WriteString("\n")

	if status.FrameCount > 0 {
		b.WriteString(m.styles.MutedText.Render("frames    "))
		b.WriteString(m.styles.Text.Render(fmt.Sprintf("%d", status.FrameCount)))
		b.WriteString("\n")
	}
	if status.Status == api.StatusFailed && status.ErrorMessage != "" {
		b.WriteString(m.styles.MutedText.Render("error     "))
		b.WriteString(m.styles.DangerText.Render(status.ErrorMessage))
		b.WriteString("\n")
	}

	if snap.LastError != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.WarningText.Render("Last refresh failed, retrying on next tick."))
		b.WriteString("\n")
	}

	switch {
	case m.download != nil:
		b.WriteString("\n")
		b.WriteString(m.styles.SuccessText.Render("Download ready:"))
		b.WriteString("\n")
		b.WriteString(m.styles.AccentText.Render(m.download.DownloadURL))
		b.WriteString("\n")
		b.WriteString(m.styles.FaintText.Render(fmt.Sprintf("expires in %ds", m.download.ExpiresIn)))
		b.WriteString("\n")
	case m.downloadErr != nil:
		b.WriteString("\n")
		b.WriteString(m.styles.DangerText.Render("Download failed: " + m.downloadErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderDetailFooter())
	return m.styles.Box.Render(b.String())
}

func (m Model) renderDetailFooter() string {
	help := "esc back  •  e exit"
	if m.detailSnap.HasStatus {
		switch m.detailSnap.Status.Status {
		case api.StatusCompleted:
			help = "d download frames  •  " + help
		case api.StatusPending, api.StatusProcessing:
			help = "refreshing every few seconds  •  " + help
		}
	}
	return "\n\n" + m.styles.FaintText.Render(help)
}
