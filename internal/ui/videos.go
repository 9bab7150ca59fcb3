package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/framepick/framepick/internal/api"
)

// handleVideosKey processes keyboard input for the video list view.
func (m Model) handleVideosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		return m, tea.Quit

	case "u":
		m.currentView = ViewUpload
		m.formErr = ""
		m.uploadForm = newUploadForm()
		return m, m.uploadForm.input.Focus()

	case "r":
		return m, m.refreshListCmd()

	case "x":
		return m, m.logoutCmd()

	case "enter", "d":
		if video := m.selectedVideo(); video != nil {
			return m.openDetail(video.ID)
		}
		return m, nil

	case "j", "down":
		if m.selectedRow < len(m.snapshot.Videos)-1 {
			m.selectedRow++
		}
	case "k", "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "g", "home":
		m.selectedRow = 0
	case "G", "end":
		if n := len(m.snapshot.Videos); n > 0 {
			m.selectedRow = n - 1
		}
	}

	return m, nil
}

func (m Model) selectedVideo() *api.Video {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snapshot.Videos) {
		return nil
	}
	return &m.snapshot.Videos[m.selectedRow]
}

func (m *Model) clampSelection() {
	if n := len(m.snapshot.Videos); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// renderVideos renders the video list with a header and status line.
func (m Model) renderVideos() string {
	var b strings.Builder

	user, _ := m.sessions.User()
	header := m.styles.Title.Render("framepick") + "  " +
		m.styles.MutedText.Render(user.Username)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderListStatus())
	b.WriteString("\n\n")

	if len(m.snapshot.Videos) == 0 {
		if m.snapshot.HasData {
			b.WriteString(m.styles.MutedText.Render("No videos yet. Press u to upload one."))
		} else {
			b.WriteString(m.styles.MutedText.Render("Loading videos..."))
		}
	} else {
		b.WriteString(m.renderVideoTable())
	}

	b.WriteString("\n\n")
	b.WriteString(m.styles.FaintText.Render("enter detail  •  u upload  •  r refresh  •  x logout  •  e exit"))
	return b.String()
}

func (m Model) renderListStatus() string {
	parts := []string{
		m.styles.MutedText.Render(fmt.Sprintf("Videos: %d", m.snapshot.Total)),
	}
	if m.snapshot.HasMore {
		parts = append(parts, m.styles.FaintText.Render("(first page shown)"))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, m.styles.DangerText.Render("OFFLINE"))
	} else if m.snapshot.LastError != nil {
		parts = append(parts, m.styles.WarningText.Render("refresh failed, retrying"))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, m.styles.FaintText.Render(m.snapshot.LastUpdated.Format("15:04:05")))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderVideoTable() string {
	var b strings.Builder

	b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("  %-36s %-12s %8s  %s", "FILENAME", "STATUS", "FRAMES", "UPLOADED")))
	b.WriteString("\n")

	for i, video := range m.snapshot.Videos {
		frames := "-"
		if video.FrameCount > 0 {
			frames = fmt.Sprintf("%d", video.FrameCount)
		}
		line := fmt.Sprintf("  %-36s %-12s %8s  %s",
			truncate(video.Filename, 36),
			video.Status,
			frames,
			relativeTime(video.ParsedCreatedAt()),
		)
		if i == m.selectedRow {
			b.WriteString(m.styles.Selected.Render("▸" + line[1:]))
		} else {
			b.WriteString(m.styles.statusStyle(video.Status).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	since := time.Since(t)
	switch {
	case since < time.Minute:
		return "just now"
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(since.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
