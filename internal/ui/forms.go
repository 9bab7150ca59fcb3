package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/framepick/framepick/internal/api"
)

// loginForm holds the email/password inputs.
type loginForm struct {
	inputs [2]textinput.Model
	focus  int
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{inputs: [2]textinput.Model{email, password}}
}

func (f loginForm) focusCmd() tea.Cmd {
	return textinput.Blink
}

// registerForm holds the username/email/password inputs.
type registerForm struct {
	inputs [3]textinput.Model
	focus  int
}

func newRegisterForm() registerForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return registerForm{inputs: [3]textinput.Model{username, email, password}}
}

// uploadForm holds the file path input.
type uploadForm struct {
	input textinput.Model
}

func newUploadForm() uploadForm {
	input := textinput.New()
	input.Placeholder = "/path/to/video.mp4"
	input.CharLimit = 1024
	input.Focus()
	return uploadForm{input: input}
}

// handleLoginKey processes keyboard input for the login view.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formBusy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "ctrl+r":
		m.currentView = ViewRegister
		m.formErr = ""
		m.formNotice = ""
		m.registerForm = newRegisterForm()
		return m, m.registerForm.inputs[0].Focus()

	case "tab", "down":
		m.loginForm.focus = (m.loginForm.focus + 1) % len(m.loginForm.inputs)
		return m, m.focusLoginInput()

	case "shift+tab", "up":
		m.loginForm.focus = (m.loginForm.focus + len(m.loginForm.inputs) - 1) % len(m.loginForm.inputs)
		return m, m.focusLoginInput()

	case "enter":
		email := strings.TrimSpace(m.loginForm.inputs[0].Value())
		password := m.loginForm.inputs[1].Value()
		if email == "" || password == "" {
			m.formErr = "Email and password are required."
			return m, nil
		}
		m.formBusy = true
		m.formErr = ""
		m.formNotice = ""
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	m.loginForm.inputs[m.loginForm.focus], cmd = m.loginForm.inputs[m.loginForm.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusLoginInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.loginForm.inputs {
		if i == m.loginForm.focus {
			cmd = m.loginForm.inputs[i].Focus()
			continue
		}
		m.loginForm.inputs[i].Blur()
	}
	return cmd
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.formBusy = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrInvalidCredentials) {
			m.formErr = "Invalid email or password."
		} else {
			m.formErr = msg.err.Error()
		}
		return m, nil
	}
	m.formErr = ""
	m.formNotice = ""
	m.currentView = ViewVideos
	m.selectedRow = 0
	return m, m.refreshListCmd()
}

// handleRegisterKey processes keyboard input for the register view.
func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formBusy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = ViewLogin
		m.formErr = ""
		return m, m.loginForm.focusCmd()

	case "tab", "down":
		m.registerForm.focus = (m.registerForm.focus + 1) % len(m.registerForm.inputs)
		return m, m.focusRegisterInput()

	case "shift+tab", "up":
		m.registerForm.focus = (m.registerForm.focus + len(m.registerForm.inputs) - 1) % len(m.registerForm.inputs)
		return m, m.focusRegisterInput()

	case "enter":
		username := strings.TrimSpace(m.registerForm.inputs[0].Value())
		email := strings.TrimSpace(m.registerForm.inputs[1].Value())
		password := m.registerForm.inputs[2].Value()
		if username == "" || email == "" || password == "" {
			m.formErr = "All fields are required."
			return m, nil
		}
		m.formBusy = true
		m.formErr = ""
		return m, m.registerCmd(username, email, password)
	}

	var cmd tea.Cmd
	m.registerForm.inputs[m.registerForm.focus], cmd = m.registerForm.inputs[m.registerForm.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusRegisterInput() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.registerForm.inputs {
		if i == m.registerForm.focus {
			cmd = m.registerForm.inputs[i].Focus()
			continue
		}
		m.registerForm.inputs[i].Blur()
	}
	return cmd
}

func (m Model) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	m.formBusy = false
	if msg.err != nil {
		var validation *api.ValidationError
		if errors.As(msg.err, &validation) {
			m.formErr = validation.Message
		} else {
			m.formErr = msg.err.Error()
		}
		return m, nil
	}
	m.currentView = ViewLogin
	m.formErr = ""
	m.formNotice = fmt.Sprintf("Account created for %s. Log in to continue.", msg.identity.Username)
	m.loginForm = newLoginForm()
	return m, m.loginForm.focusCmd()
}

// handleUploadKey processes keyboard input for the upload view.
func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formBusy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.currentView = ViewVideos
		m.formErr = ""
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.uploadForm.input.Value())
		if path == "" {
			m.formErr = "Enter the path of a video file."
			return m, nil
		}
		m.formBusy = true
		m.formErr = ""
		return m, m.uploadCmd(path)
	}

	var cmd tea.Cmd
	m.uploadForm.input, cmd = m.uploadForm.input.Update(msg)
	return m, cmd
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	m.formBusy = false
	if m.sessionLost(msg.err) {
		return m.forceLogin("Session expired, please log in again.")
	}
	if msg.err != nil {
		m.formErr = uploadErrText(msg.err)
		return m, nil
	}
	m.formErr = ""
	m.uploadForm = newUploadForm()
	// Hand the new job straight to the status tracker.
	return m.openDetail(msg.result.VideoID)
}

func uploadErrText(err error) string {
	switch {
	case errors.Is(err, api.ErrUnsupportedFileType):
		return "Not a video file. Supported: .mp4 .avi .mov .mkv .webm"
	case errors.Is(err, api.ErrFileTooLarge):
		return "File exceeds the 500MB upload limit."
	}
	var validation *api.ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	return err.Error()
}

// Renderers

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("framepick — sign in"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.MutedText.Render("email") + "\n")
	b.WriteString(m.loginForm.inputs[0].View() + "\n\n")
	b.WriteString(m.styles.MutedText.Render("password") + "\n")
	b.WriteString(m.loginForm.inputs[1].View() + "\n")
	b.WriteString(m.renderFormFooter("enter login  •  ctrl+r register  •  esc quit"))
	return m.styles.Box.Render(b.String())
}

func (m Model) renderRegister() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("framepick — create account"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.MutedText.Render("username") + "\n")
	b.WriteString(m.registerForm.inputs[0].View() + "\n\n")
	b.WriteString(m.styles.MutedText.Render("email") + "\n")
	b.WriteString(m.registerForm.inputs[1].View() + "\n\n")
	b.WriteString(m.styles.MutedText.Render("password") + "\n")
	b.WriteString(m.registerForm.inputs[2].View() + "\n")
	b.WriteString(m.renderFormFooter("enter submit  •  esc back"))
	return m.styles.Box.Render(b.String())
}

func (m Model) renderUpload() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Upload video"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.MutedText.Render("file path") + "\n")
	b.WriteString(m.uploadForm.input.View() + "\n")
	b.WriteString("\n")
	b.WriteString(m.styles.FaintText.Render("One upload per submission, up to 500MB."))
	b.WriteString(m.renderFormFooter("enter upload  •  esc back"))
	return m.styles.Box.Render(b.String())
}

func (m Model) renderFormFooter(help string) string {
	var b strings.Builder
	b.WriteString("\n")
	if m.formBusy {
		b.WriteString(m.styles.WarningText.Render("Working..."))
		b.WriteString("\n")
	}
	if m.formErr != "" {
		b.WriteString(m.styles.DangerText.Render(m.formErr))
		b.WriteString("\n")
	}
	if m.formNotice != "" {
		b.WriteString(m.styles.SuccessText.Render(m.formNotice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.FaintText.Render(help))
	return b.String()
}
