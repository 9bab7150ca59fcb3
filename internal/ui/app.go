// Package ui provides the Bubble Tea terminal interface for Framepick.
package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/framepick/framepick/internal/api"
	"github.com/framepick/framepick/internal/creds"
	"github.com/framepick/framepick/internal/session"
	"github.com/framepick/framepick/internal/state"
	"github.com/framepick/framepick/internal/tracker"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewVideos
	ViewDetail
	ViewUpload
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Client   *api.Client
	Sessions *session.Manager
	Videos   *state.Store
	Tracker  *tracker.Tracker
	PollTick time.Duration
	Theme    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	client   *api.Client
	sessions *session.Manager
	videos   *state.Store
	tracker  *tracker.Tracker
	pollTick time.Duration

	// UI state
	theme       Theme
	styles      Styles
	currentView View
	width       int
	height      int
	ready       bool

	// Form state (login, register, upload share the notice line)
	loginForm    loginForm
	registerForm registerForm
	uploadForm   uploadForm
	formBusy     bool
	formErr      string
	formNotice   string

	// Videos state
	snapshot    state.Snapshot
	selectedRow int

	// Detail state
	detailID    string
	sub         *tracker.Subscription
	detailSnap  tracker.Snapshot
	download    *api.Download
	downloadErr error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 3 * time.Second
	}

	theme := GetTheme(opts.Theme)

	view := ViewLogin
	if opts.Sessions != nil && opts.Sessions.Active() {
		view = ViewVideos
	}

	return Model{
		ctx:          ctx,
		client:       opts.Client,
		sessions:     opts.Sessions,
		videos:       opts.Videos,
		tracker:      opts.Tracker,
		pollTick:     pollTick,
		theme:        theme,
		styles:       theme.Styles(),
		currentView:  view,
		loginForm:    newLoginForm(),
		registerForm: newRegisterForm(),
		uploadForm:   newUploadForm(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.currentView == ViewVideos {
		cmds = append(cmds, m.fetchListCmd())
	} else {
		cmds = append(cmds, m.loginForm.focusCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case listMsg:
		m.snapshot = state.Snapshot(msg)
		if m.sessionLost(m.snapshot.LastError) {
			return m.forceLogin("Session expired, please log in again.")
		}
		m.clampSelection()
		return m, nil

	case detailMsg:
		m.detailSnap = tracker.Snapshot(msg)
		if m.sessionLost(m.detailSnap.LastError) {
			return m.forceLogin("Session expired, please log in again.")
		}
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case registerDoneMsg:
		return m.handleRegisterDone(msg)

	case logoutDoneMsg:
		return m.forceLogin("Logged out.")

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case downloadDoneMsg:
		m.download = msg.download
		m.downloadErr = msg.err
		if m.sessionLost(msg.err) {
			return m.forceLogin("Session expired, please log in again.")
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.currentView {
	case ViewLogin:
		return m.renderLogin()
	case ViewRegister:
		return m.renderRegister()
	case ViewVideos:
		return m.renderVideos()
	case ViewDetail:
		return m.renderDetail()
	case ViewUpload:
		return m.renderUpload()
	default:
		return ""
	}
}

// handleKey dispatches keyboard input to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stopWatching()
		return m, tea.Quit
	}

	switch m.currentView {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewRegister:
		return m.handleRegisterKey(msg)
	case ViewVideos:
		return m.handleVideosKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewUpload:
		return m.handleUploadKey(msg)
	}
	return m, nil
}

// handleTick pulls fresh snapshots for whatever is on screen and
// schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}

	if m.sessions.Active() {
		switch m.currentView {
		case ViewVideos:
			cmds = append(cmds, m.fetchListCmd())
		case ViewDetail:
			if m.sub != nil {
				cmds = append(cmds, fetchDetailCmd(m.sub))
			}
		}
	}
	return m, tea.Batch(cmds...)
}

// sessionLost reports whether an error means the session is gone.
func (m Model) sessionLost(err error) bool {
	return err != nil && errors.Is(err, api.ErrSessionExpired)
}

// forceLogin drops back to the login view with a notice, discarding any
// per-session view state.
func (m Model) forceLogin(notice string) (tea.Model, tea.Cmd) {
	m.stopWatching()
	m.currentView = ViewLogin
	m.formBusy = false
	m.formErr = ""
	m.formNotice = notice
	m.loginForm = newLoginForm()
	m.snapshot = state.Snapshot{}
	m.selectedRow = 0
	return m, m.loginForm.focusCmd()
}

// stopWatching releases the detail subscription if one is open.
func (m *Model) stopWatching() {
	if m.sub != nil {
		m.sub.Stop()
		m.sub = nil
	}
	m.detailID = ""
	m.detailSnap = tracker.Snapshot{}
	m.download = nil
	m.downloadErr = nil
}

// openDetail starts (or joins) the poll loop for a video and switches
// to the detail view.
func (m Model) openDetail(videoID string) (tea.Model, tea.Cmd) {
	m.stopWatching()
	m.detailID = videoID
	m.sub = m.tracker.Watch(videoID)
	m.currentView = ViewDetail
	return m, fetchDetailCmd(m.sub)
}

// Messages

type tickMsg time.Time

type listMsg state.Snapshot

type detailMsg tracker.Snapshot

type loginDoneMsg struct {
	identity creds.Identity
	err      error
}

type registerDoneMsg struct {
	identity *api.Identity
	err      error
}

type logoutDoneMsg struct{}

type uploadDoneMsg struct {
	result *api.UploadResult
	err    error
}

type downloadDoneMsg struct {
	download *api.Download
	err      error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchListCmd reads the poller's latest list snapshot.
func (m Model) fetchListCmd() tea.Cmd {
	store := m.videos
	return func() tea.Msg {
		return listMsg(store.Snapshot())
	}
}

// refreshListCmd forces a list fetch instead of waiting for the poller.
func (m Model) refreshListCmd() tea.Cmd {
	return func() tea.Msg {
		list, err := m.client.ListVideos(m.ctx, 20, 0)
		m.videos.Update(list, err)
		return listMsg(m.videos.Snapshot())
	}
}

func fetchDetailCmd(sub *tracker.Subscription) tea.Cmd {
	return func() tea.Msg {
		return detailMsg(sub.Snapshot())
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		identity, err := m.sessions.Login(m.ctx, email, password)
		return loginDoneMsg{identity: identity, err: err}
	}
}

func (m Model) registerCmd(username, email, password string) tea.Cmd {
	return func() tea.Msg {
		identity, err := m.sessions.Register(m.ctx, username, email, password)
		return registerDoneMsg{identity: identity, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.sessions.Logout(m.ctx)
		return logoutDoneMsg{}
	}
}

func (m Model) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.UploadFile(m.ctx, path)
		return uploadDoneMsg{result: result, err: err}
	}
}

// downloadCmd fetches the download link. Overlapping fetches are not
// cancelled; the latest response wins on arrival.
func downloadCmd(ctx context.Context, sub *tracker.Subscription) tea.Cmd {
	return func() tea.Msg {
		download, err := sub.Download(ctx)
		return downloadDoneMsg{download: download, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
