// Package tui renders the onboarding conversation in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/onboard/internal/channel"
	"github.com/zhouzirui/onboard/internal/model/chat"
	"github.com/zhouzirui/onboard/internal/session"
)

const (
	startTitle      = "Welcome to our Onboarding Process!"
	startButton     = "Press Enter to Start the Process"
	chatTitle       = "Let's Get You Onboarded!"
	completeBadge   = "Onboarding Complete!"
	completionNote  = "Thank you for completing the onboarding process!"
	inputHint       = "Type your message..."
	openTimeout      = 15 * time.Second
	maxPendingErrors = 32
)

// Link is the lifecycle half of the transport; the session controller
// owns the message half.
type Link interface {
	Open(ctx context.Context) error
	Close() error
}

type screen int

const (
	screenStart screen = iota
	screenChat
)

type linkStatus int

const (
	linkConnecting linkStatus = iota
	linkOpen
	linkDown
)

type linkOpenedMsg struct {
	err error
}

type sessionUpdateMsg struct {
	errs []error
}

// Model is the bubbletea model for the onboarding client.
type Model struct {
	link    Link
	ctrl    *session.Controller
	updates *UpdateFeed

	screen     screen
	status     linkStatus
	statusLine string
	statusErr  bool
	snap       session.Snapshot

	width  int
	height int

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	theme uiTheme
}

// UpdateFeed coalesces controller updates into wakeups for the UI.
//
// The model re-reads the controller on every wakeup, so pending snapshots
// collapse into one signal. Errors are queued because each one becomes a
// status line. Observe never blocks: Submit publishes from the UI
// goroutine, which is also the only reader.
type UpdateFeed struct {
	mu      sync.Mutex
	errs    []error
	dropped int
	wake    chan struct{}
}

// NewUpdateFeed creates an empty feed. Register Observe on the controller.
func NewUpdateFeed() *UpdateFeed {
	return &UpdateFeed{wake: make(chan struct{}, 1)}
}

// Observe records u and wakes the UI.
func (f *UpdateFeed) Observe(u session.Update) {
	if u.Err != nil {
		f.mu.Lock()
		if len(f.errs) == maxPendingErrors {
			f.errs = f.errs[1:]
			f.dropped++
		}
		f.errs = append(f.errs, u.Err)
		f.mu.Unlock()
	}

	select {
	case f.wake <- struct{}{}:
	default:
		// 已有未处理的唤醒，UI 会重新读取最新状态。
	}
}

func (f *UpdateFeed) take() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropped > 0 {
		log.Printf("[tui] %d channel errors dropped while the UI was busy", f.dropped)
		f.dropped = 0
	}
	errs := f.errs
	f.errs = nil
	return errs
}

// New builds the model. updates must be the feed whose Observe was
// registered on ctrl.
func New(link Link, ctrl *session.Controller, updates *UpdateFeed) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = inputHint

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	transcript := viewport.New(0, 0)
	transcript.MouseWheelEnabled = true
	transcript.MouseWheelDelta = 3

	return Model{
		link:       link,
		ctrl:       ctrl,
		updates:    updates,
		screen:     screenStart,
		status:     linkConnecting,
		statusLine: "connecting...",
		snap:       ctrl.Snapshot(),
		input:      input,
		transcript: transcript,
		spinner:    sp,
		theme:      newTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		openLinkCmd(m.link),
		waitUpdate(m.updates),
	)
}

func openLinkCmd(link Link) tea.Cmd {
	if link == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		return linkOpenedMsg{err: link.Open(ctx)}
	}
}

func waitUpdate(feed *UpdateFeed) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		<-feed.wake
		return sessionUpdateMsg{errs: feed.take()}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case linkOpenedMsg:
		if msg.err != nil {
			m.status = linkDown
			m.setStatus(fmt.Sprintf("connection failed: %v", msg.err), true)
			return m, nil
		}
		m.status = linkOpen
		m.setStatus("connected", false)
		return m, nil

	case sessionUpdateMsg:
		m.applyUpdate(msg.errs)
		return m, waitUpdate(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.screen == screenChat {
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}

	if m.screen == screenStart {
		if msg.Type == tea.KeyEnter {
			m.screen = screenChat
			m.refresh()
			if m.snap.State == session.Active {
				return m, m.input.Focus()
			}
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	if m.snap.State == session.Complete {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() {
	result, err := m.ctrl.Submit(m.input.Value())
	if result != session.Accepted {
		return
	}

	// 发送失败时保留草稿，用户可以在连接恢复后重发。
	if err != nil {
		m.setStatus(fmt.Sprintf("message not delivered: %v", err), true)
	} else {
		m.input.Reset()
	}
	m.refresh()
}

func (m *Model) applyUpdate(errs []error) {
	for _, err := range errs {
		var malformed *channel.MalformedFrameError
		var connErr *channel.ConnectionError
		switch {
		case errors.As(err, &malformed):
			m.setStatus("ignored a malformed message from the agent", true)
		case errors.As(err, &connErr):
			m.status = linkDown
			m.setStatus(fmt.Sprintf("disconnected: %v", connErr.Err), true)
		case errors.Is(err, channel.ErrNotReady):
			m.setStatus("message not delivered: not connected", true)
		default:
			m.setStatus(err.Error(), true)
		}
	}
	m.refresh()
}

// refresh re-reads the controller; wakeups carry no snapshot.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	if m.snap.State == session.Complete {
		m.input.Blur()
	}
	m.transcript.SetContent(renderTranscript(m.snap.Transcript, m.transcript.Width, m.theme))
	m.transcript.GotoBottom()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusLine = text
	m.statusErr = isErr
}

func (m *Model) layout() {
	contentWidth := max(20, m.width-6)
	m.input.Width = max(10, contentWidth-4)

	headerHeight := 3
	inputHeight := 3
	footerHeight := 1
	m.transcript.Width = contentWidth
	m.transcript.Height = max(3, m.height-headerHeight-inputHeight-footerHeight-4)
	m.refresh()
}

func (m Model) View() string {
	if m.screen == screenStart {
		return m.viewStart()
	}
	return m.viewChat()
}

func (m Model) viewStart() string {
	body := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.startTitle.Render(startTitle),
		"",
		m.theme.startButton.Render(startButton),
		"",
		m.theme.muted.Render("esc to quit"),
	)
	frame := m.theme.startFrame.Render(body)
	if m.width == 0 || m.height == 0 {
		return frame
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame)
}

func (m Model) viewChat() string {
	title := m.theme.title.Render(chatTitle)
	if m.snap.State == session.Complete {
		title = lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", m.theme.completeBadge.Render(completeBadge))
	}
	header := m.theme.header.Render(title)

	transcript := m.theme.panel.Render(m.transcript.View())

	var input string
	if m.snap.State == session.Complete {
		input = m.theme.inputPanel.Render(m.theme.completion.Render(completionNote))
	} else {
		input = m.theme.inputPanel.Render(m.input.View())
	}

	footer := m.theme.footer.Render(m.statusView() + "  ·  enter send · pgup/pgdn scroll · esc quit")

	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left, header, transcript, input, footer))
}

func (m Model) statusView() string {
	var link string
	switch m.status {
	case linkConnecting:
		link = m.spinner.View() + " connecting"
	case linkOpen:
		link = m.theme.status.Render("● connected")
	case linkDown:
		link = m.theme.errorStatus.Render("● disconnected")
	}
	if m.statusLine == "" || m.statusLine == "connected" || m.statusLine == "connecting..." {
		return link
	}
	if m.statusErr {
		return link + " " + m.theme.errorStatus.Render(m.statusLine)
	}
	return link + " " + m.theme.status.Render(m.statusLine)
}

func renderTranscript(messages []chat.Message, width int, theme uiTheme) string {
	if width <= 0 {
		width = 80
	}
	bubbleWidth := max(10, width*3/4)

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		text := strings.TrimRight(msg.Text, "\n")
		if msg.IsFromUser {
			label := theme.userLabel.Render("You")
			bubble := theme.userBubble.Width(bubbleWidth).Render(text)
			block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Right, block))
			continue
		}
		label := theme.agentLabel.Render("Agent")
		bubble := theme.agentBubble.Width(bubbleWidth).Render(text)
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, label, bubble))
	}
	return strings.Join(blocks, "\n\n")
}
