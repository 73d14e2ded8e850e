package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/agent"
	"github.com/diogo/agentchat/internal/history"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// sidebarWidth is the outer width of the side panel when open
const sidebarWidth = 34

// ToggleFunc is the zero-argument callback handed to child regions.
// Invoking it returns a command that asks the shell to flip sidebar visibility.
type ToggleFunc func() tea.Cmd

// toggleSidebarMsg is delivered to the shell when a child invokes its ToggleFunc
type toggleSidebarMsg struct{}

// ConversationStore defines the history operations needed by the TUI
type ConversationStore interface {
	ListSummaries() ([]history.Summary, error)
	CreateConversation(model string) (*history.Conversation, error)
	GetConversation(id string) (*history.Conversation, error)
	AddMessage(id string, msg models.ChatMessage) error
	DeleteConversation(id string) error
}

// ShellOptions carries the collaborators the shell wires into its regions
type ShellOptions struct {
	Agent      agent.Agent
	Store      ConversationStore // nil disables persistence and the conversation list
	ModelName  string
	RenderOpts render.Options
}

// Shell is the root model. It owns the sidebar-open flag and composes the
// side panel with the main chat region.
type Shell struct {
	sidebarOpen bool

	sidebar SidebarModel
	chat    ChatWindowModel

	width  int
	height int
	ready  bool
}

// NewShell creates the root model with the sidebar closed
func NewShell(opts ShellOptions) Shell {
	m := Shell{}
	m.sidebar = NewSidebarModel(opts.Store, m.sidebarOpen, m.toggleSidebar)
	m.chat = NewChatWindowModel(opts, m.toggleSidebar)
	return m
}

// toggleSidebar is the callback passed to both regions
func (m Shell) toggleSidebar() tea.Cmd {
	return func() tea.Msg {
		return toggleSidebarMsg{}
	}
}

// ToggleSidebar flips the sidebar visibility flag
func (m *Shell) ToggleSidebar() {
	m.sidebarOpen = !m.sidebarOpen
	m.sidebar = m.sidebar.withOpen(m.sidebarOpen)
	m.resize()
}

// SidebarOpen reports whether the side panel is visible
func (m Shell) SidebarOpen() bool {
	return m.sidebarOpen
}

// Init initializes both regions
func (m Shell) Init() tea.Cmd {
	return tea.Batch(m.sidebar.Init(), m.chat.Init())
}

// Update routes messages. Keys go to the sidebar while it is open and to the
// chat window otherwise; everything else reaches both regions.
func (m Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.sidebarOpen {
			m.sidebar, cmd = m.sidebar.Update(msg)
		} else {
			m.chat, cmd = m.chat.Update(msg)
		}
		return m, cmd

	case toggleSidebarMsg:
		m.ToggleSidebar()
		logging.GetLogger().Debugw("sidebar toggled", "open", m.sidebarOpen)
		if m.sidebarOpen {
			return m, m.sidebar.refresh()
		}
		return m, nil

	case conversationSelectedMsg:
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
		if m.sidebarOpen {
			cmds = append(cmds, m.toggleSidebar())
		}
		return m, tea.Batch(cmds...)
	}

	m.sidebar, cmd = m.sidebar.Update(msg)
	cmds = append(cmds, cmd)
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// resize hands each region its share of the window
func (m *Shell) resize() {
	if !m.ready {
		return
	}
	chatWidth := m.width
	if m.sidebarOpen {
		chatWidth -= sidebarWidth
	}
	m.sidebar = m.sidebar.setSize(sidebarWidth, m.height)
	m.chat = m.chat.setSize(chatWidth, m.height)
}

// View renders the side panel (when open) next to the main region
func (m Shell) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	main := m.chat.View()
	if !m.sidebarOpen {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}

// RunShell starts the chat TUI
func RunShell(opts ShellOptions) error {
	p := tea.NewProgram(
		NewShell(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
