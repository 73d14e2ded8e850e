package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/agent"
	"github.com/diogo/agentchat/internal/history"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

// Message types for the chat window
type (
	responseMsg struct {
		requestID int
		convID    string
		reply     models.ChatMessage
	}
	errMsg struct {
		requestID int
		err       error
	}
	conversationLoadedMsg struct {
		conv *history.Conversation
		err  error
	}
	// conversationUpdatedMsg tells the sidebar a conversation gained messages
	conversationUpdatedMsg struct {
		id string
	}
)

// ChatWindowModel is the main region: message list, input and status bar
type ChatWindowModel struct {
	agent         agent.Agent
	store         ConversationStore
	modelName     string
	renderOpts    render.Options
	toggleSidebar ToggleFunc

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	messages  []models.ChatMessage
	convID    string
	loading   bool
	requestID int
	cancel    context.CancelFunc
	err       error
	feedback  string

	width  int
	height int
	ready  bool
}

// NewChatWindowModel creates the main region
func NewChatWindowModel(opts ShellOptions, toggleSidebar ToggleFunc) ChatWindowModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	ag := opts.Agent
	if ag == nil {
		ag = agent.NewEchoAgent()
	}
	modelName := opts.ModelName
	if modelName == "" {
		modelName = ag.Name()
	}

	return ChatWindowModel{
		agent:         ag,
		store:         opts.Store,
		modelName:     modelName,
		renderOpts:    opts.RenderOpts,
		toggleSidebar: toggleSidebar,
		textarea:      ta,
		spinner:       s,
		messages:      []models.ChatMessage{},
	}
}

// Init starts the cursor blink
func (m ChatWindowModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m ChatWindowModel) setSize(width, height int) ChatWindowModel {
	m.width = width
	m.height = height

	headerHeight := 3 // Header panel with border
	inputHeight := 5  // Input panel with border
	statusHeight := 1 // Status bar
	extra := 3        // Messages border and feedback line

	vpHeight := height - headerHeight - inputHeight - statusHeight - extra
	if vpHeight < 3 {
		vpHeight = 3
	}
	contentWidth := width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 2)
	m.updateViewport()
	return m
}

// Update handles input, agent replies and conversation loading
func (m ChatWindowModel) Update(msg tea.Msg) (ChatWindowModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+b":
			return m, m.toggleSidebar()

		case "esc":
			if m.loading {
				m.cancelRequest()
				m.feedback = "Request cancelled"
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if m.loading || input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case responseMsg:
		if msg.requestID != m.requestID {
			return m, nil
		}
		m.loading = false
		m.cancel = nil
		m.messages = append(m.messages, msg.reply)
		m.updateViewport()
		m.viewport.GotoBottom()
		if msg.convID != "" {
			id := msg.convID
			cmds = append(cmds, func() tea.Msg { return conversationUpdatedMsg{id: id} })
		}

	case errMsg:
		if msg.requestID != m.requestID {
			return m, nil
		}
		m.loading = false
		m.cancel = nil
		m.err = msg.err
		logging.GetLogger().Warnw("agent reply failed", "error", msg.err)

	case conversationSelectedMsg:
		m.cancelRequest()
		if msg.id == "" {
			m.reset()
			return m, nil
		}
		return m, m.loadConversation(msg.id)

	case conversationLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.convID = msg.conv.ID
		m.messages = append([]models.ChatMessage{}, msg.conv.Messages...)
		m.err = nil
		m.feedback = "Opened: " + msg.conv.Title
		m.updateViewport()
		m.viewport.GotoBottom()

	case conversationDeletedMsg:
		if msg.err == nil && msg.id == m.convID {
			m.reset()
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput runs slash commands or sends a user message
func (m ChatWindowModel) handleInput(input string) (ChatWindowModel, tea.Cmd) {
	m.feedback = ""

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit

	case input == "/clear" || input == "/new":
		m.reset()
		m.feedback = "Started a new conversation"
		return m, nil

	case input == "/copy":
		last, ok := models.LastByAuthor(m.messages, models.AuthorAgent)
		if !ok {
			m.feedback = "Nothing to copy yet"
			return m, nil
		}
		if err := clipboardWrite(last.Content); err != nil {
			m.err = fmt.Errorf("failed to copy to clipboard: %w", err)
			return m, nil
		}
		m.feedback = "✓ Copied last reply to clipboard"
		return m, nil

	case input == "/sidebar":
		return m, m.toggleSidebar()

	case strings.HasPrefix(input, "/system "):
		content := strings.TrimSpace(strings.TrimPrefix(input, "/system "))
		m.messages = append(m.messages, models.SystemMessage(content))
		m.updateViewport()
		m.viewport.GotoBottom()
		m.feedback = "System instruction added"
		return m, m.persist(models.SystemMessage(content))
	}

	userMsg := models.UserMessage(input)
	pending := []models.ChatMessage{userMsg}

	// The conversation exists before the request starts so a cancelled
	// reply cannot lose its ID
	if m.store != nil && m.convID == "" {
		conv, err := m.store.CreateConversation(m.modelName)
		if err != nil {
			m.err = err
			m.textarea.SetValue(input)
			return m, nil
		}
		m.convID = conv.ID
		// A new conversation also stores anything typed before the first send
		pending = append(append([]models.ChatMessage{}, m.messages...), userMsg)
	}

	m.messages = append(m.messages, userMsg)
	m.updateViewport()
	m.viewport.GotoBottom()

	m.loading = true
	m.err = nil
	m.requestID++

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return m, tea.Batch(
		m.sendMessage(ctx, m.requestID, pending),
		m.spinner.Tick,
	)
}

// sendMessage persists pending messages, asks the agent for a reply and persists it
func (m ChatWindowModel) sendMessage(ctx context.Context, requestID int, pending []models.ChatMessage) tea.Cmd {
	transcript := append([]models.ChatMessage{}, m.messages...)
	convID := m.convID
	store := m.store
	ag := m.agent

	return func() tea.Msg {
		log := logging.WithFields("conversation", convID, "request", requestID)

		if store != nil {
			for _, msg := range pending {
				if err := store.AddMessage(convID, msg); err != nil {
					log.Warnw("failed to persist message", "author", msg.Author, "error", err)
				}
			}
		}

		reply, err := ag.Reply(ctx, transcript)
		if err != nil {
			return errMsg{requestID: requestID, err: err}
		}

		if store != nil {
			if err := store.AddMessage(convID, reply); err != nil {
				log.Warnw("failed to persist agent reply", "error", err)
			}
		}

		return responseMsg{requestID: requestID, convID: convID, reply: reply}
	}
}

// persist stores a message outside the send flow. Messages added before the
// conversation exists are saved by the first send.
func (m ChatWindowModel) persist(msg models.ChatMessage) tea.Cmd {
	if m.store == nil || m.convID == "" {
		return nil
	}
	store, id, requestID := m.store, m.convID, m.requestID
	return func() tea.Msg {
		if err := store.AddMessage(id, msg); err != nil {
			return errMsg{requestID: requestID, err: err}
		}
		return conversationUpdatedMsg{id: id}
	}
}

// loadConversation returns a command that fetches a stored conversation
func (m ChatWindowModel) loadConversation(id string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		conv, err := store.GetConversation(id)
		return conversationLoadedMsg{conv: conv, err: err}
	}
}

func (m *ChatWindowModel) cancelRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.loading {
		m.loading = false
		// Late replies for the old request are dropped
		m.requestID++
	}
}

func (m *ChatWindowModel) reset() {
	m.messages = []models.ChatMessage{}
	m.convID = ""
	m.err = nil
	m.updateViewport()
}

// View renders the header, messages, input and status bar
func (m ChatWindowModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 2
	var sections []string

	headerParts := []string{
		titleStyle.Render("✦ Agent Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	}
	header := headerStyle.Width(contentWidth - 2).Render(lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))
	sections = append(sections, header)

	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth-2).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.loading {
		inputContent = m.spinner.View() + loadingStyle.Render(" "+m.modelName+" is thinking...")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth-2).Render(inputContent))

	switch {
	case m.err != nil:
		sections = append(sections, FormatError(m.err))
	case m.feedback != "":
		sections = append(sections, feedbackStyle.Render(m.feedback))
	default:
		sections = append(sections, "")
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ChatWindowModel) renderWelcome() string {
	width := m.viewport.Width
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Start a conversation"),
		"",
		welcomeStyle.Width(width).Render("Type a message below · ctrl+b opens past conversations"),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m ChatWindowModel) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+B", "Sidebar"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *ChatWindowModel) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		label := labelStyles[msg.Author].Render(m.authorLabel(msg.Author))
		body := msg.Content
		if msg.Author == models.AuthorAgent {
			body = render.MarkdownOrPlain(msg.Content, m.renderOpts.WithWidth(bubbleWidth-4))
		}
		bubble := bubbleStyles[msg.Author].Width(bubbleWidth).Render(body)

		content.WriteString(label + "\n" + bubble + "\n")
	}

	m.viewport.SetContent(content.String())
}

func (m ChatWindowModel) authorLabel(author models.MessageAuthor) string {
	switch author {
	case models.AuthorUser:
		return "⬤ You"
	case models.AuthorAgent:
		return "✦ " + m.agent.Name()
	default:
		return "⚙ System"
	}
}
