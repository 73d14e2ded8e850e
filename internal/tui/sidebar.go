package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/history"
)

// Messages exchanged between the sidebar, the shell and the chat window
type (
	summariesLoadedMsg struct {
		summaries []history.Summary
		err       error
	}
	// conversationSelectedMsg asks the chat window to show a conversation.
	// An empty id means start a new one.
	conversationSelectedMsg struct {
		id string
	}
	conversationDeletedMsg struct {
		id  string
		err error
	}
)

// SidebarModel is the collapsible conversation list
type SidebarModel struct {
	store  ConversationStore
	isOpen bool
	toggle ToggleFunc

	summaries []history.Summary
	cursor    int // 0 is "New conversation", i+1 is summaries[i]
	activeID  string
	loading   bool
	err       error

	width  int
	height int
}

// NewSidebarModel creates the side panel
func NewSidebarModel(store ConversationStore, isOpen bool, toggle ToggleFunc) SidebarModel {
	return SidebarModel{
		store:  store,
		isOpen: isOpen,
		toggle: toggle,
	}
}

// withOpen returns a copy reflecting the shell's visibility flag
func (m SidebarModel) withOpen(open bool) SidebarModel {
	m.isOpen = open
	return m
}

func (m SidebarModel) setSize(width, height int) SidebarModel {
	m.width = width
	m.height = height
	return m
}

// Init loads the conversation list
func (m SidebarModel) Init() tea.Cmd {
	return m.refresh()
}

// refresh returns a command that reloads summaries from the store
func (m SidebarModel) refresh() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		summaries, err := store.ListSummaries()
		return summariesLoadedMsg{summaries: summaries, err: err}
	}
}

// Update handles list navigation and selection
func (m SidebarModel) Update(msg tea.Msg) (SidebarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summariesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.summaries = msg.summaries
		}
		if m.cursor > len(m.summaries) {
			m.cursor = len(m.summaries)
		}

	case conversationLoadedMsg:
		if msg.err == nil && msg.conv != nil {
			m.activeID = msg.conv.ID
		}

	case conversationUpdatedMsg:
		m.activeID = msg.id
		return m, m.refresh()

	case conversationDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.id == m.activeID {
			m.activeID = ""
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if !m.isOpen {
			return m, nil
		}
		switch msg.String() {
		case "esc", "ctrl+b":
			return m, m.toggle()

		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.summaries)
			}

		case "down", "j":
			m.cursor++
			if m.cursor > len(m.summaries) {
				m.cursor = 0
			}

		case "enter":
			id := ""
			if m.cursor > 0 {
				id = m.summaries[m.cursor-1].ID
			}
			return m, func() tea.Msg { return conversationSelectedMsg{id: id} }

		case "n":
			return m, func() tea.Msg { return conversationSelectedMsg{} }

		case "d", "delete":
			if m.cursor == 0 || m.store == nil {
				return m, nil
			}
			id := m.summaries[m.cursor-1].ID
			store := m.store
			return m, func() tea.Msg {
				return conversationDeletedMsg{id: id, err: store.DeleteConversation(id)}
			}
		}
	}

	return m, nil
}

// View renders the panel, or nothing when closed
func (m SidebarModel) View() string {
	if !m.isOpen {
		return ""
	}

	innerWidth := m.width - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	var sb strings.Builder
	sb.WriteString(sidebarTitleStyle.Render("☰ Conversations"))
	sb.WriteString("\n")

	sb.WriteString(m.renderItem(0, "+ New conversation", "", innerWidth))
	sb.WriteString("\n")

	switch {
	case m.store == nil:
		sb.WriteString(hintStyle.Render("History disabled"))
	case m.err != nil:
		sb.WriteString(errorStyle.Render(truncate(m.err.Error(), innerWidth)))
	case len(m.summaries) == 0:
		sb.WriteString(hintStyle.Render("No conversations yet"))
	default:
		// Leave room for title, the new entry and the footer
		maxItems := (m.height - 8) / 2
		if maxItems < 1 {
			maxItems = 1
		}
		start := 0
		if m.cursor > maxItems {
			start = m.cursor - maxItems
		}
		end := start + maxItems
		if end > len(m.summaries) {
			end = len(m.summaries)
		}
		for i := start; i < end; i++ {
			s := m.summaries[i]
			meta := fmt.Sprintf("%s · %d msgs", s.UpdatedAt.Format("Jan 02 15:04"), s.MessageCount)
			sb.WriteString(m.renderItem(i+1, s.Title, meta, innerWidth))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("enter open · n new · d delete · esc close"))

	height := m.height - 2
	if height < 1 {
		height = 1
	}
	return sidebarStyle.Width(m.width - 2).Height(height).Render(sb.String())
}

func (m SidebarModel) renderItem(index int, title, meta string, width int) string {
	cursor := "  "
	style := sidebarItemStyle
	if index > 0 && m.summaries[index-1].ID == m.activeID {
		style = sidebarActiveStyle
	}
	if index == m.cursor {
		cursor = sidebarSelectedStyle.Render("▸ ")
		style = sidebarSelectedStyle
	}

	line := cursor + style.Render(truncate(title, width-2))
	if meta != "" {
		line += "\n  " + sidebarMetaStyle.Render(truncate(meta, width-2))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// truncate shortens s to at most n runes, adding an ellipsis when cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 1 || len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
