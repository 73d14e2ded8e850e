package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/agentchat/internal/agent"
	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/history"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

type failingAgent struct{ err error }

func (f failingAgent) Name() string { return "failing" }

func (f failingAgent) Reply(context.Context, []models.ChatMessage) (models.ChatMessage, error) {
	return models.ChatMessage{}, f.err
}

// failingStore rejects every write
type failingStore struct{}

func (failingStore) ListSummaries() ([]history.Summary, error) { return nil, nil }
func (failingStore) CreateConversation(string) (*history.Conversation, error) {
	return nil, errors.New("disk full")
}
func (failingStore) GetConversation(id string) (*history.Conversation, error) {
	return nil, apierrors.ErrConversationNotFound
}
func (failingStore) AddMessage(string, models.ChatMessage) error { return errors.New("disk full") }
func (failingStore) DeleteConversation(string) error             { return nil }

func newTestChatWindow(t *testing.T, ag agent.Agent, store ConversationStore) ChatWindowModel {
	t.Helper()
	opts := ShellOptions{Agent: ag, Store: store, ModelName: "echo", RenderOpts: render.DefaultOptions()}
	return NewChatWindowModel(opts, noopToggle).setSize(100, 40)
}

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestChatWindow_DefaultsToEchoAgent(t *testing.T) {
	m := NewChatWindowModel(ShellOptions{}, noopToggle)
	if m.agent == nil || m.modelName != "echo" {
		t.Errorf("expected echo agent fallback, got %v / %q", m.agent, m.modelName)
	}
}

func TestChatWindow_CtrlBInvokesToggle(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)
	_, cmd := m.Update(keyMsg("ctrl+b"))
	if _, ok := hasMsg[toggleSidebarMsg](runCmd(cmd)); !ok {
		t.Error("ctrl+b should invoke the toggle callback")
	}
}

func TestChatWindow_SendPersistsConversation(t *testing.T) {
	store := newTestStore(t)
	m := newTestChatWindow(t, agent.NewEchoAgent(), store)

	m, cmd := m.handleInput("hello there")
	if !m.loading {
		t.Fatal("should be loading after send")
	}
	if len(m.messages) != 1 || m.messages[0] != models.UserMessage("hello there") {
		t.Fatalf("user message not shown: %+v", m.messages)
	}

	resp, ok := hasMsg[responseMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected responseMsg")
	}
	m, cmd = m.Update(resp)
	if m.loading {
		t.Error("loading should stop after the reply")
	}
	if len(m.messages) != 2 || m.messages[1] != models.AgentMessage("hello there") {
		t.Fatalf("unexpected messages: %+v", m.messages)
	}
	if m.convID == "" {
		t.Fatal("conversation ID should be set")
	}
	if upd, ok := hasMsg[conversationUpdatedMsg](runCmd(cmd)); !ok || upd.id != m.convID {
		t.Errorf("expected conversationUpdatedMsg for %s", m.convID)
	}

	conv, err := store.GetConversation(m.convID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Title != "hello there" {
		t.Errorf("unexpected stored conversation: %+v", conv)
	}

	// A second exchange reuses the conversation
	m, cmd = m.handleInput("again")
	resp, _ = hasMsg[responseMsg](runCmd(cmd))
	m, _ = m.Update(resp)
	conv, _ = store.GetConversation(m.convID)
	if len(conv.Messages) != 4 {
		t.Errorf("expected 4 stored messages, got %d", len(conv.Messages))
	}
}

func TestChatWindow_SystemMessageSavedWithFirstSend(t *testing.T) {
	store := newTestStore(t)
	m := newTestChatWindow(t, agent.NewEchoAgent(), store)

	m, _ = m.handleInput("/system be terse")
	if len(m.messages) != 1 || m.messages[0].Author != models.AuthorSystem {
		t.Fatalf("expected a system message, got %+v", m.messages)
	}

	m, cmd := m.handleInput("hi")
	resp, _ := hasMsg[responseMsg](runCmd(cmd))
	m, _ = m.Update(resp)

	conv, err := store.GetConversation(m.convID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	want := []models.MessageAuthor{models.AuthorSystem, models.AuthorUser, models.AuthorAgent}
	if len(conv.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %+v", len(want), conv.Messages)
	}
	for i, author := range want {
		if conv.Messages[i].Author != author {
			t.Errorf("message %d author = %s, want %s", i, conv.Messages[i].Author, author)
		}
	}
}

func TestChatWindow_AgentError(t *testing.T) {
	m := newTestChatWindow(t, failingAgent{err: apierrors.NewAPIError(429, "chat/completions", "slow down")}, nil)

	m, cmd := m.handleInput("hi")
	em, ok := hasMsg[errMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected errMsg")
	}
	m, _ = m.Update(em)
	if m.loading {
		t.Error("loading should stop on error")
	}
	if !apierrors.IsRateLimitError(m.err) {
		t.Errorf("unexpected error: %v", m.err)
	}
	if !strings.Contains(m.View(), "Rate limited") {
		t.Error("view should show the rate limit hint")
	}
}

func TestChatWindow_EscCancelsAndDropsStaleReply(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)

	m, cmd := m.handleInput("hi")
	resp, _ := hasMsg[responseMsg](runCmd(cmd))

	m, _ = m.Update(keyMsg("esc"))
	if m.loading {
		t.Fatal("esc should cancel the request")
	}

	m, _ = m.Update(resp)
	if len(m.messages) != 1 {
		t.Errorf("stale reply should be ignored, got %+v", m.messages)
	}
}

func TestChatWindow_ResendAfterCancelKeepsOneConversation(t *testing.T) {
	store := newTestStore(t)
	m := newTestChatWindow(t, agent.NewEchoAgent(), store)

	m, cmd := m.handleInput("first")
	convID := m.convID
	if convID == "" {
		t.Fatal("conversation should exist as soon as the first message is sent")
	}

	m, _ = m.Update(keyMsg("esc"))
	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if m.convID != convID {
		t.Fatalf("convID = %q after cancel, want %q", m.convID, convID)
	}

	m, cmd = m.handleInput("second")
	resp, ok := hasMsg[responseMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected responseMsg")
	}
	m, _ = m.Update(resp)

	convs, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("want 1 conversation for one chat session, got %d", len(convs))
	}
	want := []models.ChatMessage{
		models.UserMessage("first"),
		models.UserMessage("second"),
		models.AgentMessage("second"),
	}
	got := convs[0].Messages
	if len(got) != len(want) {
		t.Fatalf("stored messages = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestChatWindow_CreateConversationFailureKeepsInput(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), failingStore{})

	m, cmd := m.handleInput("hello")
	if cmd != nil || m.loading {
		t.Error("send should not start when the conversation cannot be created")
	}
	if m.err == nil || m.textarea.Value() != "hello" {
		t.Errorf("error should surface and input be restored, got err=%v input=%q", m.err, m.textarea.Value())
	}
	if len(m.messages) != 0 {
		t.Errorf("message should not be shown, got %+v", m.messages)
	}
}

func TestChatWindow_EscQuitsWhenIdle(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)
	_, cmd := m.Update(keyMsg("esc"))
	if _, ok := hasMsg[tea.QuitMsg](runCmd(cmd)); !ok {
		t.Error("esc should quit when idle")
	}
}

func TestChatWindow_Commands(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)
	m.messages = []models.ChatMessage{models.UserMessage("q"), models.AgentMessage("answer")}
	m.convID = "abc"

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	m, _ = m.handleInput("/copy")
	if copied != "answer" {
		t.Errorf("copied %q, want last agent reply", copied)
	}

	clipboardWrite = func(string) error { return errors.New("no clipboard") }
	m, _ = m.handleInput("/copy")
	if m.err == nil {
		t.Error("clipboard failure should surface")
	}

	m, _ = m.handleInput("/clear")
	if len(m.messages) != 0 || m.convID != "" || m.err != nil {
		t.Errorf("clear should reset the window, got %+v", m)
	}

	m, _ = m.handleInput("/copy")
	if m.feedback != "Nothing to copy yet" {
		t.Errorf("feedback = %q", m.feedback)
	}

	for _, input := range []string{"exit", "quit", "/quit"} {
		_, cmd := m.handleInput(input)
		if _, ok := hasMsg[tea.QuitMsg](runCmd(cmd)); !ok {
			t.Errorf("%q should quit", input)
		}
	}
}

func TestChatWindow_LoadAndDeleteConversation(t *testing.T) {
	store := newTestStore(t)
	conv, _ := store.CreateConversation("echo")
	_ = store.AddMessage(conv.ID, models.UserMessage("stored question"))
	_ = store.AddMessage(conv.ID, models.AgentMessage("stored answer"))

	m := newTestChatWindow(t, agent.NewEchoAgent(), store)
	m, cmd := m.Update(conversationSelectedMsg{id: conv.ID})
	loaded, ok := hasMsg[conversationLoadedMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected conversationLoadedMsg")
	}
	m, _ = m.Update(loaded)
	if m.convID != conv.ID || len(m.messages) != 2 {
		t.Fatalf("conversation not loaded: %s %+v", m.convID, m.messages)
	}
	if !strings.Contains(m.View(), "stored question") {
		t.Error("loaded messages should be rendered")
	}

	m, _ = m.Update(conversationDeletedMsg{id: "other"})
	if m.convID != conv.ID {
		t.Error("deleting another conversation should not reset the window")
	}
	m, _ = m.Update(conversationDeletedMsg{id: conv.ID})
	if m.convID != "" || len(m.messages) != 0 {
		t.Error("deleting the open conversation should reset the window")
	}

	m, _ = m.Update(conversationLoadedMsg{err: apierrors.ErrConversationNotFound})
	if !errors.Is(m.err, apierrors.ErrConversationNotFound) {
		t.Errorf("load error should surface, got %v", m.err)
	}
}

func TestChatWindow_NewConversationSelection(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)
	m.messages = []models.ChatMessage{models.UserMessage("old")}
	m.convID = "abc"

	m, _ = m.Update(conversationSelectedMsg{})
	if m.convID != "" || len(m.messages) != 0 {
		t.Error("empty selection should start a new conversation")
	}
}

func TestChatWindow_ViewLabels(t *testing.T) {
	m := newTestChatWindow(t, agent.NewEchoAgent(), nil)
	if !strings.Contains(m.View(), "Start a conversation") {
		t.Error("empty window should show the welcome text")
	}

	m.messages = []models.ChatMessage{
		models.SystemMessage("rules"),
		models.UserMessage("question"),
		models.AgentMessage("answer"),
	}
	m.updateViewport()
	view := m.View()
	for _, want := range []string{"System", "You", "echo", "question", "answer", "rules"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
