// Package history provides local conversation history storage.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/models"
)

// maxTitleLen bounds titles derived from the first user message
const maxTitleLen = 50

// Conversation represents a complete chat conversation
type Conversation struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Model     string               `json:"model"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Messages  []models.ChatMessage `json:"messages"`
}

// Summary is the lightweight view of a conversation shown in the sidebar
type Summary struct {
	ID           string
	Title        string
	UpdatedAt    time.Time
	MessageCount int
}

// Store manages conversation history persistence
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a new history store
func NewStore(baseDir string) (*Store, error) {
	historyDir := filepath.Join(baseDir, "history")
	if err := os.MkdirAll(historyDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Store{
		baseDir: historyDir,
	}, nil
}

// CreateConversation creates a new conversation
func (s *Store) CreateConversation(model string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate conversation id: %w", err)
	}

	now := time.Now()
	conv := &Conversation{
		ID:        id,
		Title:     fmt.Sprintf("Chat %s", now.Format("2006-01-02 15:04")),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []models.ChatMessage{},
	}

	if err := s.saveConversation(conv); err != nil {
		return nil, err
	}

	return conv, nil
}

// GetConversation retrieves a conversation by ID
func (s *Store) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadConversation(id)
}

// ListConversations returns all conversations, sorted by most recent
func (s *Store) ListConversations() ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.conversationIDs()
	if err != nil {
		return nil, err
	}

	var conversations []*Conversation
	for _, id := range ids {
		conv, err := s.loadConversation(id)
		if err != nil || conv.ID != id {
			continue // Skip corrupted or misnamed files
		}
		conversations = append(conversations, conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

// ListSummaries returns id, title, update time and message count for every
// conversation without decoding message bodies. Sorted by most recent.
func (s *Store) ListSummaries() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.conversationIDs()
	if err != nil {
		return nil, err
	}

	var summaries []Summary
	for _, id := range ids {
		data, err := os.ReadFile(s.conversationPath(id))
		if err != nil || !gjson.ValidBytes(data) {
			continue
		}
		fields := gjson.GetManyBytes(data, "id", "title", "updated_at", "messages.#")
		// Lookups go by file name, so a mismatched id could never be opened
		if fields[0].String() != id {
			continue
		}
		updated, _ := time.Parse(time.RFC3339Nano, fields[2].String())
		summaries = append(summaries, Summary{
			ID:           fields[0].String(),
			Title:        fields[1].String(),
			UpdatedAt:    updated,
			MessageCount: int(fields[3].Int()),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

// AddMessage appends a message to a conversation
func (s *Store) AddMessage(id string, msg models.ChatMessage) error {
	if !msg.Author.Valid() {
		return fmt.Errorf("%w: %q", apierrors.ErrInvalidAuthor, string(msg.Author))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now()

	// Title comes from the first user message
	if msg.Author == models.AuthorUser && countAuthor(conv.Messages, models.AuthorUser) == 1 {
		conv.Title = titleFrom(msg.Content)
	}

	return s.saveConversation(conv)
}

// DeleteConversation removes a conversation
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.conversationPath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", apierrors.ErrConversationNotFound, id)
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return nil
}

// UpdateTitle updates the title of a conversation
func (s *Store) UpdateTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}

	conv.Title = title
	conv.UpdatedAt = time.Now()

	return s.saveConversation(conv)
}

// ClearAll deletes all conversations
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.conversationIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := os.Remove(s.conversationPath(id)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
	}

	return nil
}

func (s *Store) conversationIDs() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, entry.Name()[:len(entry.Name())-len(".json")])
	}
	return ids, nil
}

func (s *Store) conversationPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *Store) loadConversation(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.conversationPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apierrors.ErrConversationNotFound, id)
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}

	return &conv, nil
}

func (s *Store) saveConversation(conv *Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := os.WriteFile(s.conversationPath(conv.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}

	return nil
}

func countAuthor(messages []models.ChatMessage, author models.MessageAuthor) int {
	n := 0
	for _, m := range messages {
		if m.Author == author {
			n++
		}
	}
	return n
}

// titleFrom collapses whitespace so the title fits on one line
func titleFrom(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	return content
}

