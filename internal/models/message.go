// Package models defines the chat vocabulary shared by the agent, history and TUI packages.
package models

import (
	"fmt"

	apierrors "github.com/diogo/agentchat/internal/errors"
)

// MessageAuthor identifies who produced a message
type MessageAuthor string

// The closed set of message authors
const (
	AuthorUser   MessageAuthor = "user"
	AuthorAgent  MessageAuthor = "agent"
	AuthorSystem MessageAuthor = "system"
)

// AllAuthors returns every valid author in declaration order
func AllAuthors() []MessageAuthor {
	return []MessageAuthor{AuthorUser, AuthorAgent, AuthorSystem}
}

// ParseMessageAuthor converts a literal into a MessageAuthor.
// Only "user", "agent" and "system" are accepted.
func ParseMessageAuthor(s string) (MessageAuthor, error) {
	switch a := MessageAuthor(s); a {
	case AuthorUser, AuthorAgent, AuthorSystem:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", apierrors.ErrInvalidAuthor, s)
	}
}

// Valid reports whether a is one of the three known authors
func (a MessageAuthor) Valid() bool {
	_, err := ParseMessageAuthor(string(a))
	return err == nil
}

func (a MessageAuthor) String() string {
	return string(a)
}

// MarshalText rejects values outside the closed set so they never reach disk
func (a MessageAuthor) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %q", apierrors.ErrInvalidAuthor, string(a))
	}
	return []byte(a), nil
}

// UnmarshalText parses a stored author
func (a *MessageAuthor) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageAuthor(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ChatMessage is a single chat entry
type ChatMessage struct {
	Author  MessageAuthor `json:"author"`
	Content string        `json:"content"`
}

// NewChatMessage creates a message from author and content
func NewChatMessage(author MessageAuthor, content string) ChatMessage {
	return ChatMessage{Author: author, Content: content}
}

// UserMessage creates a message authored by the user
func UserMessage(content string) ChatMessage {
	return NewChatMessage(AuthorUser, content)
}

// AgentMessage creates a message authored by the agent
func AgentMessage(content string) ChatMessage {
	return NewChatMessage(AuthorAgent, content)
}

// SystemMessage creates a system message
func SystemMessage(content string) ChatMessage {
	return NewChatMessage(AuthorSystem, content)
}

// LastByAuthor returns the most recent message from author, if any
func LastByAuthor(messages []ChatMessage, author MessageAuthor) (ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Author == author {
			return messages[i], true
		}
	}
	return ChatMessage{}, false
}
