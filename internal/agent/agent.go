// Package agent provides the backends that produce agent replies for a conversation.
package agent

import (
	"context"
	"time"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/models"
)

// Agent produces the next agent message for a conversation history
type Agent interface {
	Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error)
	Name() string
}

// Options configures an agent backend
type Options struct {
	Model        string
	BaseURL      string
	APIKey       string
	SystemPrompt string
	Timeout      time.Duration
}

// Option is a functional option for configuring an agent
type Option func(*Options)

// WithModel sets the model name
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithBaseURL points the agent at an OpenAI-compatible endpoint
func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

// WithAPIKey sets the API key
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithSystemPrompt sets a system prompt prepended to every request
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithTimeout sets the per-reply timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

func defaultOptions() Options {
	return Options{
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
}

// withSystemPrompt prepends the system prompt unless history already starts with one
func withSystemPrompt(prompt string, history []models.ChatMessage) []models.ChatMessage {
	if prompt == "" {
		return history
	}
	if len(history) > 0 && history[0].Author == models.AuthorSystem {
		return history
	}
	out := make([]models.ChatMessage, 0, len(history)+1)
	out = append(out, models.SystemMessage(prompt))
	return append(out, history...)
}

// EchoAgent is an offline agent that repeats the last user message.
// It is used when no API key is configured.
type EchoAgent struct{}

// NewEchoAgent creates an EchoAgent
func NewEchoAgent() *EchoAgent {
	return &EchoAgent{}
}

// Name returns the display name
func (e *EchoAgent) Name() string {
	return "echo"
}

// Reply returns the last user message as the agent's answer
func (e *EchoAgent) Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return models.ChatMessage{}, apierrors.NewTimeoutError(err.Error())
	}
	last, ok := models.LastByAuthor(history, models.AuthorUser)
	if !ok {
		return models.ChatMessage{}, apierrors.ErrNoContent
	}
	return models.AgentMessage(last.Content), nil
}
