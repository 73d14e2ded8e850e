package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
)

const completionsEndpoint = "chat/completions"

// completionService is the subset of the openai client used by OpenAIAgent
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIAgent talks to an OpenAI-compatible chat completions API
type OpenAIAgent struct {
	completions completionService
	opts        Options
}

// NewOpenAIAgent creates an agent backed by the openai client
func NewOpenAIAgent(opts ...Option) (*OpenAIAgent, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.APIKey == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(o.APIKey)}
	if o.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	return &OpenAIAgent{
		completions: client.Chat.Completions,
		opts:        o,
	}, nil
}

// Name returns the model name
func (a *OpenAIAgent) Name() string {
	return a.opts.Model
}

// Reply sends the history to the completions endpoint and returns the first choice
func (a *OpenAIAgent) Reply(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error) {
	log := logging.WithFields("model", a.opts.Model, "messages", len(history))
	defer logging.LogDuration(log, "reply", time.Now())

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(toParams(withSystemPrompt(a.opts.SystemPrompt, history))),
		Model:    openai.F(a.opts.Model),
	}

	completion, err := a.completions.New(ctx, params)
	if err != nil {
		err = classify(ctx, err)
		log.Errorw("completion failed", "error", err)
		return models.ChatMessage{}, err
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return models.ChatMessage{}, apierrors.ErrNoContent
	}

	return models.AgentMessage(completion.Choices[0].Message.Content), nil
}

// toParams maps chat messages onto openai message params
func toParams(history []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Author {
		case models.AuthorUser:
			params = append(params, openai.UserMessage(msg.Content))
		case models.AuthorAgent:
			params = append(params, openai.AssistantMessage(msg.Content))
		case models.AuthorSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		}
	}
	return params
}

// classify converts client errors into the package's error types
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(err.Error())
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", apiErr.StatusCode)
		}
		return apierrors.NewAPIError(apiErr.StatusCode, completionsEndpoint, msg)
	}

	return apierrors.NewAPIError(0, completionsEndpoint, err.Error())
}
