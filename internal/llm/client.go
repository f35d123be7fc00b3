package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ideaboard/internal/logger"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of a conversation sent to the model.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var ErrEmptyCompletion = errors.New("llm returned no choices")

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI compatible chat completions endpoint. Requests are
// never retried.
type Client struct {
	client openai.Client
	model  string
}

func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends the system prompt followed by turns and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, t := range turns {
		switch t.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(t.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			return "", fmt.Errorf("unsupported role %q", t.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	startTime := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	logger.L.Debug("chat completion",
		zap.String("model", c.model),
		zap.Int("turns", len(turns)),
		zap.Duration("elapsed", time.Since(startTime)))
	return completion.Choices[0].Message.Content, nil
}
