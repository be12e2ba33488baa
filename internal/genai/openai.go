package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/auralabs/aura-server/internal/config"
)

// FallbackOpener is returned whenever a suggestion cannot be generated.
const FallbackOpener = "Hey! How's your week going?"

// Client implements Moderator and Suggester on the OpenAI chat API.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	if cfg.GenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return &Client{
		client:  openai.NewClient(cfg.GenAI.APIKey),
		model:   cfg.GenAI.Model,
		timeout: cfg.GenAI.Timeout,
		log:     log,
	}, nil
}

// Classify asks the model whether the message is safe to send.
// Anything other than a clean "SAFE" answer counts as unsafe; transport
// errors are returned to the caller, which fails open.
func (c *Client) Classify(ctx context.Context, text string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		`Analyze the following message for abusive language, scams, or suspicious content. Respond with only "SAFE" or "UNSAFE". Message: %q`,
		text,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return VerdictSafe, fmt.Errorf("moderation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return VerdictSafe, fmt.Errorf("moderation returned no choices")
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	if answer == "SAFE" {
		return VerdictSafe, nil
	}
	return VerdictUnsafe, nil
}

// SuggestOpener generates a playful opening line for the given name.
// Failures degrade to the static fallback.
func (c *Client) SuggestOpener(ctx context.Context, displayName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Generate a fun, flirty, and slightly playful opening line to send to someone named %s on a dating app. It should be unique and engaging. Max 20 words.",
		displayName,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.log.Warn("opener suggestion failed", "err", err)
		return FallbackOpener, nil
	}
	if len(resp.Choices) == 0 {
		return FallbackOpener, nil
	}

	line := strings.ReplaceAll(resp.Choices[0].Message.Content, `"`, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return FallbackOpener, nil
	}
	return line, nil
}

// NopModerator approves everything. Used when no API key is configured,
// mirroring the fail-open policy for an absent oracle.
type NopModerator struct{}

func (NopModerator) Classify(context.Context, string) (Verdict, error) {
	return VerdictSafe, nil
}

// StaticSuggester always returns the fallback opener.
type StaticSuggester struct{}

func (StaticSuggester) SuggestOpener(context.Context, string) (string, error) {
	return FallbackOpener, nil
}
