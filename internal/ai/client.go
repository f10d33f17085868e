// Package ai provides the gateway to text-generation backends, with Azure
// OpenAI as primary provider and the OpenAI platform as fallback. All
// transport failures are normalized into a small closed error set.
package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Config carries the provider configuration fixed at construction time.
// Components never read ambient settings at call time.
type Config struct {
	OpenAIKey           string
	AzureOpenAIKey      string
	AzureOpenAIEndpoint string
	AzureGPTDeployment  string
	Timeout             time.Duration
	MaxTokens           int
	Temperature         float32
}

// Client selects an active provider in a priority order fixed at
// construction: Azure OpenAI when configured, OpenAI platform otherwise,
// with the platform kept as fallback when both are present.
type Client struct {
	primary       *openai.Client
	fallback      *openai.Client
	primaryModel  string
	fallbackModel string
	providerName  string
	timeout       time.Duration
	maxTokens     int
	temperature   float32
	logger        zerolog.Logger
}

// NewClient builds the gateway from the given configuration. A client with no
// configured provider is still valid to construct; Generate reports
// ErrNoProviderConfigured when called.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	client := &Client{
		timeout:       cfg.Timeout,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		fallbackModel: string(openai.GPT4oMini),
		logger:        logger,
	}
	if client.timeout <= 0 {
		client.timeout = 8 * time.Second
	}
	if client.maxTokens <= 0 {
		client.maxTokens = 1000
	}

	if cfg.AzureOpenAIKey != "" && cfg.AzureOpenAIEndpoint != "" {
		azureConfig := openai.DefaultAzureConfig(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint)
		client.primary = openai.NewClientWithConfig(azureConfig)
		client.primaryModel = cfg.AzureGPTDeployment
		client.providerName = "Azure OpenAI"
		logger.Info().Str("endpoint", cfg.AzureOpenAIEndpoint).Msg("AI gateway: Azure OpenAI is primary")
	}

	if cfg.OpenAIKey != "" {
		platform := openai.NewClient(cfg.OpenAIKey)
		if client.primary == nil {
			client.primary = platform
			client.primaryModel = client.fallbackModel
			client.providerName = "OpenAI"
			logger.Info().Msg("AI gateway: OpenAI platform is primary (Azure not configured)")
		} else {
			client.fallback = platform
			logger.Info().Msg("AI gateway: OpenAI platform is fallback")
		}
	}

	if client.primary == nil {
		logger.Warn().Msg("AI gateway: no provider configured, analysis will degrade")
	}

	return client
}

// Configured reports whether at least one provider backend is available
func (c *Client) Configured() bool {
	return c.primary != nil
}

// ProviderName returns the active primary provider name
func (c *Client) ProviderName() string {
	return c.providerName
}

// Generate sends a single text prompt to the active provider and returns the
// completion text. Every call carries a bounded timeout; on timeout the
// result is ErrProviderUnavailable like any other transport failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.primary == nil {
		return "", ErrNoProviderConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.primaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.primary.CreateChatCompletion(ctx, req)
	if err != nil && c.fallback != nil {
		c.logger.Warn().Err(err).Msg("AI gateway: primary failed, trying fallback")
		req.Model = c.fallbackModel
		resp, err = c.fallback.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", normalizeError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrProviderBadResponse
	}

	return resp.Choices[0].Message.Content, nil
}
