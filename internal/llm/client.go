// Package llm is the client for the reasoning collaborator: it sends the
// detection prompts to an OpenAI-compatible chat API and parses the
// identifier-based recommendations it returns.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Logger receives every prompt/response exchange for auditing. Implemented
// by the database repository; nil disables audit logging.
type Logger interface {
	LogLLMRequest(role, prompt, response, model string, tokensUsed int)
}

type Client struct {
	client      *openai.Client
	model       string
	logger      Logger
	rateLimiter *RateLimiter
}

func NewClient(apiKey, model string, logger Logger) *Client {
	return NewClientWithRateLimit(apiKey, model, logger, 60, 90000)
}

func NewClientWithRateLimit(apiKey, model string, logger Logger, requestsPerMinute, tokensPerHour int) *Client {
	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		logger:      logger,
		rateLimiter: NewRateLimiter(requestsPerMinute, tokensPerHour),
	}
}

// createChatCompletionWithRateLimit runs one chat call behind the limiter.
func (c *Client) createChatCompletionWithRateLimit(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.rateLimiter.AllowRequest(ctx); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	// Rough token estimate: ~4 characters per token.
	estimatedTokens := 0
	for _, msg := range req.Messages {
		estimatedTokens += len(msg.Content) / 4
		for _, part := range msg.MultiContent {
			estimatedTokens += len(part.Text) / 4
		}
	}
	estimatedTokens += req.MaxTokens

	if err := c.rateLimiter.AllowTokens(ctx, estimatedTokens); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	// Reconcile the estimate with the real usage.
	if resp.Usage.TotalTokens > estimatedTokens {
		c.rateLimiter.ConsumeTokens(resp.Usage.TotalTokens - estimatedTokens)
	}

	return resp, nil
}
