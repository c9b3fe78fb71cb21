package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/qapilothq/Valetudo/internal/hierarchy"
)

// RecommendFromSummary asks the model for a dismissal recommendation based on
// the textual extraction summary produced by the hierarchy engine.
func (c *Client) RecommendFromSummary(ctx context.Context, testcaseDesc, summary string) (*hierarchy.Recommendation, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: xmlPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Test case description: %s", testcaseDesc)},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Pop-up detector output: %s", summary)},
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseRecommendation(content), nil
}

// RecommendFromImage analyzes a bare screenshot. The model's answer uses
// visual descriptors instead of element ids, so it is returned unresolved.
func (c *Client) RecommendFromImage(ctx context.Context, testcaseDesc, encodedImage string) (map[string]any, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: imagePrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Test case description: %s", testcaseDesc)},
		imageMessage("Screenshot of current screen", encodedImage),
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseRaw(content), nil
}

// RecommendFromAnnotatedImage analyzes a screenshot whose interactable
// elements were annotated with their ids, so the model can reference them.
func (c *Client) RecommendFromAnnotatedImage(ctx context.Context, testcaseDesc, encodedImage string) (*hierarchy.Recommendation, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: combinedPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Test case description: %s", testcaseDesc)},
		imageMessage("Screenshot of current screen with annotated element IDs", encodedImage),
	}

	content, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return parseRecommendation(content), nil
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.createChatCompletionWithRateLimit(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	content := resp.Choices[0].Message.Content
	if c.logger != nil {
		c.logger.LogLLMRequest("system", messages[0].Content, content, c.model, resp.Usage.TotalTokens)
	}
	return content, nil
}

func imageMessage(caption, encodedImage string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: caption},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:image/jpeg;base64," + encodedImage,
				},
			},
		},
	}
}
