package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/citrus/internal/errors"
)

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// EstimateMessages builds the prompt sent for a meal description.
func EstimateMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userPromptPrefix + text},
	}
}

// Estimate asks the model for nutrition totals of a free-text meal
// description and returns the assistant's raw reply. The reply is expected to
// contain one JSON object; see normalize.KindEstimate.
func (c *Client) Estimate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinQueryLength {
		return "", errors.NewInvalidRequest(fmt.Sprintf("description must be at least %d characters", MinQueryLength))
	}
	if c.ep.LLMEndpoint == "" {
		return "", errors.NewInvalidRequest("llm_endpoint is not configured")
	}

	body, err := c.post(ctx, request{
		url: c.ep.LLMEndpoint,
		body: chatPayload{
			Model:       c.model,
			Temperature: c.temperature,
			Messages:    EstimateMessages(text),
		},
		accept:  "application/json",
		bearer:  c.ep.LLMAPIKey,
		timeout: c.llmTimeout,
		kind:    "estimate",
		ident:   text,
	})
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.NewMalformedResponse("estimate", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewMalformedResponse("estimate", fmt.Errorf("no choices in response"))
	}
	reply := resp.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return "", errors.NewMalformedResponse("estimate", fmt.Errorf("empty reply"))
	}
	c.log.Debug("fetch: estimate reply (%d chars): %s", len(reply), truncate(reply, 120))
	return reply, nil
}
