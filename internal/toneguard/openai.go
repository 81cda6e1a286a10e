package toneguard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are Tone Guard for a structured co-parenting application.

Your role is to detect emotionally escalatory, accusatory, hostile, sarcastic,
passive-aggressive, or inflammatory language.

Be conservative in protecting calm communication.

If a message includes:
- blame ("you always", "you never")
- frustration
- sarcasm
- threats
- hostility
- emotionally charged criticism

It must be classified at least "medium".

Only classify as "low" if completely neutral and transactional.

Respond ONLY in JSON:

{
  "risk": "low" | "medium" | "high",
  "reason": "short explanation",
  "rewrite": "calm neutral rewrite if medium/high, otherwise empty string"
}`

var (
	ErrEmptyResponse  = errors.New("empty response from model")
	ErrInvalidVerdict = errors.New("model returned an invalid verdict")
)

type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier builds a classifier for apiKey. baseURL overrides the
// API endpoint and may be empty.
func NewOpenAIClassifier(apiKey, baseURL, model string) *OpenAIClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClassifier) Model() string {
	return c.model
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Verdict, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Verdict{}, ErrEmptyResponse
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}

func parseVerdict(raw string) (Verdict, error) {
	var out struct {
		Risk    string `json:"risk"`
		Reason  string `json:"reason"`
		Rewrite string `json:"rewrite"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrInvalidVerdict, err)
	}

	risk, ok := ParseRisk(out.Risk)
	if !ok {
		return Verdict{}, fmt.Errorf("%w: unknown risk %q", ErrInvalidVerdict, out.Risk)
	}

	v := Verdict{
		Risk:    risk,
		Reason:  strings.TrimSpace(out.Reason),
		Rewrite: strings.TrimSpace(out.Rewrite),
	}
	if risk == RiskLow {
		v.Rewrite = ""
	}
	return v, nil
}
