package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tablewave/reserve-server/pkg/anthropic"
)

const claudeMaxTokens = 1024

// ClaudeBackend is the terminal link of the fallback chain: the most capable
// model, tried only after every Gemini model has failed.
type ClaudeBackend struct {
	client anthropic.Client
	model  string
}

// NewClaudeBackend wraps an Anthropic client as a chain link.
func NewClaudeBackend(client anthropic.Client, model string) *ClaudeBackend {
	return &ClaudeBackend{client: client, model: model}
}

func (b *ClaudeBackend) Name() string { return b.model }

func (b *ClaudeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	temp := 0.0
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       b.model,
		MaxTokens:   claudeMaxTokens,
		System:      "You extract structured business data from Google Maps listings. Respond with a single JSON object and nothing else.",
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrapf(err, "extract: claude %s generate", b.model)
	}

	text := resp.Text()
	if text == "" {
		return "", eris.Errorf("extract: claude %s returned no text", b.model)
	}
	return text, nil
}
