package extract

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
)

// shopSchema constrains Gemini output to the shop shape. The schema keeps
// rating numeric at the model level; sanitization still guards against
// string ratings from models that ignore it.
var shopSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":       {Type: genai.TypeString},
		"rating":     {Type: genai.TypeNumber},
		"phone":      {Type: genai.TypeString},
		"address":    {Type: genai.TypeString},
		"image_url":  {Type: genai.TypeString},
		"open_hours": {Type: genai.TypeString},
	},
	Required: []string{"name", "rating"},
}

// GeminiBackend wraps one Gemini model as a chain link.
type GeminiBackend struct {
	model *genai.GenerativeModel
	name  string
}

// NewGeminiBackends creates one backend per model name, sharing a single
// API client. The returned Close func releases the client.
func NewGeminiBackends(ctx context.Context, apiKey string, models []string) ([]Backend, func() error, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, eris.Wrap(err, "extract: create gemini client")
	}

	backends := make([]Backend, 0, len(models))
	for _, name := range models {
		m := client.GenerativeModel(name)
		m.SetTemperature(0)
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = shopSchema
		backends = append(backends, &GeminiBackend{model: m, name: name})
	}

	return backends, client.Close, nil
}

func (b *GeminiBackend) Name() string { return b.name }

func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", eris.Wrapf(err, "extract: gemini %s generate", b.name)
	}

	text := firstText(resp)
	if text == "" {
		return "", eris.Errorf("extract: gemini %s returned no text", b.name)
	}
	return text, nil
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
