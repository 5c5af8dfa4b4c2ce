package extract

import "context"

// Backend is a single generative model in the fallback chain. Generate
// returns the model's raw text output for the prompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

const shopPromptTemplate = `Visit this Google Maps link and extract the listed business's details: %s

Analyze the Google Maps page carefully and extract the following:
1. The full business name
2. The rating (1-5 stars)
3. The phone number, including country/area code
4. The complete street address
5. The opening hours
6. The URL of the main listing photo

Return a single JSON object with exactly these keys:
{"name": "...", "rating": 4.5, "phone": "...", "address": "...", "image_url": "...", "open_hours": "..."}

- rating must be numeric (e.g. 4.5, 3.8); use 0.0 if not found
- use null for any field that cannot be determined`
