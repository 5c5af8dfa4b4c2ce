package extract

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
)

// rawShop is the pre-sanitization wire shape. Rating stays untyped because
// models sometimes return it as a quoted string despite the schema.
type rawShop struct {
	Name      string `json:"name"`
	Rating    any    `json:"rating"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	ImageURL  string `json:"image_url"`
	OpenHours string `json:"open_hours"`
}

// parseShop recovers a shop object from raw model output: direct JSON first,
// then fence-stripped, then a jsonrepair pass over the stripped text.
func parseShop(raw string) (*rawShop, error) {
	var shop rawShop
	if err := json.Unmarshal([]byte(raw), &shop); err == nil {
		return &shop, nil
	}

	cleaned := cleanJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), &shop); err == nil {
		return &shop, nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil, eris.Wrap(err, "extract: repair model JSON")
	}
	if err := json.Unmarshal([]byte(repaired), &shop); err != nil {
		return nil, eris.Wrap(err, "extract: parse repaired JSON")
	}
	return &shop, nil
}

// cleanJSON strips markdown code fences and trims to the outermost object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
