package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tablewave/reserve-server/internal/model"
)

const (
	defaultShopName    = "unknown shop"
	defaultShopAddress = "unknown address"

	trustedImagePrefix = "https://lh3.googleusercontent.com/"
	trustedImageDomain = "googleusercontent.com"
	photoIDMarker      = "/p/AF1Qip"
	maxImageURLLength  = 200
)

// fillerPattern matches degenerate placeholder URLs that pad the path with
// repeated 0- / -0 segments instead of a real photo identifier.
var fillerPattern = regexp.MustCompile(`(0-){4,}|(-0){4,}`)

// sanitizeShop normalizes raw model output into a ShopCandidate. Bad fields
// degrade to defaults or null; sanitization itself never fails.
func sanitizeShop(raw *rawShop) model.ShopCandidate {
	c := model.ShopCandidate{
		Name:    strings.TrimSpace(raw.Name),
		Rating:  coerceRating(raw.Rating),
		Phone:   sanitizePhone(raw.Phone),
		Address: strings.TrimSpace(raw.Address),
	}

	if c.Name == "" {
		c.Name = defaultShopName
	}
	if c.Address == "" {
		c.Address = defaultShopAddress
	}

	if hours := sanitizeOpenHours(raw.OpenHours); hours != "" {
		c.OpenHours = &hours
	}
	if img := sanitizeImageURL(raw.ImageURL); img != "" {
		c.ImageURL = &img
	}

	return c
}

// coerceRating accepts a JSON number or a numeric string. Anything else,
// and any negative or non-finite value, collapses to 0.0.
func coerceRating(v any) float64 {
	var rating float64
	switch t := v.(type) {
	case float64:
		rating = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0.0
		}
		rating = parsed
	default:
		return 0.0
	}

	if rating < 0 || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0.0
	}
	return rating
}

func sanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	switch strings.ToLower(phone) {
	case "", "null", "not provided":
		return model.PhoneUnspecified
	}
	return phone
}

func sanitizeOpenHours(hours string) string {
	hours = strings.TrimSpace(hours)
	switch strings.ToLower(hours) {
	case "", "null", "unknown":
		return ""
	}
	return hours
}

// sanitizeImageURL applies the trust chain for Google listing photos. The
// first failing rule rejects the URL; a surviving URL is truncated at the
// first query separator to drop volatile sizing parameters.
func sanitizeImageURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if len(url) > maxImageURLLength {
		return ""
	}
	if !strings.HasPrefix(url, trustedImagePrefix) || !strings.Contains(url, trustedImageDomain) {
		return ""
	}
	if !strings.Contains(url, photoIDMarker) {
		return ""
	}
	if fillerPattern.MatchString(url) {
		return ""
	}

	if idx := strings.Index(url, "?"); idx >= 0 {
		url = url[:idx]
	}
	return url
}
