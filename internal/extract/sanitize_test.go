package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewave/reserve-server/internal/model"
)

func TestSanitizeShop_Defaults(t *testing.T) {
	c := sanitizeShop(&rawShop{})
	assert.Equal(t, "unknown shop", c.Name)
	assert.Equal(t, "unknown address", c.Address)
	assert.Equal(t, model.PhoneUnspecified, c.Phone)
	assert.Equal(t, 0.0, c.Rating)
	assert.Nil(t, c.ImageURL)
	assert.Nil(t, c.OpenHours)
}

func TestSanitizeShop_PassThrough(t *testing.T) {
	c := sanitizeShop(&rawShop{
		Name:      "  Trattoria Nonna ",
		Rating:    4.5,
		Phone:     "+1 555 0101",
		Address:   "1 Main St",
		OpenHours: "Mon-Fri 11:00-22:00",
		ImageURL:  "https://lh3.googleusercontent.com/p/AF1QipExamplePhoto",
	})
	assert.Equal(t, "Trattoria Nonna", c.Name)
	assert.Equal(t, 4.5, c.Rating)
	assert.Equal(t, "+1 555 0101", c.Phone)
	require.NotNil(t, c.OpenHours)
	assert.Equal(t, "Mon-Fri 11:00-22:00", *c.OpenHours)
	require.NotNil(t, c.ImageURL)
}

func TestCoerceRating(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 4.5, 4.5},
		{"zero", 0.0, 0.0},
		{"numeric string", "3.8", 3.8},
		{"padded string", " 4.2 ", 4.2},
		{"garbage string", "four and a half", 0.0},
		{"nil", nil, 0.0},
		{"bool", true, 0.0},
		{"negative", -1.0, 0.0},
		{"infinite string", "Inf", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceRating(tt.in))
		})
	}
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, model.PhoneUnspecified, sanitizePhone(""))
	assert.Equal(t, model.PhoneUnspecified, sanitizePhone("null"))
	assert.Equal(t, model.PhoneUnspecified, sanitizePhone("Not Provided"))
	assert.Equal(t, "+15550101", sanitizePhone(" +15550101 "))
}

func TestSanitizeOpenHours(t *testing.T) {
	assert.Empty(t, sanitizeOpenHours(""))
	assert.Empty(t, sanitizeOpenHours("null"))
	assert.Empty(t, sanitizeOpenHours("Unknown"))
	assert.Equal(t, "24 hours", sanitizeOpenHours("24 hours"))
}

func TestSanitizeImageURL(t *testing.T) {
	valid := "https://lh3.googleusercontent.com/p/AF1QipN5v3aEx4mpl3"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", valid, valid},
		{"query stripped", valid + "?w=408&h=240", valid},
		{"empty", "", ""},
		{"too long", valid + strings.Repeat("x", 200), ""},
		{"wrong host", "https://example.com/p/AF1QipN5v3aEx4mpl3", ""},
		{"http scheme", "http://lh3.googleusercontent.com/p/AF1QipN5v3aEx4mpl3", ""},
		{"missing photo marker", "https://lh3.googleusercontent.com/some/other/path", ""},
		{"filler zeros", "https://lh3.googleusercontent.com/p/AF1Qip0-0-0-0-0-0-placeholder", ""},
		{"filler reversed", "https://lh3.googleusercontent.com/p/AF1Qip-0-0-0-0-0placeholder", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeImageURL(tt.in))
		})
	}
}
