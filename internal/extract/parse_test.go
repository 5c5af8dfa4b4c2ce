package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShop_DirectJSON(t *testing.T) {
	shop, err := parseShop(`{"name":"Nonna","rating":4.5,"phone":"+15550101","address":"1 Main St"}`)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
	assert.Equal(t, 4.5, shop.Rating)
}

func TestParseShop_FencedJSON(t *testing.T) {
	raw := "Here is the shop data:\n```json\n{\"name\": \"Nonna\", \"rating\": 4.5}\n```\nLet me know if you need anything else."
	shop, err := parseShop(raw)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
}

func TestParseShop_BareFence(t *testing.T) {
	raw := "```\n{\"name\": \"Nonna\"}\n```"
	shop, err := parseShop(raw)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
}

func TestParseShop_ProseAroundObject(t *testing.T) {
	raw := `Sure! The extracted data is {"name": "Nonna", "rating": 4.0} as requested.`
	shop, err := parseShop(raw)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
	assert.Equal(t, 4.0, shop.Rating)
}

func TestParseShop_RepairsTrailingComma(t *testing.T) {
	shop, err := parseShop(`{"name": "Nonna", "rating": 4.5,}`)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
}

func TestParseShop_RepairsSingleQuotes(t *testing.T) {
	shop, err := parseShop(`{'name': 'Nonna', 'rating': 4.5}`)
	require.NoError(t, err)
	assert.Equal(t, "Nonna", shop.Name)
}

func TestParseShop_StringRatingSurvivesParse(t *testing.T) {
	shop, err := parseShop(`{"name":"Nonna","rating":"4.5"}`)
	require.NoError(t, err)
	assert.Equal(t, "4.5", shop.Rating)
}

func TestParseShop_GarbageFails(t *testing.T) {
	_, err := parseShop("I could not access the page, sorry.")
	assert.Error(t, err)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `text {"a":1} more`, `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}
