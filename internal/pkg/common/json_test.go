package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteJSONKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unquoted keys", `{title: "Soup", base_servings: 2}`, `{"title": "Soup", "base_servings": 2}`},
		{"already quoted", `{"title": "Soup"}`, `{"title": "Soup"}`},
		{"colon inside value", `{instructions: "Mix, then: stir"}`, `{"instructions": "Mix, then: stir"}`},
		{"escaped quote inside value", `{a: "say \"x, y: z\"", b: [1, 2]}`, `{"a": "say \"x, y: z\"", "b": [1, 2]}`},
		{"nested", `{a: {b: "c"}}`, `{"a": {"b": "c"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuoteJSONKeys(tt.in)
			assert.Equal(t, tt.want, got)
			var v map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(got), &v))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSONObject("Here you go:\n```json\n{\"a\": 1}\n```"))
	assert.Equal(t, "null", ExtractJSONObject("  null "))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, ParseJSON(`{"a": 1}`, &v))
	assert.Error(t, ParseJSON(`{"a": 1} {"b": 2}`, &v))
}
