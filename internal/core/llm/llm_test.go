package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

func TestCleanHTML(t *testing.T) {
	html := `<html><head><style>body { color: red; }</style>
<script type="text/javascript">var x = "<b>";</script></head>
<body><h1>Salt &amp; Pepper&nbsp;Chicken</h1>
<ul><li>1 lb chicken</li><li>1 tsp salt</li></ul></body></html>`

	assert.Equal(t, "Salt & Pepper Chicken 1 lb chicken 1 tsp salt", CleanHTML(html))
}

func TestTruncate(t *testing.T) {
	text, truncated := Truncate("abcdef", 4)
	assert.True(t, truncated)
	assert.Equal(t, "abcd...", text)

	text, truncated = Truncate("abc", 4)
	assert.False(t, truncated)
	assert.Equal(t, "abc", text)

	text, truncated = Truncate("½½½", 2)
	assert.True(t, truncated)
	assert.Equal(t, "½½...", text)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("2 eggs, whisk them")
	assert.Contains(t, prompt, "Recipe text to extract from:\n2 eggs, whisk them\n\nJSON output:")
	assert.Contains(t, prompt, `"instructions": "Actual step 1 instruction.\nActual step 2 instruction."`)
	assert.Contains(t, prompt, "If no recipe found, return: null")
}

func TestStripStepPrefix(t *testing.T) {
	tests := map[string]string{
		"1. Preheat the oven":   "Preheat the oven",
		"2) Mix flour":          "Mix flour",
		"Step 3: Bake":          "Bake",
		"step 4 Rest the dough": "Rest the dough",
		"Add 2 eggs":            "Add 2 eggs",
		"  10. Serve  ":         "Serve",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripStepPrefix(in), in)
	}
}

func TestParseResponse(t *testing.T) {
	output := `Here is the recipe:
{
  "title": "Garlic Bread",
  "total_time_minutes": 20,
  "base_servings": "4 people",
  "ingredients": [["1 baguette", "3 cloves garlic"], ["2 tbsp butter", ""]],
  "instructions": "1. Slice the baguette\n\n2. Mix garlic and butter\nStep 3: Bake"
}
Enjoy!`

	src, err := ParseResponse(output)
	require.NoError(t, err)

	assert.Equal(t, "Garlic Bread", src.Title)
	require.NotNil(t, src.TotalTimeMinutes)
	assert.Equal(t, 20, *src.TotalTimeMinutes)
	assert.Equal(t, 4, src.BaseServings)
	assert.Equal(t, []string{"1 baguette", "3 cloves garlic", "2 tbsp butter"}, src.Ingredients)
	assert.Equal(t, "Slice the baguette\nMix garlic and butter\nBake", src.Instructions)
}

func TestParseResponseDefaults(t *testing.T) {
	src, err := ParseResponse(`{"total_time_minutes": null, "ingredients": ["2 eggs"], "instructions": ["Boil eggs", "Peel"]}`)
	require.NoError(t, err)

	assert.Equal(t, recipe.DefaultTitle, src.Title)
	assert.Nil(t, src.TotalTimeMinutes)
	assert.Equal(t, 0, src.BaseServings)
	assert.Equal(t, "Boil eggs\nPeel", src.Instructions)
}

func TestParseResponseUnquotedKeys(t *testing.T) {
	src, err := ParseResponse(`{title: "Toast", ingredients: ["1 slice bread"], instructions: "Toast the bread"}`)
	require.NoError(t, err)
	assert.Equal(t, "Toast", src.Title)
	assert.Equal(t, []string{"1 slice bread"}, src.Ingredients)

	src, err = ParseResponse(`{title: "Stew", ingredients: ["2 carrots"], instructions: "Chop carrots, then: simmer"}`)
	require.NoError(t, err)
	assert.Equal(t, "Chop carrots, then: simmer", src.Instructions)
}

func TestParseResponseErrors(t *testing.T) {
	_, err := ParseResponse("null")
	assert.True(t, errors.Is(err, common.ErrNoRecipe))

	_, err = ParseResponse(`{"title": "Empty"}`)
	assert.True(t, errors.Is(err, common.ErrNoRecipe))

	_, err = ParseResponse("I could not find a recipe, sorry.")
	assert.True(t, errors.Is(err, common.ErrLLMError))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{
		Enabled:       true,
		BaseURL:       srv.URL + "/",
		Model:         "llama3.2",
		Timeout:       5 * time.Second,
		MaxTextLength: 40,
	})
}

func TestClientExtract(t *testing.T) {
	var got GenerateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Model:    "llama3.2",
			Done:     true,
			Response: `{"title": "Omelette", "base_servings": 1, "ingredients": ["2 eggs"], "instructions": "1. Beat the eggs\n2. Cook"}`,
		})
	})

	page := "<html><body><h1>Omelette</h1><p>" + strings.Repeat("eggs ", 40) + "</p></body></html>"
	src, err := client.Extract(context.Background(), page, "https://example.com/omelette")
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, DefaultOptions, got.Options)
	assert.Contains(t, got.Prompt, "Omelette eggs eggs")
	assert.NotContains(t, got.Prompt, "<h1>")
	assert.Contains(t, got.Prompt, "...\n\nJSON output:")

	assert.Equal(t, "Omelette", src.Title)
	assert.Equal(t, "Beat the eggs\nCook", src.Instructions)
	assert.Equal(t, "https://example.com/omelette", src.SourceURL)
}

func TestClientGenerateHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrLLMError))
	assert.Contains(t, err.Error(), "model not found")
}

func TestClientImplementsExtractor(t *testing.T) {
	var _ Extractor = (*Client)(nil)
}
