package scraper

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/pkg/common"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration 把 ISO-8601 期間（"PT1H30M"）轉成分鐘，無法解析或為零時回傳 nil
func ParseDuration(s string) *int {
	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return nil
	}
	atoi := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}
	minutes := atoi(m[1])*24*60 + atoi(m[2])*60 + atoi(m[3])
	if m[4] != "" {
		secs, _ := strconv.ParseFloat(m[4], 64)
		minutes += int(secs / 60)
	}
	if minutes <= 0 {
		return nil
	}
	return &minutes
}

// Extract 從 ld+json 區塊中找出 schema.org Recipe，找不到時回傳 common.ErrNoRecipe
func Extract(blocks []string) (*recipe.Source, error) {
	for _, block := range blocks {
		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &doc); err != nil {
			continue
		}
		if node := findRecipe(doc); node != nil {
			src := toSource(node)
			if len(src.Ingredients) == 0 && strings.TrimSpace(src.Instructions) == "" {
				continue
			}
			return src, nil
		}
	}
	return nil, common.Wrap(common.ErrNoRecipe, fmt.Errorf("no schema.org Recipe in %d ld+json blocks", len(blocks)))
}

// findRecipe 在頂層、陣列或 @graph 中尋找 @type 為 Recipe 的節點
func findRecipe(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if found := findRecipe(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipe(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func toSource(node map[string]any) *recipe.Source {
	src := &recipe.Source{
		Title:        cleanText(stringValue(node["name"])),
		Yields:       yieldValue(node["recipeYield"]),
		ImageURL:     imageValue(node["image"]),
		Ingredients:  stringList(node["recipeIngredient"]),
		Instructions: strings.Join(instructionLines(node["recipeInstructions"]), "\n"),
	}
	if len(src.Ingredients) == 0 {
		src.Ingredients = stringList(node["ingredients"])
	}

	src.TotalTimeMinutes = ParseDuration(stringValue(node["totalTime"]))
	if src.TotalTimeMinutes == nil {
		prep := ParseDuration(stringValue(node["prepTime"]))
		cook := ParseDuration(stringValue(node["cookTime"]))
		if prep != nil || cook != nil {
			total := 0
			if prep != nil {
				total += *prep
			}
			if cook != nil {
				total += *cook
			}
			src.TotalTimeMinutes = &total
		}
	}
	return src
}

// instructionLines 攤平 string、[]string、HowToStep 與 HowToSection
func instructionLines(v any) []string {
	switch node := v.(type) {
	case string:
		var lines []string
		for _, line := range strings.Split(node, "\n") {
			if line = cleanText(line); line != "" {
				lines = append(lines, line)
			}
		}
		return lines
	case []any:
		var lines []string
		for _, item := range node {
			lines = append(lines, instructionLines(item)...)
		}
		return lines
	case map[string]any:
		if items, ok := node["itemListElement"]; ok {
			return instructionLines(items)
		}
		if text := cleanText(stringValue(node["text"])); text != "" {
			return []string{text}
		}
		if name := cleanText(stringValue(node["name"])); name != "" {
			return []string{name}
		}
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := cleanText(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			if s := cleanText(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func yieldValue(v any) string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := stringValue(item); s != "" {
				return s
			}
		}
	default:
		return stringValue(t)
	}
	return ""
}

func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s := imageValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return stringValue(t["url"])
	}
	return ""
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// cleanText 去除殘留標籤、解碼 HTML entity 並壓縮空白
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
