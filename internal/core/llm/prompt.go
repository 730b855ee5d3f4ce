package llm

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	stylePattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style\s*>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// CleanHTML 移除 script/style 與標籤，解碼 entity 並壓縮空白
func CleanHTML(raw string) string {
	text := scriptPattern.ReplaceAllString(raw, "")
	text = stylePattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// looksLikeHTML 判斷輸入是整頁 HTML 還是已清理的文字
func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// Truncate 以 rune 計算長度，超過 max 時截斷並補上 "..."
func Truncate(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]) + "...", true
}

const promptTemplate = `You are a recipe extraction assistant. Read the following recipe text and extract the recipe information.

IMPORTANT: Do NOT use the example values. Extract the ACTUAL recipe information from the text below.

Return a JSON object with this structure:
{
  "title": "actual recipe title from the text",
  "total_time_minutes": actual_number_or_null,
  "base_servings": actual_number,
  "ingredients": ["actual ingredient 1", "actual ingredient 2"],
  "instructions": "Actual step 1 instruction.\nActual step 2 instruction."
}

Requirements:
1. Extract the REAL recipe title from the text
2. Find the total time in minutes (or null if not mentioned)
3. Find how many servings (or use 1 if not mentioned)
4. List every ingredient line with its amount and unit as written
5. Extract ALL instruction steps, separated by newlines
6. Return ONLY valid JSON, no extra text
7. If no recipe found, return: null

Recipe text to extract from:
%s

JSON output:`

// BuildPrompt 產生食譜抽取提示詞
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
