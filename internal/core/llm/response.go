package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/pkg/common"
)

// extracted LLM 回傳的原始結構，欄位型別不固定
type extracted struct {
	Title            any `json:"title"`
	TotalTimeMinutes any `json:"total_time_minutes"`
	BaseServings     any `json:"base_servings"`
	Ingredients      any `json:"ingredients"`
	Instructions     any `json:"instructions"`
}

var leadingNumber = regexp.MustCompile(`\d+`)

var stepPrefixPattern = regexp.MustCompile(`(?i)^(\d+\.|\d+\)|\bStep\s+\d+:?)\s*`)

// StripStepPrefix 移除 "1." "2)" "Step 3:" 等步驟編號
func StripStepPrefix(line string) string {
	return strings.TrimSpace(stepPrefixPattern.ReplaceAllString(strings.TrimSpace(line), ""))
}

// ParseResponse 把模型輸出轉成食譜來源；模型回傳 null 時為 common.ErrNoRecipe
func ParseResponse(output string) (*recipe.Source, error) {
	raw := common.ExtractJSONObject(output)

	var data *extracted
	if err := common.ParseJSON(raw, &data); err != nil {
		// 小模型常輸出未加引號的鍵
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(raw), &data); retryErr != nil {
			return nil, common.Wrap(common.ErrLLMError, fmt.Errorf("decode response: %w", err))
		}
	}
	if data == nil {
		return nil, common.Wrap(common.ErrNoRecipe, fmt.Errorf("model returned null"))
	}

	src := &recipe.Source{
		Title:        strings.TrimSpace(asString(data.Title)),
		BaseServings: asInt(data.BaseServings),
		Ingredients:  flattenStrings(data.Ingredients),
	}
	if src.Title == "" {
		src.Title = recipe.DefaultTitle
	}
	if minutes := asInt(data.TotalTimeMinutes); minutes > 0 {
		src.TotalTimeMinutes = &minutes
	}

	var lines []string
	for _, line := range instructionLines(data.Instructions) {
		if line = StripStepPrefix(line); line != "" {
			lines = append(lines, line)
		}
	}
	src.Instructions = strings.Join(lines, "\n")

	if len(src.Ingredients) == 0 && len(lines) == 0 {
		return nil, common.Wrap(common.ErrNoRecipe, fmt.Errorf("response has no ingredients or instructions"))
	}
	return src, nil
}

func instructionLines(v any) []string {
	switch t := v.(type) {
	case string:
		return strings.Split(strings.ReplaceAll(t, "\r\n", "\n"), "\n")
	case []any:
		var lines []string
		for _, item := range t {
			lines = append(lines, instructionLines(item)...)
		}
		return lines
	}
	return nil
}

// flattenStrings 攤平字串或巢狀字串清單，略過空白項目
func flattenStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range t {
			out = append(out, flattenStrings(item)...)
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func asInt(v any) int {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(math.Round(f))
		}
	case string:
		if m := leadingNumber.FindString(t); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}
