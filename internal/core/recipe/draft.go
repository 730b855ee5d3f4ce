package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"recipe-manager/internal/core/ingredient"
)

// DefaultTitle 來源沒有標題時使用
const DefaultTitle = "Untitled Recipe"

// 食譜模式
const (
	ModeNormal = "normal"
	ModeBread  = "bread"
)

// NormalizeMode 回傳標準模式名稱，空字串視為 normal；無法辨識時 ok 為 false
func NormalizeMode(mode string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeNormal:
		return ModeNormal, true
	case ModeBread:
		return ModeBread, true
	}
	return ModeNormal, false
}

// Source 從爬蟲、LLM 或手動輸入取得的原始食譜文字
type Source struct {
	Title            string   `json:"title"`
	TotalTimeMinutes *int     `json:"total_time_minutes"`
	BaseServings     int      `json:"base_servings"`
	Yields           string   `json:"yields"`
	ImageURL         string   `json:"image_url"`
	Ingredients      []string `json:"ingredients"`
	Instructions     string   `json:"instructions"`
	SourceURL        string   `json:"source_url"`
	RecipeMode       string   `json:"recipe_mode"`
	DoughWeight      *float64 `json:"dough_weight"`
}

// Draft 尚未存檔的結構化食譜，建立後所有權交給呼叫端
type Draft struct {
	Title            string   `json:"title"`
	TotalTimeMinutes *int     `json:"total_time_minutes"`
	BaseServings     int      `json:"base_servings"`
	RecipeMode       string   `json:"recipe_mode"`
	DoughWeight      *float64 `json:"dough_weight"`
	ImageFilename    *string  `json:"image_filename"`
	ImageURL         *string  `json:"image_url,omitempty"`
	SourceURL        *string  `json:"source_url"`
	Steps            []Step   `json:"steps"`
}

var servingsPattern = regexp.MustCompile(`\d+`)

// ParseServings 取出份量字串中的第一個整數，例如 "Serves 4-6" → 4，預設 1
func ParseServings(yields string) int {
	match := servingsPattern.FindString(yields)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// Build 以分配器把來源轉成草稿
func Build(src Source, d *Distributor) Draft {
	title := strings.TrimSpace(src.Title)
	if title == "" {
		title = DefaultTitle
	}

	servings := src.BaseServings
	if servings <= 0 {
		servings = ParseServings(src.Yields)
	}

	mode, _ := NormalizeMode(src.RecipeMode)
	draft := Draft{
		Title:        title,
		BaseServings: servings,
		RecipeMode:   mode,
		Steps:        d.Distribute(src.Instructions, src.Ingredients),
	}
	if src.DoughWeight != nil && *src.DoughWeight > 0 {
		w := *src.DoughWeight
		draft.DoughWeight = &w
	}
	if src.TotalTimeMinutes != nil && *src.TotalTimeMinutes > 0 {
		minutes := *src.TotalTimeMinutes
		draft.TotalTimeMinutes = &minutes
	}
	if src.SourceURL != "" {
		u := src.SourceURL
		draft.SourceURL = &u
	}
	if src.ImageURL != "" {
		u := src.ImageURL
		draft.ImageURL = &u
	}
	return draft
}

// Clone 深拷貝草稿
func (d Draft) Clone() Draft {
	out := d
	out.TotalTimeMinutes = cloneInt(d.TotalTimeMinutes)
	out.DoughWeight = cloneFloat(d.DoughWeight)
	out.ImageFilename = cloneString(d.ImageFilename)
	out.ImageURL = cloneString(d.ImageURL)
	out.SourceURL = cloneString(d.SourceURL)

	out.Steps = make([]Step, len(d.Steps))
	for i, s := range d.Steps {
		step := Step{
			Number:        s.Number,
			Action:        s.Action,
			TimeMinutes:   cloneInt(s.TimeMinutes),
			Ingredients:   make([]ingredient.Parsed, len(s.Ingredients)),
			Tools:         append([]string{}, s.Tools...),
			ImageFilename: cloneString(s.ImageFilename),
		}
		for j, ing := range s.Ingredients {
			step.Ingredients[j] = ing.Clone()
		}
		out.Steps[i] = step
	}
	return out
}

// Scale 回傳調整為指定份量的副本
func (d Draft) Scale(servings int) Draft {
	out := d.Clone()
	if servings <= 0 || d.BaseServings <= 0 {
		return out
	}
	for i := range out.Steps {
		for j, ing := range out.Steps[i].Ingredients {
			out.Steps[i].Ingredients[j] = ingredient.Scale(ing, d.BaseServings, servings)
		}
	}
	// 麵團總重跟著份量縮放
	if out.DoughWeight != nil {
		w := *out.DoughWeight * float64(servings) / float64(d.BaseServings)
		out.DoughWeight = &w
	}
	out.BaseServings = servings
	return out
}

// IngredientCount 所有步驟的食材總數
func (d Draft) IngredientCount() int {
	n := 0
	for _, s := range d.Steps {
		n += len(s.Ingredients)
	}
	return n
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
