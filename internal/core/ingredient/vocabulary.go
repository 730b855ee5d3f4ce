package ingredient

import (
	"strings"
	"unicode"
)

// defaultUnits 表面寫法 → 標準單數寫法
var defaultUnits = map[string]string{
	"cup": "cup", "cups": "cup",
	"tbsp": "tbsp", "tbsps": "tbsp", "tablespoon": "tablespoon", "tablespoons": "tablespoon",
	"tsp": "tsp", "tsps": "tsp", "teaspoon": "teaspoon", "teaspoons": "teaspoon",
	"ml": "ml", "milliliter": "milliliter", "milliliters": "milliliter",
	"l": "l", "liter": "liter", "liters": "liter",
	"oz": "oz", "ounce": "ounce", "ounces": "ounce",
	"lb": "lb", "lbs": "lb", "pound": "pound", "pounds": "pound",
	"g": "g", "gram": "gram", "grams": "gram",
	"kg": "kg", "kilogram": "kilogram", "kilograms": "kilogram",
	"pinch": "pinch", "pinches": "pinch",
	"dash": "dash", "dashes": "dash",
	"clove": "clove", "cloves": "clove",
	"slice": "slice", "slices": "slice",
}

var defaultStopwords = []string{
	"the", "a", "an", "of", "to", "for", "and", "or", "in", "on", "with", "fresh",
}

// Vocabulary 解析與分配共用的詞彙設定，由呼叫端注入
type Vocabulary struct {
	// Units 小寫表面寫法 → 回報用的標準寫法
	Units map[string]string
	// Stopwords 產生關鍵字時排除的字
	Stopwords map[string]struct{}
	// ArticleAmounts 為 true 時 "a pinch of salt" 解析為 1 pinch salt
	ArticleAmounts bool
	// MinKeywordLength 關鍵字最短長度（rune 數）
	MinKeywordLength int
}

// DefaultVocabulary 回傳內建的單位與停用字清單
func DefaultVocabulary() Vocabulary {
	units := make(map[string]string, len(defaultUnits))
	for k, v := range defaultUnits {
		units[k] = v
	}
	return Vocabulary{
		Units:            units,
		Stopwords:        WordSet(defaultStopwords),
		ArticleAmounts:   true,
		MinKeywordLength: 3,
	}
}

// UnitTable 由表面寫法清單建立單位表。已知寫法沿用內建的標準寫法，
// 未知寫法以自身作為標準寫法。
func UnitTable(surfaces []string) map[string]string {
	units := make(map[string]string, len(surfaces))
	for _, s := range surfaces {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if canonical, ok := defaultUnits[s]; ok {
			units[s] = canonical
			continue
		}
		units[s] = s
	}
	return units
}

// WordSet 建立小寫字集合
func WordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// unit 查詢單位，容許結尾的句點（"tbsp."）
func (v Vocabulary) unit(token string) (string, bool) {
	token = strings.TrimSuffix(strings.ToLower(token), ".")
	canonical, ok := v.Units[token]
	return canonical, ok
}

// Keywords 由食材名稱產生比對用的小寫關鍵字
func (v Vocabulary) Keywords(name string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(name)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" {
			continue
		}
		if _, stop := v.Stopwords[word]; stop {
			continue
		}
		if len([]rune(word)) < v.MinKeywordLength {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}
