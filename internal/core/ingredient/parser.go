// Package ingredient turns raw ingredient lines such as "1 1/2 cups flour" into
// structured {name, amount, unit} values.
package ingredient

import (
	"strings"
)

// Parsed 解析後的食材，每次解析都產生新的值
type Parsed struct {
	Name            string   `json:"ingredient_name"`
	Amount          *float64 `json:"amount"`
	Unit            *string  `json:"unit"`
	BakerPercentage *float64 `json:"baker_percentage,omitempty"` // 麵包模式使用，解析器不設定
}

// String 以 "1 1/2 cup flour" 形式顯示
func (p Parsed) String() string {
	parts := make([]string, 0, 3)
	if p.Amount != nil {
		parts = append(parts, FormatAmount(*p.Amount))
	}
	if p.Unit != nil {
		parts = append(parts, *p.Unit)
	}
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, " ")
}

// strategy 是一種解析嘗試，失敗時回傳 false 交給下一個
type strategy func(v Vocabulary, fields []string) (Parsed, bool)

// Parser 依序套用解析策略，第一個成功者勝出
type Parser struct {
	vocab      Vocabulary
	strategies []strategy
}

// NewParser 創建解析器
func NewParser(vocab Vocabulary) *Parser {
	strategies := []strategy{amountUnitName}
	if vocab.ArticleAmounts {
		strategies = append(strategies, articleUnitName)
	}
	strategies = append(strategies, amountName)

	return &Parser{
		vocab:      vocab,
		strategies: strategies,
	}
}

// Vocabulary 回傳解析器使用的詞彙設定
func (p *Parser) Vocabulary() Vocabulary {
	return p.vocab
}

// Parse 解析一行食材。不會失敗，無法解析時整行作為名稱。
func (p *Parser) Parse(raw string) Parsed {
	fields := strings.Fields(raw)
	for _, try := range p.strategies {
		if parsed, ok := try(p.vocab, fields); ok {
			return parsed
		}
	}
	return Parsed{Name: strings.Join(fields, " ")}
}

// ParseAll 依輸入順序解析多行食材
func (p *Parser) ParseAll(raw []string) []Parsed {
	parsed := make([]Parsed, len(raw))
	for i, line := range raw {
		parsed[i] = p.Parse(line)
	}
	return parsed
}

// amountUnitName: "2 cups flour", "500g sugar"
func amountUnitName(v Vocabulary, fields []string) (Parsed, bool) {
	amount, rest, ok := readAmount(fields)
	if !ok || len(rest) < 2 {
		return Parsed{}, false
	}
	unit, ok := v.unit(rest[0])
	if !ok {
		return Parsed{}, false
	}
	return Parsed{
		Name:   strings.Join(rest[1:], " "),
		Amount: &amount,
		Unit:   &unit,
	}, true
}

// articleUnitName: "a pinch of salt", "a clove garlic"
func articleUnitName(v Vocabulary, fields []string) (Parsed, bool) {
	if len(fields) < 3 {
		return Parsed{}, false
	}
	article := strings.ToLower(fields[0])
	if article != "a" && article != "an" {
		return Parsed{}, false
	}
	unit, ok := v.unit(fields[1])
	if !ok {
		return Parsed{}, false
	}
	rest := fields[2:]
	if strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return Parsed{}, false
	}
	amount := 1.0
	return Parsed{
		Name:   strings.Join(rest, " "),
		Amount: &amount,
		Unit:   &unit,
	}, true
}

// amountName: "3 eggs"
func amountName(_ Vocabulary, fields []string) (Parsed, bool) {
	amount, rest, ok := readAmount(fields)
	if !ok || len(rest) == 0 {
		return Parsed{}, false
	}
	return Parsed{
		Name:   strings.Join(rest, " "),
		Amount: &amount,
	}, true
}
