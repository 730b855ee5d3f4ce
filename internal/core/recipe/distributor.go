// Package recipe splits free-text instructions into steps and assigns parsed
// ingredients to the step that mentions them.
package recipe

import (
	"strings"

	"recipe-manager/internal/core/ingredient"
)

// DefaultAction 沒有任何指示文字時使用的單一步驟
const DefaultAction = "Prepare ingredients"

// Step 食譜步驟
type Step struct {
	Number        int                 `json:"step_number"`
	Action        string              `json:"action"`
	Ingredients   []ingredient.Parsed `json:"ingredients"`
	TimeMinutes   *int                `json:"time_minutes"`
	Tools         []string            `json:"tools"`
	ImageFilename *string             `json:"image_filename,omitempty"` // 由儲存端填入
}

// MatchKind 食材分配到步驟的方式
type MatchKind int

const (
	// MatchKeyword 關鍵字出現在步驟文字中
	MatchKeyword MatchKind = iota
	// MatchFallback 沒有任何步驟提到，歸到第一步
	MatchFallback
)

func (k MatchKind) String() string {
	if k == MatchKeyword {
		return "keyword"
	}
	return "fallback"
}

// Assignment 單一食材的分配結果
type Assignment struct {
	Index int       // 在原始食材清單中的位置
	Step  int       // 1-based 步驟編號
	Kind  MatchKind
}

// Distributor 把食材分配到步驟。無狀態，可併發使用。
type Distributor struct {
	parser *ingredient.Parser
	vocab  ingredient.Vocabulary
}

// NewDistributor 以注入的詞彙設定創建分配器
func NewDistributor(vocab ingredient.Vocabulary) *Distributor {
	return &Distributor{
		parser: ingredient.NewParser(vocab),
		vocab:  vocab,
	}
}

// Parser 回傳分配器使用的食材解析器
func (d *Distributor) Parser() *ingredient.Parser {
	return d.parser
}

// SplitSteps 依換行切分指示文字，丟棄空白行
func SplitSteps(instructions string) []string {
	instructions = strings.ReplaceAll(instructions, "\r\n", "\n")
	instructions = strings.ReplaceAll(instructions, "\r", "\n")

	var actions []string
	for _, line := range strings.Split(instructions, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			actions = append(actions, line)
		}
	}
	return actions
}

// Assign 找出每個食材第一個提到它的步驟，找不到時歸到第一步
func (d *Distributor) Assign(actions []string, parsed []ingredient.Parsed) []Assignment {
	lowered := make([]string, len(actions))
	for i, a := range actions {
		lowered[i] = strings.ToLower(a)
	}

	assignments := make([]Assignment, len(parsed))
	for i, p := range parsed {
		assignments[i] = Assignment{Index: i, Step: 1, Kind: MatchFallback}
		keywords := d.vocab.Keywords(p.Name)
	steps:
		for s, action := range lowered {
			for _, kw := range keywords {
				if strings.Contains(action, kw) {
					assignments[i] = Assignment{Index: i, Step: s + 1, Kind: MatchKeyword}
					break steps
				}
			}
		}
	}
	return assignments
}

// Distribute 把指示文字切成步驟，並把每個食材放進提到它的第一個步驟。
// 每個食材恰好出現一次；第一步先放關鍵字命中的，再放未命中的，各自保持原順序。
func (d *Distributor) Distribute(instructions string, rawIngredients []string) []Step {
	actions := SplitSteps(instructions)
	if len(actions) == 0 {
		actions = []string{DefaultAction}
	}

	steps := make([]Step, len(actions))
	for i, action := range actions {
		steps[i] = Step{
			Number:      i + 1,
			Action:      action,
			Ingredients: []ingredient.Parsed{},
			Tools:       []string{},
		}
	}

	parsed := d.parser.ParseAll(rawIngredients)
	assignments := d.Assign(actions, parsed)

	for _, a := range assignments {
		if a.Kind == MatchKeyword {
			steps[a.Step-1].Ingredients = append(steps[a.Step-1].Ingredients, parsed[a.Index])
		}
	}
	for _, a := range assignments {
		if a.Kind == MatchFallback {
			steps[0].Ingredients = append(steps[0].Ingredients, parsed[a.Index])
		}
	}

	return steps
}
