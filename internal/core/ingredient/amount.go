package ingredient

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var unicodeFractions = map[rune]float64{
	'½': 1.0 / 2, '⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'¼': 1.0 / 4, '¾': 3.0 / 4,
	'⅕': 1.0 / 5, '⅖': 2.0 / 5, '⅗': 3.0 / 5, '⅘': 4.0 / 5,
	'⅙': 1.0 / 6, '⅚': 5.0 / 6,
	'⅛': 1.0 / 8, '⅜': 3.0 / 8, '⅝': 5.0 / 8, '⅞': 7.0 / 8,
}

func isNumericRune(r rune) bool {
	if r >= '0' && r <= '9' || r == '.' || r == '/' {
		return true
	}
	_, ok := unicodeFractions[r]
	return ok
}

// splitNumericPrefix 把 "500g" 切成 "500" 與 "g"
func splitNumericPrefix(token string) (number, suffix string) {
	for i, r := range token {
		if !isNumericRune(r) {
			return token[:i], token[i:]
		}
	}
	return token, ""
}

// parseNumber 解析整數、小數、分數 "a/b" 與 unicode 分數（可接在整數後，如 "1½"）。
// 分母為零或格式不符時 ok 為 false。
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	runes := []rune(s)
	if frac, ok := unicodeFractions[runes[len(runes)-1]]; ok {
		whole := string(runes[:len(runes)-1])
		if whole == "" {
			return frac, true
		}
		if !isInteger(whole) {
			return 0, false
		}
		n, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, false
		}
		return n + frac, true
	}

	if num, den, found := strings.Cut(s, "/"); found {
		if strings.Contains(den, "/") {
			return 0, false
		}
		a, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		b, err := strconv.ParseFloat(den, 64)
		if err != nil || b == 0 {
			return 0, false
		}
		return a / b, true
	}

	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isFraction(s string) bool {
	if strings.Contains(s, "/") {
		return true
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return false
	}
	_, ok := unicodeFractions[runes[0]]
	return ok
}

// readAmount 讀取開頭的數量，回傳數量與剩下的詞。
// 支援黏在單位前的數字（"500g"）以及帶分數（"1 1/2"）。
func readAmount(fields []string) (float64, []string, bool) {
	if len(fields) == 0 {
		return 0, nil, false
	}

	number, suffix := splitNumericPrefix(fields[0])
	amount, ok := parseNumber(number)
	if !ok {
		return 0, nil, false
	}

	rest := fields[1:]
	if suffix != "" {
		rest = append([]string{suffix}, rest...)
		return amount, rest, true
	}

	if isInteger(number) && len(rest) > 0 && isFraction(rest[0]) {
		fracNumber, fracSuffix := splitNumericPrefix(rest[0])
		if fracSuffix == "" {
			if frac, ok := parseNumber(fracNumber); ok {
				return amount + frac, rest[1:], true
			}
		}
	}

	return amount, rest, true
}

// FormatAmount 以常見分數顯示數量，例如 0.5 → "1/2"、1.5 → "1 1/2"
func FormatAmount(amount float64) string {
	whole := math.Floor(amount)
	frac := amount - whole

	for _, f := range []struct {
		value float64
		text  string
	}{
		{1.0 / 8, "1/8"}, {1.0 / 4, "1/4"}, {1.0 / 3, "1/3"}, {3.0 / 8, "3/8"},
		{1.0 / 2, "1/2"}, {5.0 / 8, "5/8"}, {2.0 / 3, "2/3"}, {3.0 / 4, "3/4"}, {7.0 / 8, "7/8"},
	} {
		if math.Abs(frac-f.value) < 0.005 {
			if whole == 0 {
				return f.text
			}
			return fmt.Sprintf("%d %s", int64(whole), f.text)
		}
	}

	text := strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64)
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
