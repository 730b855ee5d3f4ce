package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號，字串內容不變
func QuoteJSONKeys(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 16)

	start := 0
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
				b.WriteString(raw[start : i+1])
				start = i + 1
			}
			continue
		}
		if ch == '"' {
			b.WriteString(unquotedKeyPattern.ReplaceAllString(raw[start:i], `$1"$2":`))
			start = i
			inString = true
		}
	}

	rest := raw[start:]
	if !inString {
		rest = unquotedKeyPattern.ReplaceAllString(rest, `$1"$2":`)
	}
	b.WriteString(rest)
	return b.String()
}

// ExtractJSONObject 取出文字中第一個 '{' 到最後一個 '}' 之間的內容，
// 找不到時回傳去除空白後的原文
func ExtractJSONObject(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end != -1 && end > start {
		return content[start : end+1]
	}
	return content
}
