// Package llm 在結構化抽取失敗時，透過本地 Ollama 相容模型從頁面文字抽取食譜
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// Extractor 從 HTML 或文字抽取食譜來源
type Extractor interface {
	Extract(ctx context.Context, html, url string) (*recipe.Source, error)
}

// Options 生成參數
type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

// DefaultOptions 低溫度以取得穩定的 JSON 輸出
var DefaultOptions = Options{
	Temperature: 0.1,
	NumPredict:  3000,
	NumCtx:      4096,
}

// GenerateRequest /api/generate 請求
type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

// GenerateResponse /api/generate 非串流回應
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client Ollama 相容 API 客戶端
type Client struct {
	client        *resty.Client
	model         string
	maxTextLength int
}

// NewClient 創建 LLM 客戶端
func NewClient(cfg config.LLMConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		client:        client,
		model:         cfg.Model,
		maxTextLength: cfg.MaxTextLength,
	}
}

// Generate 送出提示詞並回傳模型輸出
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var result GenerateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(GenerateRequest{
			Model:   c.model,
			Prompt:  prompt,
			Stream:  false,
			Options: DefaultOptions,
		}).
		SetResult(&result).
		Post("/api/generate")

	if err != nil {
		err = fmt.Errorf("failed to send request to LLM: %w", err)
		common.LogLLMCall(c.model, time.Since(start), err)
		if ctx.Err() != nil {
			return "", common.Wrap(common.ErrGatewayTimeout, err)
		}
		return "", common.Wrap(common.ErrLLMError, err)
	}

	if resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("LLM API returned %d: %s", resp.StatusCode(), resp.String())
		common.LogLLMCall(c.model, time.Since(start), err)
		return "", common.Wrap(common.ErrLLMError, err)
	}

	common.LogLLMCall(c.model, time.Since(start), nil)
	return strings.TrimSpace(result.Response), nil
}

// Extract 清理頁面、截斷長度、呼叫模型並解析回應
func (c *Client) Extract(ctx context.Context, html, url string) (*recipe.Source, error) {
	text := html
	if looksLikeHTML(html) {
		text = CleanHTML(html)
	}

	originalLength := len([]rune(text))
	text, truncated := Truncate(text, c.maxTextLength)
	if truncated {
		common.LogInfo("Text truncated for LLM",
			zap.Int("original_length", originalLength),
			zap.Int("max_length", c.maxTextLength),
		)
	}
	if strings.Contains(strings.ToLower(c.model), "1b") {
		common.LogWarn("Using a 1B model, extraction may be less accurate", zap.String("model", c.model))
	}

	output, err := c.Generate(ctx, BuildPrompt(text))
	if err != nil {
		return nil, err
	}

	src, err := ParseResponse(output)
	if err != nil {
		outputStart, _ := Truncate(output, 200)
		common.LogWarn("Failed to parse LLM response",
			zap.String("url", url),
			zap.String("output_start", outputStart),
			zap.Error(err),
		)
		return nil, err
	}
	src.SourceURL = url

	common.LogInfo("Recipe extracted by LLM",
		zap.String("url", url),
		zap.String("title", src.Title),
		zap.Int("ingredients", len(src.Ingredients)),
	)
	return src, nil
}
