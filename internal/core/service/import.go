// Package service 匯入流程：抓取頁面、結構化抽取或 LLM 備援、分配食材並快取草稿
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-manager/internal/core/cache"
	"recipe-manager/internal/core/llm"
	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/scraper"
	"recipe-manager/internal/pkg/common"
)

// Fetcher 抓取並嘗試結構化抽取頁面
type Fetcher interface {
	Scrape(ctx context.Context, url string) (*scraper.Page, error)
}

// ImportService 食譜匯入服務，可安全並行使用
type ImportService struct {
	fetcher      Fetcher
	extractor    llm.Extractor
	store        cache.Store
	distributor  *recipe.Distributor
	validateURLs bool
}

// Option 匯入服務選項
type Option func(*ImportService)

// WithExtractor 設定 LLM 備援，nil 代表停用
func WithExtractor(e llm.Extractor) Option {
	return func(s *ImportService) { s.extractor = e }
}

// WithStore 設定草稿快取，nil 代表不快取
func WithStore(store cache.Store) Option {
	return func(s *ImportService) { s.store = store }
}

// WithoutURLValidation 略過公開主機檢查，只用於本機測試
func WithoutURLValidation() Option {
	return func(s *ImportService) { s.validateURLs = false }
}

// NewImportService 創建匯入服務
func NewImportService(fetcher Fetcher, distributor *recipe.Distributor, opts ...Option) *ImportService {
	s := &ImportService{
		fetcher:      fetcher,
		distributor:  distributor,
		validateURLs: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Distributor 回傳服務使用的分配器
func (s *ImportService) Distributor() *recipe.Distributor {
	return s.distributor
}

// LLMEnabled 是否設定了 LLM 備援
func (s *ImportService) LLMEnabled() bool {
	return s.extractor != nil
}

// Import 從 URL 匯入食譜草稿
func (s *ImportService) Import(ctx context.Context, url string, useLLM bool) (*recipe.Draft, error) {
	url = strings.TrimSpace(url)
	if s.validateURLs {
		if err := scraper.ValidateURL(url); err != nil {
			return nil, err
		}
	}

	if s.store != nil {
		draft, err := s.store.Get(ctx, url)
		if err == nil {
			return draft, nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("Cache lookup failed", zap.String("url", url), zap.Error(err))
		}
	}

	start := time.Now()
	page, err := s.fetcher.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	src, method, err := s.source(ctx, page, useLLM)
	if err != nil {
		common.LogWarn("Recipe import failed",
			zap.String("url", url),
			zap.Bool("use_llm", useLLM),
			zap.Error(err),
		)
		return nil, err
	}
	src.SourceURL = url

	draft := s.FromSource(*src)

	if s.store != nil {
		if err := s.store.Set(ctx, url, &draft); err != nil {
			common.LogWarn("Cache store failed", zap.String("url", url), zap.Error(err))
		}
	}

	common.LogInfo("Recipe imported",
		zap.String("url", url),
		zap.String("method", method),
		zap.String("title", draft.Title),
		zap.Int("steps", len(draft.Steps)),
		zap.Int("ingredients", draft.IngredientCount()),
		zap.Duration("duration", time.Since(start)),
	)
	return &draft, nil
}

// source 先用結構化資料，失敗時視設定改用 LLM
func (s *ImportService) source(ctx context.Context, page *scraper.Page, useLLM bool) (*recipe.Source, string, error) {
	if page.Recipe != nil {
		return page.Recipe, "structured", nil
	}

	scrapeErr := page.ExtractErr
	if scrapeErr == nil {
		scrapeErr = common.ErrNoRecipe
	}

	if !useLLM || s.extractor == nil {
		common.LogInfo("LLM fallback skipped",
			zap.Bool("requested", useLLM),
			zap.Bool("enabled", s.extractor != nil),
		)
		return nil, "", scrapeErr
	}

	src, llmErr := s.extractor.Extract(ctx, page.HTML, page.URL)
	if llmErr != nil {
		return nil, "", common.Wrap(common.ErrExtractionFailed,
			fmt.Errorf("structured extraction: %v; LLM fallback: %w", scrapeErr, llmErr))
	}
	return src, "llm", nil
}

// FromSource 從已取得的來源（手動輸入或抽取結果）建立草稿
func (s *ImportService) FromSource(src recipe.Source) recipe.Draft {
	return recipe.Build(src, s.distributor)
}
