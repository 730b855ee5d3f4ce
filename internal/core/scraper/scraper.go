// Package scraper 抓取食譜網頁並從 schema.org ld+json 取出結構化食譜
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// Page 一次抓取的結果，Recipe 為 nil 代表結構化抽取失敗
type Page struct {
	URL        string
	HTML       string
	Recipe     *recipe.Source
	ExtractErr error
}

// Scraper 以 colly 抓取頁面
type Scraper struct {
	userAgent    string
	timeout      time.Duration
	allowPrivate bool
}

// NewScraper 建立爬蟲
func NewScraper(cfg config.ScraperConfig) *Scraper {
	return &Scraper{
		userAgent:    cfg.UserAgent,
		timeout:      cfg.Timeout,
		allowPrivate: cfg.AllowPrivateHosts,
	}
}

// Scrape 抓取 URL，回傳原始 HTML 與抽取出的食譜來源
func (s *Scraper) Scrape(ctx context.Context, url string) (*Page, error) {
	if !s.allowPrivate {
		if err := ValidateURL(url); err != nil {
			return nil, err
		}
	}

	// 每次請求使用新的 collector，避免共用 visited 狀態
	opts := []colly.CollectorOption{colly.StdlibContext(ctx)}
	if s.userAgent != "" {
		opts = append(opts, colly.UserAgent(s.userAgent))
	}
	c := colly.NewCollector(opts...)
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	page := &Page{URL: url}
	var blocks []string

	c.OnResponse(func(r *colly.Response) {
		page.HTML = string(r.Body)
	})
	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		blocks = append(blocks, e.Text)
	})

	start := time.Now()
	if err := c.Visit(url); err != nil {
		common.LogWarn("Scrape failed",
			zap.String("url", url),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return nil, common.Wrap(common.ErrRequestTimeout, ctx.Err())
		}
		return nil, common.Wrap(common.ErrFetchFailed, fmt.Errorf("visit %s: %w", url, err))
	}

	page.Recipe, page.ExtractErr = Extract(blocks)
	if page.Recipe != nil {
		page.Recipe.SourceURL = url
	}

	common.LogInfo("Page scraped",
		zap.String("url", url),
		zap.Int("ld_json_blocks", len(blocks)),
		zap.Bool("structured", page.Recipe != nil),
		zap.Int("html_bytes", len(page.HTML)),
		zap.Duration("duration", time.Since(start)),
	)
	return page, nil
}
