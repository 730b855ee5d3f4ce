package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-manager/internal/api/handlers/health"
	recipeHandler "recipe-manager/internal/api/handlers/recipe"
	"recipe-manager/internal/api/middleware"
	"recipe-manager/internal/core/cache"
	"recipe-manager/internal/core/llm"
	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/scraper"
	"recipe-manager/internal/core/service"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// NewImportService 依設定組裝匯入服務，store 可為 nil；LLM 停用時回傳的隊列為 nil
func NewImportService(cfg *config.Config, store cache.Store) (*service.ImportService, *llm.Queue) {
	distributor := recipe.NewDistributor(cfg.Parser.Vocabulary())

	opts := []service.Option{service.WithStore(store)}
	var queue *llm.Queue
	if cfg.LLM.Enabled {
		queue = llm.NewQueue(llm.NewClient(cfg.LLM), cfg.LLM.Workers, cfg.LLM.QueueSize)
		opts = append(opts, service.WithExtractor(queue))
	}
	if cfg.Scraper.AllowPrivateHosts {
		opts = append(opts, service.WithoutURLValidation())
	}

	return service.NewImportService(scraper.NewScraper(cfg.Scraper), distributor, opts...), queue
}

// SetupRouter 設置路由，回傳的 shutdown 會停止 LLM 隊列的 worker
func SetupRouter(cfg *config.Config, store cache.Store) (*gin.Engine, func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID))) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	importer, queue := NewImportService(cfg, store)

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", store != nil),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("llm_enabled", importer.LLMEnabled()),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
	)

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, store, queue)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(requestTimeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		h := recipeHandler.NewHandler(importer, cfg.App.Debug)

		api.POST("/ingredients/parse", h.HandleParseIngredients)

		recipes := api.Group("/recipes")
		{
			recipes.POST("/distribute", h.HandleDistribute)
			recipes.POST("/draft", h.HandleDraft)
			recipes.POST("/scale", h.HandleScale)
			// 匯入請求去重
			scrape := []gin.HandlerFunc{h.HandleScrape}
			if cfg.DedupWindow > 0 {
				scrape = append([]gin.HandlerFunc{middleware.Deduplication(middleware.NewDeduplicator(cfg.DedupWindow))}, scrape...)
			}
			recipes.POST("/scrape", scrape...)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrCodeNotFound,
			Message: common.ErrNotFound.Message,
			Details: c.Request.URL.Path,
		})
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	shutdown := func() {
		if queue != nil {
			queue.Close()
		}
	}
	return router, shutdown
}

// requestTimeout 為請求加上逾時，處理器尚未回應時回傳 504
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: common.ErrGatewayTimeout.Message,
				Details: timeout.String(),
			})
		}
	}
}
