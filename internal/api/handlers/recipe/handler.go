package recipe

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-manager/internal/core/ingredient"
	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/core/service"
	"recipe-manager/internal/pkg/common"
)

// ParseRequest 食材解析請求
type ParseRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// ParseResponse 食材解析結果，順序與請求相同
type ParseResponse struct {
	Ingredients []ingredient.Parsed `json:"ingredients"`
}

// DistributeRequest 食材分配請求
type DistributeRequest struct {
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
}

// DistributeResponse 分配後的步驟
type DistributeResponse struct {
	Steps []recipe.Step `json:"steps"`
}

// ScaleRequest 份量調整請求
type ScaleRequest struct {
	Draft    recipe.Draft `json:"draft"`
	Servings int          `json:"servings" binding:"required,min=1"`
}

// ScrapeRequest 從網址匯入食譜
type ScrapeRequest struct {
	URL            string `json:"url" binding:"required"`
	UseLLMFallback *bool  `json:"use_llm_fallback"`
}

// Handler 食譜處理程序
type Handler struct {
	importer *service.ImportService
	debug    bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(importer *service.ImportService, debug bool) *Handler {
	return &Handler{importer: importer, debug: debug}
}

// HandleParseIngredients 解析食材字串
func (h *Handler) HandleParseIngredients(c *gin.Context) {
	var req ParseRequest
	if !h.bind(c, &req) {
		return
	}

	parsed := h.importer.Distributor().Parser().ParseAll(req.Ingredients)

	common.LogDebug("Ingredients parsed",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("count", len(parsed)),
	)
	c.JSON(http.StatusOK, ParseResponse{Ingredients: parsed})
}

// HandleDistribute 把食材分配到指示步驟
func (h *Handler) HandleDistribute(c *gin.Context) {
	var req DistributeRequest
	if !h.bind(c, &req) {
		return
	}

	steps := h.importer.Distributor().Distribute(req.Instructions, req.Ingredients)
	c.JSON(http.StatusOK, DistributeResponse{Steps: steps})
}

// HandleDraft 由手動輸入建立草稿
func (h *Handler) HandleDraft(c *gin.Context) {
	var req recipe.Source
	if !h.bind(c, &req) {
		return
	}
	if _, ok := recipe.NormalizeMode(req.RecipeMode); !ok {
		h.respondError(c, common.NewValidationError("recipe_mode must be normal or bread"))
		return
	}

	draft := h.importer.FromSource(req)

	common.LogInfo("Draft built",
		zap.String("request_id", requestid.Get(c)),
		zap.String("title", draft.Title),
		zap.String("recipe_mode", draft.RecipeMode),
		zap.Int("steps", len(draft.Steps)),
		zap.Int("ingredients", draft.IngredientCount()),
	)
	c.JSON(http.StatusOK, draft)
}

// HandleScale 調整草稿份量
func (h *Handler) HandleScale(c *gin.Context) {
	var req ScaleRequest
	if !h.bind(c, &req) {
		return
	}

	if req.Draft.BaseServings <= 0 {
		h.respondError(c, common.NewValidationError("draft base_servings must be positive"))
		return
	}

	c.JSON(http.StatusOK, req.Draft.Scale(req.Servings))
}

// HandleScrape 從網址匯入食譜草稿
func (h *Handler) HandleScrape(c *gin.Context) {
	var req ScrapeRequest
	if !h.bind(c, &req) {
		return
	}

	useLLM := true
	if req.UseLLMFallback != nil {
		useLLM = *req.UseLLMFallback
	}

	common.LogInfo("開始處理食譜匯入請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("url", req.URL),
		zap.Bool("use_llm_fallback", useLLM),
	)

	draft, err := h.importer.Import(c.Request.Context(), req.URL, useLLM)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, draft)
}

// bind 解析 JSON 請求體，失敗時直接回應 400
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		h.respondError(c, common.Wrap(common.ErrInvalidRequest, err))
		return false
	}
	return true
}

// respondError 把錯誤轉成 ErrorResponse，細節只在除錯模式回傳
func (h *Handler) respondError(c *gin.Context, err error) {
	var ce *common.CustomError
	if common.IsValidationError(err) {
		ce = common.Wrap(common.ErrInvalidRequest, err)
	} else {
		ce = common.AsCustomError(err)
	}
	_ = c.Error(err)

	resp := common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if h.debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}

	status := ce.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, resp)
}
