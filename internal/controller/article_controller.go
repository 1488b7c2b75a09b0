package controller

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/service"
	"coinbrief_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ArticleController struct {
	BriefingService *service.BriefingService
}

func NewArticleController(briefingService *service.BriefingService) *ArticleController {
	return &ArticleController{BriefingService: briefingService}
}

// EnhanceRequest 新闻源返回的文章摘要
// swagger:model EnhanceRequest
type EnhanceRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	SourceName  *string `json:"sourceName"`
	ImageURL    *string `json:"imageUrl"`
	Link        *string `json:"link"`
}

// Enhance godoc
// @Summary 获取或生成文章简报
// @Description 已有简报直接返回；否则调用模型生成简报和 5 道测验题并写库。force=true 时强制重新生成
// @Tags 文章
// @Accept json
// @Produce json
// @Param slug path string true "文章标识"
// @Param force query bool false "强制重新生成"
// @Param request body EnhanceRequest true "文章摘要"
// @Success 200 {object} util.Response{data=model.PublicBriefing}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /articles/{slug}/enhance [post]
func (c *ArticleController) Enhance(ctx *gin.Context) {
	var req EnhanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid request payload")
		return
	}
	force, _ := strconv.ParseBool(ctx.Query("force"))

	briefing, err := c.BriefingService.GetOrGenerate(ctx.Request.Context(), model.ArticleInput{
		Slug:        ctx.Param("slug"),
		Title:       req.Title,
		Description: req.Description,
		SourceName:  req.SourceName,
		ImageURL:    req.ImageURL,
		SourceLink:  req.Link,
	}, force)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, briefing.Public())
}

// GetArticle godoc
// @Summary 获取文章与简报
// @Description 不会触发生成；简报尚未生成时 enhancement 为 null。正文引用已解析为编号片段
// @Tags 文章
// @Produce json
// @Param slug path string true "文章标识"
// @Success 200 {object} util.Response{data=service.ArticleView}
// @Failure 404 {object} util.Response
// @Router /articles/{slug} [get]
func (c *ArticleController) GetArticle(ctx *gin.Context) {
	view, err := c.BriefingService.GetArticle(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}
