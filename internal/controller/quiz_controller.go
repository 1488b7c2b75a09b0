package controller

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/service"
	"coinbrief_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// AttemptRequest 答题提交
// swagger:model AttemptRequest
type AttemptRequest struct {
	WalletAddress string                   `json:"walletAddress"`
	Answers       []model.AnswerSubmission `json:"answers"`
}

// GetQuiz godoc
// @Summary 获取测验
// @Description 返回文章信息、奖励规则和题目（不含答案）
// @Tags 测验
// @Produce json
// @Param slug path string true "文章标识"
// @Success 200 {object} util.Response{data=model.QuizView}
// @Failure 404 {object} util.Response
// @Router /quiz/{slug} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	view, err := c.QuizService.GetQuiz(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitAttempt godoc
// @Summary 提交答题
// @Description 判分并按每题 10 金币累加到钱包档案，可重复作答
// @Tags 测验
// @Accept json
// @Produce json
// @Param slug path string true "文章标识"
// @Param request body AttemptRequest true "答题内容"
// @Success 200 {object} util.Response{data=model.AttemptResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /quiz/{slug}/attempt [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	var req AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Invalid submission payload")
		return
	}

	result, err := c.QuizService.SubmitAttempt(ctx.Request.Context(), req.WalletAddress, ctx.Param("slug"), req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetHistory godoc
// @Summary 答题历史
// @Description 钱包累计金币和最近 10 次答题
// @Tags 测验
// @Produce json
// @Param walletAddress query string true "钱包地址"
// @Success 200 {object} util.Response{data=model.QuizHistory}
// @Failure 400 {object} util.Response
// @Router /quiz/history [get]
func (c *QuizController) GetHistory(ctx *gin.Context) {
	history, err := c.QuizService.GetHistory(ctx.Request.Context(), ctx.Query("walletAddress"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// GetLeaderboard godoc
// @Summary 金币排行榜
// @Tags 测验
// @Produce json
// @Param limit query int false "条数" default(20)
// @Success 200 {object} util.Response{data=[]model.LeaderboardEntry}
// @Router /leaderboard [get]
func (c *QuizController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultLeaderboardLimit)))

	entries, err := c.QuizService.GetLeaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
