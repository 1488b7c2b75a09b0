package app

import (
	"coinbrief_backend/docs"
	"coinbrief_backend/internal/config"
	"coinbrief_backend/internal/middleware"
	"coinbrief_backend/pkg/monitoring"
	"coinbrief_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.AccessLog())

	// 健康检查不依赖建表
	api.GET("/health", c.health.HealthCheck)

	data := api.Group("")
	data.Use(middleware.EnsureSchema(a.Schema))
	{
		// 生成接口调用外部模型，单独限流
		data.POST("/articles/:slug/enhance",
			security.RateLimiter("enhance", cfg.RateLimit.EnhanceMaxRequests, cfg.RateLimit.Window()),
			c.article.Enhance)
		data.GET("/articles/:slug", c.article.GetArticle)

		data.GET("/quiz/history", c.quiz.GetHistory)
		data.GET("/quiz/:slug", c.quiz.GetQuiz)
		data.POST("/quiz/:slug/attempt", c.quiz.SubmitAttempt)

		data.GET("/leaderboard", c.quiz.GetLeaderboard)
	}
}
