package util

import (
	"coinbrief_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// HandleServiceError 按错误类别映射 HTTP 状态码
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		BadRequest(c, err.Error())
	case IsNotFound(err):
		NotFound(c, notFoundMessage(err))
	case errors.Is(err, ErrGenerationFailed):
		logger.Log.Error("Generation failed", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusBadGateway, ErrGenerationFailed.Error())
	case errors.Is(err, ErrStorageUnavailable):
		logger.Log.Error("Storage unavailable", zap.Error(err))
		Error(c, http.StatusServiceUnavailable, "Database unavailable")
	default:
		LogInternalError(c, err)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, ErrQuizUnavailable):
		return "Quiz questions unavailable"
	case errors.Is(err, ErrQuizNotFound):
		return "Quiz not found"
	case errors.Is(err, ErrArticleNotFound):
		return "Article not found"
	}
	return "Resource not found"
}
