package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	derr "github.com/notify/scheduler/internal/domain/error"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandlingMiddleware 统一错误处理中间件
func ErrorHandlingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "An internal error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		logger.Error("request error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))

		var de derr.DomainError
		switch {
		case errors.As(err, &de):
			c.JSON(statusOf(de.Code()), ErrorResponse{Code: de.Code(), Message: de.Message(), Details: err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    derr.CodeNotFound,
				Message: "Resource not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    "INTERNAL_ERROR",
				Message: "An error occurred while processing your request",
				Details: err.Error(),
			})
		}
	}
}

func statusOf(code string) int {
	switch code {
	case derr.CodeValidation:
		return http.StatusBadRequest
	case derr.CodeNotFound:
		return http.StatusNotFound
	case derr.CodeState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
