package handler

import (
	"errors"
	"net/http"

	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/reward"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// LogicErrorResponse 按业务错误类别映射 HTTP 状态码
func LogicErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, statusFromError(err), err.Error())
}

// statusFromError 错误类别到状态码的映射
func statusFromError(err error) int {
	if errors.Is(err, reward.ErrNothingToClaim) || errors.Is(err, reward.ErrNoWeightHolders) {
		return http.StatusConflict
	}
	switch logic.KindOf(err) {
	case logic.KindValidation:
		return http.StatusBadRequest
	case logic.KindAuthorization:
		return http.StatusForbidden
	case logic.KindState:
		return http.StatusConflict
	case logic.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
