// Package handler HTTP处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/middleware"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/resolver"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

// Response 通用响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      1,
		Message:   "success",
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

// Error 错误响应，code 与 HTTP 状态码一致
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{
		Code:      httpStatus,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// FromError 按错误类型输出响应
func FromError(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, errors.GetHTTPStatus(err), messageOf(err))
}

// messageOf 只暴露面向用户的信息
func messageOf(err error) string {
	var failure *resolver.Failure
	if errors.As(err, &failure) {
		return failure.UserMessage
	}
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
