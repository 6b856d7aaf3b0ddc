package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/interfaces/http/response"
)

// 业务错误码
const (
	CodeInvalidParams  = 100001
	CodeInvalidHistory = 200001
	CodeDecode         = 300001
	CodeRecognition    = 300002
	CodeRecognizerDown = 300003
	CodeRetrieval      = 400001
	CodeGeneration     = 400002
	CodeTimeout        = 500001
	CodeNotFound       = 600001
	CodeUnavailable    = 700001
	CodeInternal       = 900001
)

// statusFor 错误类别映射到 HTTP 状态码与业务错误码
func statusFor(err error) (int, int) {
	switch chat.KindOf(err) {
	case chat.KindInvalidHistory:
		return http.StatusBadRequest, CodeInvalidHistory
	case chat.KindDecode:
		return http.StatusBadRequest, CodeDecode
	case chat.KindRecognition:
		return http.StatusUnprocessableEntity, CodeRecognition
	case chat.KindRecognizerDown:
		return http.StatusServiceUnavailable, CodeRecognizerDown
	case chat.KindRetrieval:
		return http.StatusBadGateway, CodeRetrieval
	case chat.KindGeneration:
		return http.StatusBadGateway, CodeGeneration
	case chat.KindTimeout:
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// messageFor 对外错误信息
func messageFor(err error) string {
	switch chat.KindOf(err) {
	case chat.KindInvalidHistory:
		return "对话历史不合法"
	case chat.KindDecode:
		return "音频无法解码"
	case chat.KindRecognition:
		return "语音识别失败"
	case chat.KindRecognizerDown:
		return "语音识别服务不可用"
	case chat.KindRetrieval:
		return "上下文检索失败"
	case chat.KindGeneration:
		return "回复生成失败"
	case chat.KindTimeout:
		return "请求超时"
	default:
		return "内部错误"
	}
}

// writeError 统一错误响应
func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	_ = c.Error(err)
	response.ErrorWithDetail(c, status, code, messageFor(err), err.Error())
}

// legacyError 兼容旧接口的错误格式：{"detail": "..."}
func legacyError(c *gin.Context, err error) {
	status, _ := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"detail": err.Error()})
}
