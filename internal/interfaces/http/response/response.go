package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// CodeOK 成功时的业务码
const CodeOK = 0

// Response /api/v1 统一响应结构；request_id 与 X-Request-ID 响应头一致
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// ErrorResponse 错误响应，detail 为底层错误信息
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// PageInfo 分页信息，字段名与 page / page_size 查询参数一致
type PageInfo struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// NewPageInfo 计算总页数；没有记录时为 0 页
func NewPageInfo(page, pageSize, total int) PageInfo {
	info := PageInfo{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		info.Pages = (total + pageSize - 1) / pageSize
	}
	return info
}

// ResponseWithPage 带分页的响应
type ResponseWithPage struct {
	Response
	Page *PageInfo `json:"page,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:      CodeOK,
		Message:   "success",
		RequestID: requestID(c),
		Data:      data,
	})
}

// SuccessWithPage 成功响应（带分页）
func SuccessWithPage(c *gin.Context, data any, page, pageSize, total int) {
	info := NewPageInfo(page, pageSize, total)
	c.JSON(http.StatusOK, ResponseWithPage{
		Response: Response{
			Code:      CodeOK,
			Message:   "success",
			RequestID: requestID(c),
			Data:      data,
		},
		Page: &info,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, message string) {
	ErrorWithDetail(c, httpCode, errCode, message, "")
}

// ErrorWithDetail 带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, errCode int, message, detail string) {
	c.JSON(httpCode, ErrorResponse{
		Code:      errCode,
		Message:   message,
		RequestID: requestID(c),
		Detail:    detail,
	})
}

func requestID(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	return log.RequestIDFromContext(c.Request.Context())
}
