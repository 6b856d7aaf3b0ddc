package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/interfaces/http/response"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	service ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatRequest 对话请求
type ChatRequest struct {
	ChatHistory []chat.Message `json:"chat_history"`
}

// ChatWithHistory 基于对话历史生成回复
// @Summary 多轮对话
// @Description 最后一条用户消息含文本时走检索增强分支，只有图片时直接对话
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body ChatRequest true "对话历史"
// @Success 200 {object} response.Response{data=rag.ChatResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Failure 504 {object} response.ErrorResponse
// @Router /chat_with_history [post]
func (h *ChatHandler) ChatWithHistory(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidParams, "参数错误", err.Error())
		return
	}

	result, err := h.service.ChatWithHistory(c.Request.Context(), req.ChatHistory)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// ChatWithHistoryLegacy 旧接口，直接返回 {"response": "..."}
func (h *ChatHandler) ChatWithHistoryLegacy(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.service.ChatWithHistory(c.Request.Context(), req.ChatHistory)
	if err != nil {
		legacyError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
