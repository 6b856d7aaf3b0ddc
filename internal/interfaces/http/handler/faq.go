package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/interfaces/http/response"
)

// maxSearchTopK 单次检索条数上限
const maxSearchTopK = 20

// FAQHandler FAQ 检索处理器
type FAQHandler struct {
	searcher FAQSearcher
}

// NewFAQHandler 创建 FAQ 检索处理器
func NewFAQHandler(searcher FAQSearcher) *FAQHandler {
	return &FAQHandler{searcher: searcher}
}

// SearchRequest 检索请求
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// MatchDTO 一条命中
type MatchDTO struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// Search 检索最相近的问答对
// @Summary FAQ 检索
// @Tags FAQ
// @Accept json
// @Produce json
// @Param body body SearchRequest true "查询"
// @Success 200 {object} response.Response{data=[]MatchDTO}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /faq/search [post]
func (h *FAQHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidParams, "参数错误", err.Error())
		return
	}
	if req.TopK > maxSearchTopK {
		req.TopK = maxSearchTopK
	}

	matches, err := h.searcher.Retrieve(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, MatchDTO{ID: m.ID, Question: m.Question, Answer: m.Answer, Score: m.Score})
	}
	response.Success(c, dtos)
}
