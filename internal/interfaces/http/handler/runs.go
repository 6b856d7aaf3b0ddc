package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/infrastructure/storage"
	"github.com/pyassist/backend/internal/interfaces/http/response"
)

// RunHandler 运行记录处理器
type RunHandler struct {
	runs RunReader
}

// NewRunHandler 创建运行记录处理器；未启用跟踪时 runs 为 nil
func NewRunHandler(runs *storage.RunRepository) *RunHandler {
	if runs == nil {
		return &RunHandler{}
	}
	return &RunHandler{runs: runs}
}

// maxPageSize 单页最多返回的运行记录数
const maxPageSize = 200

// List 最近的运行记录，分页
// @Summary 运行记录列表
// @Tags 运行记录
// @Produce json
// @Param page query int false "页码，从 1 开始"
// @Param page_size query int false "每页条数，默认 50，最大 200"
// @Success 200 {object} response.ResponseWithPage{data=[]storage.RunRecord}
// @Failure 503 {object} response.ErrorResponse
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	if h.runs == nil {
		response.Error(c, http.StatusServiceUnavailable, CodeUnavailable, "运行记录未启用")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize <= 0 {
		pageSize = 50
	}
	pageSize = min(pageSize, maxPageSize)

	records, total, err := h.runs.Page(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []*storage.RunRecord{}
	}
	response.SuccessWithPage(c, records, page, pageSize, total)
}

// Get 单条运行记录
// @Summary 运行记录详情
// @Tags 运行记录
// @Produce json
// @Param id path string true "运行 ID"
// @Success 200 {object} response.Response{data=storage.RunRecord}
// @Failure 404 {object} response.ErrorResponse
// @Router /runs/{id} [get]
func (h *RunHandler) Get(c *gin.Context) {
	if h.runs == nil {
		response.Error(c, http.StatusServiceUnavailable, CodeUnavailable, "运行记录未启用")
		return
	}

	record, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		response.Error(c, http.StatusNotFound, CodeNotFound, "运行记录不存在")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, record)
}
