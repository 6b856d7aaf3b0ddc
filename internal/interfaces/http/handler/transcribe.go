package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/interfaces/http/response"
)

// TranscribeHandler 音频转写处理器
type TranscribeHandler struct {
	service   Transcriber
	audioDir  string
	maxUpload int64
	logger    *slog.Logger
}

// NewTranscribeHandler 创建转写处理器
func NewTranscribeHandler(service Transcriber, cfg *config.ServerConfig) *TranscribeHandler {
	return &TranscribeHandler{
		service:   service,
		audioDir:  cfg.AudioDir,
		maxUpload: cfg.MaxUploadBytes,
		logger:    log.NewModuleLogger("http", "transcribe"),
	}
}

// TranscribeRequest 按路径转写请求
type TranscribeRequest struct {
	RecordingPath string `json:"recording_path" binding:"required"`
}

// Transcribe 转写服务端可见路径上的音频文件
// @Summary 按路径转写
// @Tags 转写
// @Accept json
// @Produce json
// @Param body body TranscribeRequest true "音频路径"
// @Success 200 {object} response.Response{data=transcribe.Response}
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /transcribe [post]
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidParams, "参数错误", err.Error())
		return
	}

	path, err := config.ResolveAudioPath(h.audioDir, req.RecordingPath)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusForbidden, CodeInvalidParams, "路径不允许", err.Error())
		return
	}

	result, err := h.service.Transcribe(c.Request.Context(), path)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// TranscribeLegacy 旧接口，直接返回 {"text": "..."}
func (h *TranscribeHandler) TranscribeLegacy(c *gin.Context) {
	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	path, err := config.ResolveAudioPath(h.audioDir, req.RecordingPath)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.service.Transcribe(c.Request.Context(), path)
	if err != nil {
		legacyError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Upload 上传音频文件并转写
// @Summary 上传转写
// @Tags 转写
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "WAV 或 MP3 音频"
// @Success 200 {object} response.Response{data=transcribe.Response}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /transcribe/upload [post]
func (h *TranscribeHandler) Upload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.ErrorWithDetail(c, http.StatusRequestEntityTooLarge, CodeInvalidParams, "文件过大",
				fmt.Sprintf("limit is %d bytes", maxErr.Limit))
			return
		}
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidParams, "缺少音频文件", err.Error())
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "pyassist-upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		writeError(c, fmt.Errorf("create temp file: %w", err))
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(c, fmt.Errorf("save upload: %w", err))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(c, fmt.Errorf("save upload: %w", err))
		return
	}

	h.logger.DebugContext(c.Request.Context(), "Audio uploaded",
		"filename", header.Filename,
		"size", header.Size,
	)

	result, err := h.service.Transcribe(c.Request.Context(), tmp.Name())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}
