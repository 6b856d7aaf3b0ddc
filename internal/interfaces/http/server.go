package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/infrastructure/metrics"
	"github.com/pyassist/backend/internal/interfaces/http/handler"
	"github.com/pyassist/backend/internal/interfaces/http/middleware"
	"github.com/pyassist/backend/internal/interfaces/mcp"

	_ "github.com/pyassist/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpAddr string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.ServerConfig,
	chatHandler *handler.ChatHandler,
	transcribeHandler *handler.TranscribeHandler,
	faqHandler *handler.FAQHandler,
	runHandler *handler.RunHandler,
	m *metrics.Metrics,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	logger := log.NewModuleLogger("http", "server")

	var recorder middleware.HTTPRecorder
	if m != nil {
		recorder = m
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger, recorder),
	)

	// 业务接口：请求超时与请求体编码修正
	business := []gin.HandlerFunc{
		middleware.Timeout(cfg.RequestTimeout),
		middleware.EnsureUTF8Body(),
	}

	api := router.Group("/api/v1", business...)
	{
		api.POST("/chat_with_history", chatHandler.ChatWithHistory)
		api.POST("/transcribe", transcribeHandler.Transcribe)
		api.POST("/transcribe/upload", transcribeHandler.Upload)
		api.POST("/faq/search", faqHandler.Search)

		api.GET("/runs", runHandler.List)
		api.GET("/runs/:id", runHandler.Get)
	}

	// 与原前端兼容的无前缀接口
	legacy := router.Group("", business...)
	{
		legacy.POST("/chat_with_history", chatHandler.ChatWithHistoryLegacy)
		legacy.POST("/transcribe", transcribeHandler.TranscribeLegacy)
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpAddr: cfg.HTTPAddr,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler 返回路由，供测试直接调用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器，阻塞直到关闭
func (s *HTTPServer) Start() error {
	return s.serve(nil)
}

// Serve 在已占用的 listener 上启动服务器，阻塞直到关闭
func (s *HTTPServer) Serve(l net.Listener) error {
	return s.serve(l)
}

func (s *HTTPServer) serve(l net.Listener) error {
	var err error
	if l != nil {
		s.logger.Info("HTTP server starting", "addr", l.Addr().String())
		err = s.server.Serve(l)
	} else {
		s.logger.Info("HTTP server starting", "addr", s.httpAddr)
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
