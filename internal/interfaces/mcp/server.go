package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/interfaces/http/handler"
)

// ServerVersion MCP 服务版本
const ServerVersion = "0.1.0"

// MCPServer MCP 服务器
type MCPServer struct {
	server      *mcp.Server
	handler     http.Handler
	chat        handler.ChatService
	transcriber handler.Transcriber
	searcher    handler.FAQSearcher
	audioDir    string
	logger      *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(
	chat handler.ChatService,
	transcriber handler.Transcriber,
	searcher handler.FAQSearcher,
	cfg *config.ServerConfig,
) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pyassist",
			Version: ServerVersion,
		},
		nil, // 使用默认能力
	)

	s := &MCPServer{
		server:      server,
		chat:        chat,
		transcriber: transcriber,
		searcher:    searcher,
		audioDir:    cfg.AudioDir,
		logger:      log.NewModuleLogger("mcp", "server"),
	}

	// 注册工具：chat_with_history
	mcp.AddTool(server, &mcp.Tool{
		Name: "chat_with_history",
		Description: `Answer a Python programming question given the conversation so far.
The last message must come from the user. When it contains text, the answer is grounded on the closest FAQ entries; image-only turns are answered directly.

Parameters:
- chat_history (array, required): Messages in order. Each message has role (system|user|assistant) and content (string).

Returns: response text, branch (rag|direct) and run id when tracking is enabled.`,
	}, s.chatWithHistoryTool)

	// 注册工具：transcribe_audio
	mcp.AddTool(server, &mcp.Tool{
		Name: "transcribe_audio",
		Description: `Transcribe a WAV or MP3 recording (Spanish speech) into text.

Parameters:
- recording_path (string, required): Path of the audio file on the server.

Returns: transcript text, possibly empty for silence.`,
	}, s.transcribeAudioTool)

	// 注册工具：search_faq
	mcp.AddTool(server, &mcp.Tool{
		Name: "search_faq",
		Description: `Search the Python FAQ knowledge base for the question/answer pairs closest to a query.

Parameters:
- query (string, required): Natural language question.
- top_k (int, optional): Number of results, defaults to 3, max 10.

Returns: matches ordered by descending similarity.`,
	}, s.searchFAQTool)

	// 创建 SSE Handler，每个请求返回同一个服务器实例
	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)

	return s
}

// Server 底层 MCP 服务器
func (s *MCPServer) Server() *mcp.Server {
	return s.server
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
