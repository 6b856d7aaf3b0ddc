package config

import (
	"path/filepath"
	"time"
)

// 提供方
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderQdrant   = "qdrant"
	ProviderPinecone = "pinecone"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Speech    SpeechConfig    `yaml:"speech"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Tracking  TrackingConfig  `yaml:"tracking"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPAddr       string        `yaml:"http_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxUploadBytes 上传音频的大小上限
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// AudioDir 路径转写时允许读取的目录，留空表示不限制
	AudioDir string `yaml:"audio_dir"`
}

// LLMConfig 语言模型配置
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// EmbeddingConfig 向量化配置
type EmbeddingConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	Dimension uint64        `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// IndexConfig 向量索引配置
type IndexConfig struct {
	Provider string `yaml:"provider"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	// APIKey Pinecone 使用
	APIKey      string `yaml:"api_key"`
	Name        string `yaml:"name"`
	Namespace   string `yaml:"namespace"`
	TopK        int    `yaml:"top_k"`
	QuestionKey string `yaml:"question_key"`
	AnswerKey   string `yaml:"answer_key"`
}

// SpeechConfig 语音识别配置（vosk-server websocket）
type SpeechConfig struct {
	URL              string        `yaml:"url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	ChunkSeconds     float64       `yaml:"chunk_seconds"`
}

// PromptConfig 系统提示配置
type PromptConfig struct {
	// Path 系统提示文件，留空使用内置提示
	Path     string `yaml:"path"`
	Watch    bool   `yaml:"watch"`
	Language string `yaml:"language"`
}

// TrackingConfig 运行记录配置
type TrackingConfig struct {
	Enabled bool `yaml:"enabled"`
	// DBPath 留空时使用数据目录下的 runs.db
	DBPath string `yaml:"db_path"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       ":8000",
			RequestTimeout: 120 * time.Second,
			MaxUploadBytes: 25 << 20,
		},
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Model:    "gpt-4o",
			Timeout:  60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			Timeout:   30 * time.Second,
		},
		Index: IndexConfig{
			Provider:    ProviderQdrant,
			Host:        "localhost",
			Port:        6334,
			Name:        "dense-index",
			Namespace:   "example",
			TopK:        3,
			QuestionKey: "pregunta",
			AnswerKey:   "respuesta",
		},
		Speech: SpeechConfig{
			URL:              "ws://localhost:2700",
			HandshakeTimeout: 10 * time.Second,
			ChunkSeconds:     0.25,
		},
		Prompt: PromptConfig{
			Path:     filepath.Join("prompts", "system_prompt.txt"),
			Watch:    true,
			Language: "es",
		},
		Tracking: TrackingConfig{
			Enabled: true,
		},
	}
}

// TrackingDBPath 运行记录数据库路径
func (c *TrackingConfig) TrackingDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(DataDir(), "runs.db")
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewLLMConfig 创建语言模型配置
func NewLLMConfig(cfg *Config) *LLMConfig {
	return &cfg.LLM
}

// NewEmbeddingConfig 创建向量化配置
func NewEmbeddingConfig(cfg *Config) *EmbeddingConfig {
	return &cfg.Embedding
}

// NewIndexConfig 创建索引配置
func NewIndexConfig(cfg *Config) *IndexConfig {
	return &cfg.Index
}

// NewSpeechConfig 创建语音识别配置
func NewSpeechConfig(cfg *Config) *SpeechConfig {
	return &cfg.Speech
}

// NewPromptConfig 创建系统提示配置
func NewPromptConfig(cfg *Config) *PromptConfig {
	return &cfg.Prompt
}

// NewTrackingConfig 创建运行记录配置
func NewTrackingConfig(cfg *Config) *TrackingConfig {
	return &cfg.Tracking
}
