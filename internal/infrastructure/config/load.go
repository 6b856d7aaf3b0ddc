package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 环境变量
const (
	EnvConfigPath   = "PYASSIST_CONFIG"
	EnvHTTPAddr     = "PYASSIST_HTTP_ADDR"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_BASE_URL"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvLLMProvider  = "LLM_PROVIDER"
	EnvLLMModel     = "LLM_MODEL"
	EnvIndexType    = "INDEX_PROVIDER"
	EnvQdrantHost   = "QDRANT_HOST"
	EnvQdrantPort   = "QDRANT_PORT"
	EnvPineconeKey  = "PINECONE_API_KEY"
	EnvPineconeHost = "PINECONE_HOST"
	EnvVoskURL      = "VOSK_URL"
	EnvPromptPath   = "SYSTEM_PROMPT_PATH"
)

// Load 加载配置：默认值 → YAML 文件（可选）→ 环境变量
// path 为空时读取 PYASSIST_CONFIG；文件不存在不是错误
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.HTTPAddr, EnvHTTPAddr)
	setString(&c.LLM.Provider, EnvLLMProvider)
	setString(&c.LLM.Model, EnvLLMModel)
	setString(&c.LLM.BaseURL, EnvOpenAIBase)
	setString(&c.Embedding.BaseURL, EnvOpenAIBase)
	setString(&c.Embedding.APIKey, EnvOpenAIKey)
	setString(&c.Index.Provider, EnvIndexType)
	setString(&c.Index.Host, EnvQdrantHost)
	setInt(&c.Index.Port, EnvQdrantPort)
	setString(&c.Speech.URL, EnvVoskURL)
	setString(&c.Prompt.Path, EnvPromptPath)

	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGemini:
		setString(&c.LLM.APIKey, EnvGeminiKey)
	default:
		setString(&c.LLM.APIKey, EnvOpenAIKey)
	}
	if strings.EqualFold(c.Index.Provider, ProviderPinecone) {
		setString(&c.Index.APIKey, EnvPineconeKey)
		setString(&c.Index.Host, EnvPineconeHost)
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr is required"))
	}

	switch strings.ToLower(c.LLM.Provider) {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}

	if c.Embedding.Model == "" {
		errs = append(errs, errors.New("embedding.model is required"))
	}
	if c.Embedding.Dimension == 0 {
		errs = append(errs, errors.New("embedding.dimension must be positive"))
	}

	switch strings.ToLower(c.Index.Provider) {
	case ProviderQdrant:
		if c.Index.Port <= 0 {
			errs = append(errs, errors.New("index.port must be positive"))
		}
	case ProviderPinecone:
	default:
		errs = append(errs, fmt.Errorf("index.provider %q is not supported", c.Index.Provider))
	}
	if c.Index.Host == "" {
		errs = append(errs, errors.New("index.host is required"))
	}
	if c.Index.TopK <= 0 {
		errs = append(errs, errors.New("index.top_k must be positive"))
	}

	if c.Speech.URL == "" {
		errs = append(errs, errors.New("speech.url is required"))
	}
	if c.Speech.ChunkSeconds <= 0 {
		errs = append(errs, errors.New("speech.chunk_seconds must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
