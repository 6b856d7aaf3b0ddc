package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/wire"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/config"
)

// ProvideLanguageModel 按配置选择语言模型实现
func ProvideLanguageModel(cfg *config.LLMConfig) (chat.LanguageModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		return NewGeminiClient(context.Background(), cfg.APIKey, cfg.Model, cfg.Timeout)
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// ProviderSet 语言模型 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideLanguageModel,
)
