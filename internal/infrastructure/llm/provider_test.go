package llm

import (
	"log/slog"
	"testing"
	"time"

	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return log.NewModuleLogger("llm", "test")
}

func TestProvideLanguageModel(t *testing.T) {
	model, err := ProvideLanguageModel(&config.LLMConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, model)

	_, err = ProvideLanguageModel(&config.LLMConfig{Provider: "llama"})
	assert.Error(t, err)

	_, err = ProvideLanguageModel(&config.LLMConfig{Provider: "openai"})
	assert.Error(t, err, "missing key")
}
