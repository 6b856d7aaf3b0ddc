package infrastructure

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/infrastructure/audiofile"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/embedding"
	"github.com/pyassist/backend/internal/infrastructure/llm"
	"github.com/pyassist/backend/internal/infrastructure/metrics"
	"github.com/pyassist/backend/internal/infrastructure/prompt"
	"github.com/pyassist/backend/internal/infrastructure/speech"
	"github.com/pyassist/backend/internal/infrastructure/storage"
	"github.com/pyassist/backend/internal/infrastructure/tokenizer"
	"github.com/pyassist/backend/internal/infrastructure/vector"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	llm.ProviderSet,
	embedding.ProviderSet,
	vector.ProviderSet,
	speech.ProviderSet,
	audiofile.ProviderSet,
	storage.ProviderSet,
	tokenizer.ProviderSet,
	prompt.ProviderSet,
	metrics.ProviderSet,
)
