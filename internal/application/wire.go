package application

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	rag.ProviderSet,
	transcribe.ProviderSet,
)
