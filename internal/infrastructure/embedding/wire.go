package embedding

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/domain/rag"
)

// ProviderSet Embedding ProviderSet
var ProviderSet = wire.NewSet(
	ProvideClient,
	wire.Bind(new(rag.Embedder), new(*Client)),
)
