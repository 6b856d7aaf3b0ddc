package vector

import (
	"fmt"
	"strings"

	"github.com/google/wire"
	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/config"
)

// Index 可查询、可初始化、可关闭的向量索引
type Index interface {
	rag.VectorIndex
	rag.IndexProvisioner
	Close() error
}

// ProvideIndex 按配置选择向量索引实现，返回的清理函数关闭连接
func ProvideIndex(cfg *config.IndexConfig) (Index, func(), error) {
	var (
		index Index
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderPinecone:
		index, err = NewPineconeIndex(cfg.APIKey, cfg.Host, cfg.Namespace)
	case config.ProviderQdrant, "":
		index, err = NewQdrantIndex(cfg.Host, cfg.Port, cfg.APIKey, cfg.Name)
	default:
		err = fmt.Errorf("unsupported index provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, nil, err
	}
	return index, func() { _ = index.Close() }, nil
}

// ProvideVectorIndex 查询接口
func ProvideVectorIndex(index Index) rag.VectorIndex {
	return index
}

// ProviderSet 向量索引 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideIndex,
	ProvideVectorIndex,
)
