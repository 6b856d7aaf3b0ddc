package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// DefaultEncoding GPT-4 系列模型使用的编码
const DefaultEncoding = "cl100k_base"

// 在包初始化时设置离线加载器，避免运行时下载编码文件
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Estimator 使用 tiktoken 估算 Token 数量
type Estimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	estimatorInstance *Estimator
	estimatorOnce     sync.Once
	estimatorErr      error
)

// GetEstimator 获取 Estimator 单例，编码文件只加载一次
func GetEstimator() (*Estimator, error) {
	estimatorOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			estimatorErr = err
			return
		}
		estimatorInstance = &Estimator{encoding: enc}
	})

	if estimatorErr != nil {
		return nil, estimatorErr
	}
	return estimatorInstance, nil
}

// ProvideTokenCounter 编码加载失败时返回 nil，运行记录中将不含 prompt_tokens
func ProvideTokenCounter() domainRAG.TokenCounter {
	est, err := GetEstimator()
	if err != nil {
		log.NewModuleLogger("tokenizer", "estimator").Warn("Token estimator unavailable",
			"encoding", DefaultEncoding,
			"error", err,
		)
		return nil
	}
	return est
}

var _ domainRAG.TokenCounter = (*Estimator)(nil)

// CountTokens 计算文本的 Token 数量
func (e *Estimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.encoding.Encode(text, nil, nil))
}
