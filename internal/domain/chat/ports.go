package chat

import "context"

// LanguageModel 语言模型，接收完整消息列表返回回复文本
type LanguageModel interface {
	Complete(ctx context.Context, messages History) (string, error)
}
