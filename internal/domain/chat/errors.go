package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyassist/backend/internal/domain/audio"
)

// 对话相关错误
var (
	// ErrInvalidHistory 对话历史不合法（为空或最后一条不是用户消息）
	ErrInvalidHistory = errors.New("invalid history")
	// ErrRetrieval 向量化或向量检索失败
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration 语言模型调用失败或没有返回可用内容
	ErrGeneration = errors.New("generation failed")
)

// Wrap 将底层错误归入某个错误类别，errors.Is 对类别和底层错误都成立
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// invalidHistory 构造带原因的 ErrInvalidHistory
func invalidHistory(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidHistory, reason)
}

// ErrorKind 错误类别
type ErrorKind string

const (
	KindUnknown        ErrorKind = "unknown"
	KindInvalidHistory ErrorKind = "invalid_history"
	KindDecode         ErrorKind = "decode"
	KindRecognition    ErrorKind = "recognition"
	KindRecognizerDown ErrorKind = "recognizer_unavailable"
	KindRetrieval      ErrorKind = "retrieval"
	KindGeneration     ErrorKind = "generation"
	KindTimeout        ErrorKind = "timeout"
)

// KindOf 返回错误所属类别；超时优先于其他类别判断
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrInvalidHistory):
		return KindInvalidHistory
	case errors.Is(err, audio.ErrDecode):
		return KindDecode
	case errors.Is(err, audio.ErrRecognizerUnavailable):
		return KindRecognizerDown
	case errors.Is(err, audio.ErrRecognition):
		return KindRecognition
	case errors.Is(err, ErrRetrieval):
		return KindRetrieval
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	default:
		return KindUnknown
	}
}
