package transcribe

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/pyassist/backend/internal/infrastructure/config"
)

// ProvideService 根据配置创建转写服务
func ProvideService(decoder audio.AudioDecoder, recognizers audio.RecognizerFactory, observer Observer, cfg *config.SpeechConfig) *Service {
	s := NewService(decoder, recognizers, cfg.ChunkSeconds)
	s.SetObserver(observer)
	return s
}

// ProviderSet 转写应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideService,
)
