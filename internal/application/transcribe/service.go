package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// Response 转写响应，Text 为空表示没有识别到语音
type Response struct {
	Text string `json:"text"`
}

// Observer 转写观测回调
type Observer interface {
	ObserveTranscription(seconds float64, audioSeconds float64, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveTranscription(float64, float64, error) {}

// Service 音频转写：解码归一化 → 分块送入识别器 → 取最终结果
type Service struct {
	decoder      audio.AudioDecoder
	recognizers  audio.RecognizerFactory
	chunkSeconds float64
	observer     Observer
	logger       *slog.Logger
}

// NewService 创建转写服务，识别器通过工厂注入
func NewService(decoder audio.AudioDecoder, recognizers audio.RecognizerFactory, chunkSeconds float64) *Service {
	if chunkSeconds <= 0 {
		chunkSeconds = audio.DefaultChunkSeconds
	}
	return &Service{
		decoder:      decoder,
		recognizers:  recognizers,
		chunkSeconds: chunkSeconds,
		observer:     nopObserver{},
		logger:       log.NewModuleLogger("transcribe", "service"),
	}
}

// SetObserver 设置观测回调
func (s *Service) SetObserver(observer Observer) {
	if observer == nil {
		observer = nopObserver{}
	}
	s.observer = observer
}

// Transcribe 转写音频文件；解码失败返回 ErrDecode，识别失败返回 ErrRecognition，识别服务不可用返回 ErrRecognizerUnavailable
func (s *Service) Transcribe(ctx context.Context, path string) (*Response, error) {
	start := time.Now()

	pcm, err := audio.NormalizeFile(ctx, s.decoder, path)
	if err != nil {
		s.logger.Error("Failed to normalize audio", "path", path, "error", err)
		s.observer.ObserveTranscription(time.Since(start).Seconds(), 0, err)
		return nil, err
	}

	s.logger.Debug("Audio normalized",
		"path", path,
		"sample_rate", pcm.SampleRate,
		"samples", len(pcm.Samples),
	)

	text, err := Recognize(ctx, pcm.Bytes(), pcm.SampleRate, s.recognizers, s.chunkSeconds)
	s.observer.ObserveTranscription(time.Since(start).Seconds(), pcm.Duration(), err)
	if err != nil {
		s.logger.Error("Failed to recognize speech", "path", path, "error", err)
		return nil, err
	}

	s.logger.Info("Transcription completed",
		"audio_seconds", pcm.Duration(),
		"text_len", len(text),
	)

	return &Response{Text: text}, nil
}

// Recognize 无法建立识别连接时返回 ErrRecognizerUnavailable
// 按 floor(sampleRate*chunkSeconds)*2 字节分块送入识别器，返回去除首尾空白的最终文本
func Recognize(ctx context.Context, pcm []byte, sampleRate int, factory audio.RecognizerFactory, chunkSeconds float64) (text string, err error) {
	recognizer, err := factory.NewRecognizer(ctx, sampleRate)
	if err != nil {
		return "", fmt.Errorf("%w: %w", audio.ErrRecognizerUnavailable, err)
	}
	defer func() {
		if cerr := recognizer.Close(); cerr != nil && err == nil {
			err = wrapRecognition(fmt.Errorf("close recognizer: %w", cerr))
		}
	}()

	step := audio.ChunkStep(sampleRate, chunkSeconds)
	for i, chunk := range audio.Chunks(pcm, step) {
		if err := recognizer.AcceptChunk(ctx, chunk); err != nil {
			return "", wrapRecognition(fmt.Errorf("chunk %d: %w", i, err))
		}
	}

	result, err := recognizer.FinalResult(ctx)
	if err != nil {
		return "", wrapRecognition(fmt.Errorf("final result: %w", err))
	}

	return strings.TrimSpace(result.Text), nil
}

func wrapRecognition(err error) error {
	if errors.Is(err, audio.ErrRecognition) {
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrRecognition, err)
}
