package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// voskMessage vosk-server 的响应，每个请求帧对应一条
type voskMessage struct {
	Partial *string `json:"partial,omitempty"`
	Text    *string `json:"text,omitempty"`
}

type voskConfig struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

// VoskFactory 为每段音频建立一条到 vosk-server 的 websocket 连接
type VoskFactory struct {
	url              string
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

// NewVoskFactory 创建识别器工厂
func NewVoskFactory(url string, handshakeTimeout time.Duration) *VoskFactory {
	return &VoskFactory{
		url:              url,
		handshakeTimeout: handshakeTimeout,
		logger:           log.NewModuleLogger("speech", "vosk"),
	}
}

// ProvideRecognizerFactory 根据配置创建工厂
func ProvideRecognizerFactory(cfg *config.SpeechConfig) audio.RecognizerFactory {
	return NewVoskFactory(cfg.URL, cfg.HandshakeTimeout)
}

// NewRecognizer 连接并发送采样率配置帧
func (f *VoskFactory) NewRecognizer(ctx context.Context, sampleRate int) (audio.SpeechRecognizer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: f.handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", f.url, err)
	}

	r := &VoskRecognizer{conn: conn, logger: f.logger}

	var cfg voskConfig
	cfg.Config.SampleRate = sampleRate
	if err := r.writeJSON(ctx, cfg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send config: %w", err)
	}

	f.logger.DebugContext(ctx, "Recognizer connected", "url", f.url, "sample_rate", sampleRate)
	return r, nil
}

// VoskRecognizer 一条连接对应一段音频，不可并发使用
type VoskRecognizer struct {
	conn     *websocket.Conn
	segments []string
	chunks   int
	logger   *slog.Logger
}

// AcceptChunk 发送一块 PCM 并读取服务端对该块的响应
// 服务端判定一句话结束时返回 text，累积到最终结果中
func (r *VoskRecognizer) AcceptChunk(ctx context.Context, chunk []byte) error {
	r.setDeadline(ctx)
	if err := r.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	msg, err := r.read()
	if err != nil {
		return err
	}
	r.chunks++
	if msg.Text != nil {
		r.appendSegment(*msg.Text)
	}
	return nil
}

// FinalResult 发送 eof 并读取最终结果；返回整段音频已完成各句的文本
func (r *VoskRecognizer) FinalResult(ctx context.Context) (audio.RecognitionResult, error) {
	if err := r.writeJSON(ctx, map[string]int{"eof": 1}); err != nil {
		return audio.RecognitionResult{}, fmt.Errorf("write eof: %w", err)
	}
	msg, err := r.read()
	if err != nil {
		return audio.RecognitionResult{}, err
	}
	if msg.Text == nil {
		return audio.RecognitionResult{}, fmt.Errorf("final result has no text field")
	}
	r.appendSegment(*msg.Text)

	text := strings.Join(r.segments, " ")
	r.logger.DebugContext(ctx, "Recognition finished",
		"chunks", r.chunks,
		"segments", len(r.segments),
		"text_len", len(text),
	)
	return audio.RecognitionResult{Text: text}, nil
}

// Close 关闭连接
func (r *VoskRecognizer) Close() error {
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return r.conn.Close()
}

func (r *VoskRecognizer) appendSegment(text string) {
	if text = strings.TrimSpace(text); text != "" {
		r.segments = append(r.segments, text)
	}
}

func (r *VoskRecognizer) writeJSON(ctx context.Context, v any) error {
	r.setDeadline(ctx)
	return r.conn.WriteJSON(v)
}

func (r *VoskRecognizer) read() (voskMessage, error) {
	_, data, err := r.conn.ReadMessage()
	if err != nil {
		return voskMessage{}, fmt.Errorf("read result: %w", err)
	}
	var msg voskMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return voskMessage{}, fmt.Errorf("malformed result %q: %w", data, err)
	}
	return msg, nil
}

// setDeadline 读写超时跟随 context 的截止时间
func (r *VoskRecognizer) setDeadline(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = r.conn.SetReadDeadline(deadline)
	_ = r.conn.SetWriteDeadline(deadline)
}

var (
	_ audio.RecognizerFactory = (*VoskFactory)(nil)
	_ audio.SpeechRecognizer  = (*VoskRecognizer)(nil)
)
