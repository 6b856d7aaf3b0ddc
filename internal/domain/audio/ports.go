package audio

import "context"

// Decoded 解码后的浮点采样，多声道时按帧交错排列
type Decoded struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// Frames 返回帧数（每声道采样数）
func (d Decoded) Frames() int {
	if d.Channels <= 0 {
		return 0
	}
	return len(d.Samples) / d.Channels
}

// AudioDecoder 音频文件解码器
type AudioDecoder interface {
	Read(ctx context.Context, path string) (Decoded, error)
}

// RecognitionResult 识别器最终结果
type RecognitionResult struct {
	Text string `json:"text"`
}

// SpeechRecognizer 流式语音识别器，一个实例只服务一段音频
type SpeechRecognizer interface {
	AcceptChunk(ctx context.Context, chunk []byte) error
	FinalResult(ctx context.Context) (RecognitionResult, error)
	Close() error
}

// RecognizerFactory 按采样率创建识别器实例
type RecognizerFactory interface {
	NewRecognizer(ctx context.Context, sampleRate int) (SpeechRecognizer, error)
}
