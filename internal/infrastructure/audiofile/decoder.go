package audiofile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// wavFormatFloat WAVE_FORMAT_IEEE_FLOAT
const wavFormatFloat = 3

// ErrUnsupportedFormat 无法识别的容器格式
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder 按文件头识别 WAV 或 MP3 并解码为浮点采样
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder 创建解码器
func NewDecoder() *Decoder {
	return &Decoder{logger: log.NewModuleLogger("audiofile", "decoder")}
}

// ProvideDecoder wire provider
func ProvideDecoder() audio.AudioDecoder {
	return NewDecoder()
}

// Read 读取整个文件
func (d *Decoder) Read(ctx context.Context, path string) (audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Decoded{}, err
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return audio.Decoded{}, fmt.Errorf("read header: %w", err)
	}
	header = header[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return audio.Decoded{}, err
	}

	var decoded audio.Decoded
	switch {
	case isWAV(header):
		decoded, err = readWAV(f)
	case isMP3(header):
		decoded, err = readMP3(ctx, f)
	default:
		return audio.Decoded{}, ErrUnsupportedFormat
	}
	if err != nil {
		return audio.Decoded{}, err
	}

	d.logger.DebugContext(ctx, "Audio decoded",
		"path", path,
		"sample_rate", decoded.SampleRate,
		"channels", decoded.Channels,
		"frames", decoded.Frames(),
	)
	return decoded, nil
}

func isWAV(h []byte) bool {
	return len(h) >= 12 && bytes.Equal(h[0:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WAVE"))
}

func isMP3(h []byte) bool {
	if len(h) >= 3 && bytes.Equal(h[0:3], []byte("ID3")) {
		return true
	}
	// 帧同步字 11 位全 1
	return len(h) >= 2 && h[0] == 0xFF && h[1]&0xE0 == 0xE0
}

func readWAV(r io.ReadSeeker) (audio.Decoded, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Decoded{}, fmt.Errorf("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("read pcm: %w", err)
	}

	depth := int(dec.BitDepth)
	float := dec.WavAudioFormat == wavFormatFloat
	if float && depth != 32 {
		return audio.Decoded{}, fmt.Errorf("unsupported float bit depth %d", depth)
	}

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = intToFloat(v, depth, float)
	}
	return audio.Decoded{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// intToFloat 整数采样映射到 [-1, 1)；8 位为无符号，32 位浮点按位还原
func intToFloat(v, depth int, float bool) float64 {
	switch {
	case float:
		return float64(math.Float32frombits(uint32(int32(v))))
	case depth == 8:
		return float64(v-128) / 128
	default:
		return float64(v) / float64(int64(1)<<(depth-1))
	}
}

func readMP3(ctx context.Context, r io.Reader) (audio.Decoded, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("open mp3: %w", err)
	}

	// 解码输出固定为 16 位小端双声道
	const channels = 2
	var samples []float64
	if n := dec.Length(); n > 0 {
		samples = make([]float64, 0, n/2)
	}
	chunk := make([]byte, 16*1024)
	for {
		if err := ctx.Err(); err != nil {
			return audio.Decoded{}, err
		}
		n, err := dec.Read(chunk)
		for i := 0; i+1 < n; i += 2 {
			v := int16(binary.LittleEndian.Uint16(chunk[i:]))
			samples = append(samples, float64(v)/32768)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Decoded{}, fmt.Errorf("decode mp3: %w", err)
		}
	}

	return audio.Decoded{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
	}, nil
}

var _ audio.AudioDecoder = (*Decoder)(nil)
