package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// PCMBuffer 单声道 16 位 PCM
type PCMBuffer struct {
	Samples    []int16
	SampleRate int
}

// Bytes 序列化为小端字节流，长度恒为采样数的两倍
func (b PCMBuffer) Bytes() []byte {
	out := make([]byte, len(b.Samples)*2)
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Duration 返回时长（秒）
func (b PCMBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Normalize 多声道取平均转单声道，限幅到 [-1, 1]，乘 32767 后截断为 int16
func Normalize(d Decoded) (PCMBuffer, error) {
	if d.Channels <= 0 {
		return PCMBuffer{}, fmt.Errorf("%w: invalid channel count %d", ErrDecode, d.Channels)
	}
	if d.SampleRate <= 0 {
		return PCMBuffer{}, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, d.SampleRate)
	}
	frames := d.Frames()
	if frames == 0 {
		return PCMBuffer{}, fmt.Errorf("%w: no samples", ErrDecode)
	}

	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		frame := d.Samples[i*d.Channels : (i+1)*d.Channels]
		for _, v := range frame {
			sum += v
		}
		mono := sum / float64(d.Channels)
		if math.IsNaN(mono) {
			mono = 0
		}
		mono = math.Max(-1.0, math.Min(1.0, mono))
		samples[i] = int16(mono * 32767)
	}

	return PCMBuffer{Samples: samples, SampleRate: d.SampleRate}, nil
}

// NormalizeFile 解码文件并归一化
func NormalizeFile(ctx context.Context, decoder AudioDecoder, path string) (PCMBuffer, error) {
	decoded, err := decoder.Read(ctx, path)
	if err != nil {
		return PCMBuffer{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return Normalize(decoded)
}
