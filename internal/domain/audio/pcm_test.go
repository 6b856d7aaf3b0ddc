package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("mono passthrough", func(t *testing.T) {
		pcm, err := Normalize(Decoded{Samples: []float64{0, 0.5, -0.5, 1}, SampleRate: 16000, Channels: 1})
		require.NoError(t, err)
		assert.Equal(t, []int16{0, 16383, -16383, 32767}, pcm.Samples)
		assert.Equal(t, 16000, pcm.SampleRate)
	})

	t.Run("stereo averaged", func(t *testing.T) {
		pcm, err := Normalize(Decoded{Samples: []float64{1, 0, -1, -1, 0.25, 0.75}, SampleRate: 44100, Channels: 2})
		require.NoError(t, err)
		assert.Equal(t, []int16{16383, -32767, 16383}, pcm.Samples)
		assert.Equal(t, 44100, pcm.SampleRate)
	})

	t.Run("overshoot clamped", func(t *testing.T) {
		pcm, err := Normalize(Decoded{Samples: []float64{1.7, -3.2}, SampleRate: 8000, Channels: 1})
		require.NoError(t, err)
		assert.Equal(t, []int16{32767, -32767}, pcm.Samples)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Normalize(Decoded{SampleRate: 16000, Channels: 1})
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := Normalize(Decoded{Samples: []float64{0}, SampleRate: 16000, Channels: 0})
		assert.ErrorIs(t, err, ErrDecode)
		_, err = Normalize(Decoded{Samples: []float64{0}, SampleRate: 0, Channels: 1})
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestPCMBuffer_Bytes(t *testing.T) {
	buf := PCMBuffer{Samples: []int16{1, -2, 32767}, SampleRate: 16000}
	b := buf.Bytes()
	require.Len(t, b, 6)
	assert.Equal(t, int16(1), int16(binary.LittleEndian.Uint16(b[0:])))
	assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(b[2:])))
	assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(b[4:])))
}

type stubDecoder struct {
	decoded Decoded
	err     error
}

func (s stubDecoder) Read(ctx context.Context, path string) (Decoded, error) {
	return s.decoded, s.err
}

func TestNormalizeFile(t *testing.T) {
	_, err := NormalizeFile(context.Background(), stubDecoder{err: errors.New("no such file")}, "/tmp/missing.wav")
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "missing.wav")

	pcm, err := NormalizeFile(context.Background(), stubDecoder{decoded: Decoded{Samples: []float64{0.5}, SampleRate: 16000, Channels: 1}}, "ok.wav")
	require.NoError(t, err)
	assert.Len(t, pcm.Bytes(), 2)
}
