package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAudioPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		dir     string
		path    string
		want    string
		wantErr bool
	}{
		{"unrestricted", "", "/any/clip.wav", "/any/clip.wav", false},
		{"relative inside", dir, "clip.wav", filepath.Join(dir, "clip.wav"), false},
		{"absolute inside", dir, filepath.Join(dir, "sub", "a.mp3"), filepath.Join(dir, "sub", "a.mp3"), false},
		{"parent escape", dir, "../secret.wav", "", true},
		{"absolute outside", dir, "/etc/passwd", "", true},
		{"dotdot prefix name stays inside", dir, "..clip.wav", filepath.Join(dir, "..clip.wav"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAudioPath(tt.dir, tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrPathNotAllowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
