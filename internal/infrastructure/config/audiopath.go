package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathNotAllowed 路径不在允许的音频目录内
var ErrPathNotAllowed = errors.New("recording path is outside the audio directory")

// ResolveAudioPath audioDir 为空时原样返回；否则相对路径基于 audioDir 解析，且结果不得越出 audioDir
func ResolveAudioPath(audioDir, p string) (string, error) {
	if audioDir == "" {
		return p, nil
	}

	base, err := filepath.Abs(audioDir)
	if err != nil {
		return "", err
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathNotAllowed
	}
	return target, nil
}
