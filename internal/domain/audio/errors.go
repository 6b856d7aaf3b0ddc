package audio

import "errors"

// 音频相关错误
var (
	// ErrDecode 音频文件无法读取、损坏或没有采样
	ErrDecode = errors.New("audio decode failed")
	// ErrRecognition 识别器拒绝 PCM 数据
	ErrRecognition = errors.New("speech recognition failed")
	// ErrRecognizerUnavailable 识别服务无法连接
	ErrRecognizerUnavailable = errors.New("speech recognizer unavailable")
)
