package audio

// DefaultChunkSeconds 每次送入识别器的音频时长
const DefaultChunkSeconds = 0.25

// ChunkStep 计算分块字节数：floor(sampleRate * seconds) * 2，恒为偶数，不会拆开一个采样
func ChunkStep(sampleRate int, seconds float64) int {
	if seconds <= 0 {
		seconds = DefaultChunkSeconds
	}
	step := int(float64(sampleRate)*seconds) * 2
	if step < 2 {
		step = 2
	}
	return step
}

// Chunks 将 PCM 字节流切成连续不重叠的块，最后一块可能更短；块与原缓冲区共享内存
func Chunks(pcm []byte, step int) [][]byte {
	if len(pcm) == 0 || step <= 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(pcm)+step-1)/step)
	for i := 0; i < len(pcm); i += step {
		end := i + step
		if end > len(pcm) {
			end = len(pcm)
		}
		chunks = append(chunks, pcm[i:end:end])
	}
	return chunks
}
