//go:build integration
// +build integration

// 外部依赖的进程内替身：OpenAI 兼容接口与 vosk-server
package framework

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gorilla/websocket"
)

// FakeOpenAI 返回固定回复与固定维度向量的 OpenAI 兼容服务
type FakeOpenAI struct {
	Server      *httptest.Server
	Reply       string
	Dimension   int
	completions atomic.Int32
}

// NewFakeOpenAI 启动替身服务
func NewFakeOpenAI(reply string, dimension int) *FakeOpenAI {
	f := &FakeOpenAI{Reply: reply, Dimension: dimension}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// URL 服务地址
func (f *FakeOpenAI) URL() string {
	return f.Server.URL
}

// Completions 收到的对话补全请求数
func (f *FakeOpenAI) Completions() int {
	return int(f.completions.Load())
}

// Close 关闭服务
func (f *FakeOpenAI) Close() {
	f.Server.Close()
}

func (f *FakeOpenAI) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		f.completions.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": f.Reply},
			}},
		})
	case strings.HasSuffix(r.URL.Path, "/embeddings"):
		vector := make([]float64, f.Dimension)
		for i := range vector {
			vector[i] = 0.1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vector}},
			"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
		})
	default:
		http.NotFound(w, r)
	}
}

// FakeVosk 对任何音频都返回固定文本的 vosk-server 替身
type FakeVosk struct {
	Server *httptest.Server
	Text   string
}

// NewFakeVosk 启动替身服务
func NewFakeVosk(text string) *FakeVosk {
	f := &FakeVosk{Text: text}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// URL websocket 地址
func (f *FakeVosk) URL() string {
	return "ws" + strings.TrimPrefix(f.Server.URL, "http")
}

// Close 关闭服务
func (f *FakeVosk) Close() {
	f.Server.Close()
}

func (f *FakeVosk) serve(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.BinaryMessage {
			_ = conn.WriteJSON(map[string]string{"partial": ""})
			continue
		}
		if strings.Contains(string(data), `"eof"`) {
			_ = conn.WriteJSON(map[string]string{"text": f.Text})
			return
		}
	}
}

// WriteWAV 写入一段静音的 16 位单声道 WAV
func WriteWAV(path string, sampleRate int, seconds float64) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := wav.NewEncoder(out, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, int(float64(sampleRate)*seconds)),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
