package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVoskServer 模拟 vosk-server：第 uttAt 块后返回一句完整结果，eof 时返回 final
type fakeVoskServer struct {
	uttAt int
	final string

	mu         sync.Mutex
	sampleRate int
	chunkSizes []int
	gotEOF     bool
}

func (s *fakeVoskServer) handler(t *testing.T) http.Handler {
	upgrader := websocket.Upgrader{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.mu.Lock()
			switch kind {
			case websocket.TextMessage:
				var msg map[string]json.RawMessage
				_ = json.Unmarshal(data, &msg)
				if raw, ok := msg["config"]; ok {
					var cfg struct {
						SampleRate int `json:"sample_rate"`
					}
					_ = json.Unmarshal(raw, &cfg)
					s.sampleRate = cfg.SampleRate
					s.mu.Unlock()
					continue
				}
				if _, ok := msg["eof"]; ok {
					s.gotEOF = true
					s.mu.Unlock()
					_ = conn.WriteJSON(map[string]string{"text": s.final})
					continue
				}
				s.mu.Unlock()
			case websocket.BinaryMessage:
				s.chunkSizes = append(s.chunkSizes, len(data))
				n := len(s.chunkSizes)
				s.mu.Unlock()
				if n == s.uttAt {
					_ = conn.WriteJSON(map[string]string{"text": "hola"})
				} else {
					_ = conn.WriteJSON(map[string]string{"partial": ""})
				}
			default:
				s.mu.Unlock()
			}
		}
	})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestVoskRecognizer_Protocol(t *testing.T) {
	fake := &fakeVoskServer{uttAt: 2, final: " mundo "}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	factory := NewVoskFactory(wsURL(srv), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := factory.NewRecognizer(ctx, 16000)
	require.NoError(t, err)

	for _, size := range []int{8000, 8000, 100} {
		require.NoError(t, rec.AcceptChunk(ctx, make([]byte, size)))
	}
	result, err := rec.FinalResult(ctx)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	assert.Equal(t, "hola mundo", result.Text)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 16000, fake.sampleRate)
	assert.Equal(t, []int{8000, 8000, 100}, fake.chunkSizes)
	assert.True(t, fake.gotEOF)
}

func TestVoskRecognizer_Silence(t *testing.T) {
	fake := &fakeVoskServer{final: ""}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	rec, err := NewVoskFactory(wsURL(srv), time.Second).NewRecognizer(context.Background(), 8000)
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.AcceptChunk(context.Background(), make([]byte, 4000)))
	result, err := rec.FinalResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
}

func TestVoskFactory_Errors(t *testing.T) {
	_, err := NewVoskFactory("ws://127.0.0.1:1", 200*time.Millisecond).NewRecognizer(context.Background(), 16000)
	assert.Error(t, err)

	_, err = NewVoskFactory("ws://127.0.0.1:1", time.Second).NewRecognizer(context.Background(), 0)
	assert.Error(t, err)
}

func TestVoskRecognizer_MalformedResult(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		}
	}))
	defer srv.Close()

	rec, err := NewVoskFactory(wsURL(srv), time.Second).NewRecognizer(context.Background(), 16000)
	require.NoError(t, err)
	defer rec.Close()

	assert.Error(t, rec.AcceptChunk(context.Background(), make([]byte, 10)))
}
