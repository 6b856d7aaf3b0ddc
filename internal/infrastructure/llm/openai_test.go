package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pngURL = "data:image/png;base64,iVBORw0KGgo="

func newChatServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if captured != nil {
			assert.NoError(t, json.Unmarshal(raw, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Usa una lista por comprensión."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
}`

func TestOpenAIClient_Complete(t *testing.T) {
	var req map[string]any
	srv := newChatServer(t, http.StatusOK, completionBody, &req)

	client, err := NewOpenAIClient(srv.URL+"/v1", "test-key", "gpt-4o", 5*time.Second)
	require.NoError(t, err)

	history := chat.History{
		{Role: chat.RoleSystem, Content: chat.TextContent("Eres un experto en Python.")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("Hola")},
		{Role: chat.RoleUser, Content: chat.MultiPartContent{
			chat.TextPart{Text: "¿Qué hace este código?"},
			chat.ImagePart{URL: pngURL},
		}},
	}

	text, err := client.Complete(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "Usa una lista por comprensión.", text)

	assert.Equal(t, "gpt-4o", req["model"])
	messages := req["messages"].([]any)
	require.Len(t, messages, 3)

	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, "Eres un experto en Python.", system["content"])

	user := messages[2].(map[string]any)
	assert.Equal(t, "user", user["role"])
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	assert.Equal(t, "¿Qué hace este código?", parts[0].(map[string]any)["text"])
	image := parts[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, pngURL, image["image_url"].(map[string]any)["url"])
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":0,"model":"gpt-4o","choices":[]}`, nil)

	client, err := NewOpenAIClient(srv.URL+"/v1", "test-key", "", time.Second)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), chat.History{{Role: chat.RoleUser, Content: chat.TextContent("hola")}})
	assert.Error(t, err)
}

func TestOpenAIClient_HTTPError(t *testing.T) {
	srv := newChatServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, nil)

	client, err := NewOpenAIClient(srv.URL+"/v1", "test-key", "gpt-4o", time.Second)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), chat.History{{Role: chat.RoleUser, Content: chat.TextContent("hola")}})
	assert.Error(t, err)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", " ", "gpt-4o", time.Second)
	assert.Error(t, err)
}

func TestFlattenText(t *testing.T) {
	assert.Equal(t, "a\nb", flattenText(chat.MultiPartContent{
		chat.TextPart{Text: "a"}, chat.ImagePart{URL: pngURL}, chat.TextPart{Text: "b"},
	}))
	assert.Equal(t, "x", flattenText(chat.TextContent("x")))
	assert.Equal(t, "", flattenText(nil))
}
