package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubGeminiModels struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (s *stubGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	return s.resp, s.err
}

func geminiText(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func newTestGemini(models geminiModels) *GeminiClient {
	return &GeminiClient{
		models:  models,
		model:   "gemini-2.0-flash",
		timeout: time.Second,
		logger:  testLogger(),
	}
}

func TestGeminiClient_Complete(t *testing.T) {
	stub := &stubGeminiModels{resp: geminiText(
		&genai.Part{Text: "pensando...", Thought: true},
		&genai.Part{Text: "Es un diccionario."},
	)}
	client := newTestGemini(stub)

	history := chat.History{
		{Role: chat.RoleSystem, Content: chat.TextContent("Eres un experto en Python.")},
		{Role: chat.RoleUser, Content: chat.TextContent("Hola")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("¡Hola!")},
		{Role: chat.RoleUser, Content: chat.MultiPartContent{
			chat.TextPart{Text: "¿Qué es esto?"},
			chat.ImagePart{URL: pngURL},
		}},
	}

	text, err := client.Complete(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "Es un diccionario.", text)

	assert.Equal(t, "gemini-2.0-flash", stub.gotModel)
	require.NotNil(t, stub.gotConfig.SystemInstruction)
	assert.Equal(t, "Eres un experto en Python.", stub.gotConfig.SystemInstruction.Parts[0].Text)

	require.Len(t, stub.gotContents, 3)
	assert.Equal(t, genai.RoleModel, stub.gotContents[1].Role)

	last := stub.gotContents[2]
	assert.Equal(t, genai.RoleUser, last.Role)
	require.Len(t, last.Parts, 2)
	assert.Equal(t, "¿Qué es esto?", last.Parts[0].Text)
	require.NotNil(t, last.Parts[1].InlineData)
	assert.Equal(t, "image/png", last.Parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, last.Parts[1].InlineData.Data)
}

func TestGeminiClient_Errors(t *testing.T) {
	history := chat.History{{Role: chat.RoleUser, Content: chat.TextContent("hola")}}

	_, err := newTestGemini(&stubGeminiModels{err: errors.New("quota")}).Complete(context.Background(), history)
	assert.Error(t, err)

	_, err = newTestGemini(&stubGeminiModels{resp: &genai.GenerateContentResponse{}}).Complete(context.Background(), history)
	assert.Error(t, err)

	_, err = newTestGemini(&stubGeminiModels{}).Complete(context.Background(), chat.History{
		{Role: chat.RoleSystem, Content: chat.TextContent("solo sistema")},
	})
	assert.Error(t, err)
}

func TestImagePart_RemoteURL(t *testing.T) {
	part, err := imagePart(chat.ImagePart{URL: "https://example.com/a.jpg"})
	require.NoError(t, err)
	require.NotNil(t, part.FileData)
	assert.Equal(t, "https://example.com/a.jpg", part.FileData.FileURI)
}

func TestImagePart_BadBase64(t *testing.T) {
	_, err := imagePart(chat.ImagePart{URL: "data:image/png;base64,***"})
	assert.Error(t, err)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", time.Second)
	assert.Error(t, err)
}
