package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChatWithHistory_TracksRun(t *testing.T) {
	retriever := new(MockRetriever)
	model := new(MockLanguageModel)
	retriever.On("Retrieve", mock.Anything, "¿Qué es PEP 8?", 3).Return(listMatches(), nil)
	model.On("Complete", mock.Anything, mock.Anything).Return("Una guía de estilo", nil)

	tracker := &fakeTracker{}
	svc := NewChatService(NewOrchestrator(retriever, model, StaticPrompt(testSystemPrompt), OrchestratorConfig{}), tracker, fixedCounter(42))

	history := chat.History{
		{Role: chat.RoleUser, Content: chat.TextContent("Hola")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("Hola, ¿en qué te ayudo?")},
		{Role: chat.RoleUser, Content: chat.TextContent("¿Qué es PEP 8?")},
	}
	resp, err := svc.ChatWithHistory(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, "Una guía de estilo", resp.Response)
	assert.Equal(t, BranchRetrieval, resp.Branch)
	assert.Equal(t, "run-1", resp.RunID)

	require.Len(t, tracker.runs, 1)
	run := tracker.runs[0]
	assert.Equal(t, ChatRunName, run.name)
	assert.Equal(t, RunStatusFinished, run.status)
	assert.Equal(t, "/chat_with_history", run.params["endpoint"])
	assert.Equal(t, len("¿Qué es PEP 8?"), run.params["user_query_len"])
	assert.Equal(t, 3, run.params["chat_history_len"])
	assert.Equal(t, "rag", run.params["branch"])
	assert.Equal(t, 2, run.params["retrieved_matches"])
	assert.Equal(t, 42, run.params["prompt_tokens"])
}

// TestChatWithHistory_EmptyHistory 空历史直接拒绝，不开始运行记录也不调用下游
func TestChatWithHistory_EmptyHistory(t *testing.T) {
	retriever := new(MockRetriever)
	model := new(MockLanguageModel)
	tracker := &fakeTracker{}
	svc := NewChatService(NewOrchestrator(retriever, model, nil, OrchestratorConfig{}), tracker, nil)

	_, err := svc.ChatWithHistory(context.Background(), chat.History{})
	assert.ErrorIs(t, err, chat.ErrInvalidHistory)
	assert.Empty(t, tracker.runs)
	retriever.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything)
	model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestChatWithHistory_FailedRun(t *testing.T) {
	retriever := new(MockRetriever)
	retriever.On("Retrieve", mock.Anything, "hola", 3).Return(nil, errors.New("timeout"))

	tracker := &fakeTracker{}
	svc := NewChatService(NewOrchestrator(retriever, new(MockLanguageModel), nil, OrchestratorConfig{}), tracker, nil)

	_, err := svc.ChatWithHistory(context.Background(), chat.History{{Role: chat.RoleUser, Content: chat.TextContent("hola")}})
	assert.ErrorIs(t, err, chat.ErrRetrieval)
	require.Len(t, tracker.runs, 1)
	assert.Equal(t, RunStatusFailed, tracker.runs[0].status)
}

// TestChatWithHistory_TrackerUnavailable 运行记录失败不影响对话
func TestChatWithHistory_TrackerUnavailable(t *testing.T) {
	model := new(MockLanguageModel)
	model.On("Complete", mock.Anything, mock.Anything).Return("hola", nil)

	svc := NewChatService(
		NewOrchestrator(new(MockRetriever), model, nil, OrchestratorConfig{}),
		&fakeTracker{err: errors.New("disk full")},
		nil,
	)

	resp, err := svc.ChatWithHistory(context.Background(), chat.History{{
		Role:    chat.RoleUser,
		Content: chat.MultiPartContent{chat.ImagePart{URL: pngURL}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "hola", resp.Response)
	assert.Empty(t, resp.RunID)
}

func TestHistoryText(t *testing.T) {
	text := historyText(chat.History{
		{Role: chat.RoleSystem, Content: chat.TextContent("sys")},
		{Role: chat.RoleUser, Content: chat.MultiPartContent{chat.TextPart{Text: "a"}, chat.ImagePart{URL: pngURL}}},
	})
	assert.Equal(t, "sys\na\n", text)
}
