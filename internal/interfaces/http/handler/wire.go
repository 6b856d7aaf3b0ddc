package handler

import (
	"github.com/google/wire"
	appRAG "github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
)

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewChatHandler,
	NewTranscribeHandler,
	NewFAQHandler,
	NewRunHandler,
	wire.Bind(new(ChatService), new(*appRAG.ChatService)),
	wire.Bind(new(Transcriber), new(*transcribe.Service)),
	wire.Bind(new(FAQSearcher), new(*appRAG.Retriever)),
)
