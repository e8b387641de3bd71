package handler_test

import (
	"context"
	"errors"

	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/pipeline"
	"prodicity.app/engage/internal/threadstate"
)

// mockPipeline implements handler.TurnRunner.
type mockPipeline struct {
	runTurnFn   func(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error)
	analyzeFn   func(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error)
	runCount    int
	analyzeRuns int
	lastCurrent *phase.Phase
	lastConfirm *bool
}

func (m *mockPipeline) RunTurn(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error) {
	m.runCount++
	m.lastCurrent = current
	m.lastConfirm = confirm
	if m.runTurnFn != nil {
		return m.runTurnFn(ctx, conv, current, confirm)
	}
	return pipeline.TurnResult{}, errors.New("mock not configured")
}

func (m *mockPipeline) Analyze(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error) {
	m.analyzeRuns++
	m.lastCurrent = current
	m.lastConfirm = confirm
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, conv, current, confirm)
	}
	return pipeline.TurnResult{}, errors.New("mock not configured")
}

// mockThreads implements handler.ThreadStateStore.
type mockThreads struct {
	getFn    func(ctx context.Context, threadID string) (threadstate.State, error)
	setFn    func(ctx context.Context, threadID string, p phase.Phase) (threadstate.State, error)
	setCount int
	lastSet  phase.Phase
}

func (m *mockThreads) Get(ctx context.Context, threadID string) (threadstate.State, error) {
	if m.getFn != nil {
		return m.getFn(ctx, threadID)
	}
	return threadstate.State{}, threadstate.ErrNotFound
}

func (m *mockThreads) Set(ctx context.Context, threadID string, p phase.Phase) (threadstate.State, error) {
	m.setCount++
	m.lastSet = p
	if m.setFn != nil {
		return m.setFn(ctx, threadID, p)
	}
	return threadstate.State{ThreadID: threadID, Phase: p}, nil
}

// mockKnowledgeStore implements knowledge.Store.
type mockKnowledgeStore struct {
	addFn    func(ctx context.Context, question, answer, source string, tags []string) (knowledge.Document, error)
	searchFn func(ctx context.Context, query string, limit int) ([]knowledge.Snippet, error)
	recentFn func(ctx context.Context, limit int) ([]knowledge.Document, error)
}

func (m *mockKnowledgeStore) EnsureCollection(context.Context) error { return nil }

func (m *mockKnowledgeStore) Add(ctx context.Context, question, answer, source string, tags []string) (knowledge.Document, error) {
	if m.addFn != nil {
		return m.addFn(ctx, question, answer, source, tags)
	}
	return knowledge.Document{}, errors.New("mock not configured")
}

func (m *mockKnowledgeStore) Search(ctx context.Context, query string, limit int) ([]knowledge.Snippet, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockKnowledgeStore) ListRecent(ctx context.Context, limit int) ([]knowledge.Document, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}
