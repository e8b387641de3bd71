// Package pipeline sequences one conversation turn: analyze, gate, retrieve,
// compose. The pipeline holds no conversation state; the caller re-supplies
// the current phase and the approval signal on every turn.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/internal/analyzer"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/phase"
)

const (
	StatusOK               = "ok"
	StatusApprovalRequired = "approval_required"
)

// StartOutreachInstruction is the fixed directive for a conversation with no
// messages yet. No external capability is consulted for it.
const StartOutreachInstruction = "Send the initial outreach message: introduce yourself casually and ask what projects or ideas they are working on outside of school."

// TurnResult is the unified outcome of one pipeline turn.
type TurnResult struct {
	Phase            phase.Phase         `json:"phase"`
	ReadyForAsk      bool                `json:"ready_for_ask"`
	Instruction      string              `json:"instruction_for_writer"`
	Reasoning        string              `json:"reasoning"`
	Status           string              `json:"status"`
	SuggestedPhase   phase.Phase         `json:"suggested_phase,omitempty"`
	KnowledgeContext []knowledge.Snippet `json:"knowledge_context"`
	Message          string              `json:"message"`
}

// Analyzer produces the strategic judgment for a turn.
type Analyzer interface {
	Analyze(ctx context.Context, conv conversation.Conversation, current *phase.Phase) analyzer.Result
}

// Retriever fetches knowledge context. Best-effort by contract.
type Retriever interface {
	Retrieve(ctx context.Context, conv conversation.Conversation, p phase.Phase) []knowledge.Snippet
}

// Composer generates the outbound message text.
type Composer interface {
	Compose(ctx context.Context, conv conversation.Conversation, p phase.Phase, instruction string, snippets []knowledge.Snippet) string
}

type Pipeline struct {
	analyzer Analyzer
	gate     *phase.Gate
	know     Retriever
	composer Composer
}

func New(a Analyzer, g *phase.Gate, k Retriever, c Composer) *Pipeline {
	return &Pipeline{analyzer: a, gate: g, know: k, composer: c}
}

// RunTurn executes one synchronous conversation turn. current is nil for a
// fresh conversation; confirm is the tri-state approval signal.
func (p *Pipeline) RunTurn(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (TurnResult, error) {
	return p.run(ctx, conv, current, confirm, true)
}

// Analyze runs the turn up to the gate decision without retrieving knowledge
// or generating a message.
func (p *Pipeline) Analyze(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (TurnResult, error) {
	return p.run(ctx, conv, current, confirm, false)
}

func (p *Pipeline) run(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool, generate bool) (TurnResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engage.pipeline",
		Prospect:  logger.Ptr(conv.ProspectName()),
	})

	if current != nil && !current.Valid() {
		return TurnResult{}, fmt.Errorf("%w: unknown current phase %q", conversation.ErrValidation, *current)
	}

	// A conversation with no messages needs no analysis: the first move is
	// always the scripted outreach opener.
	if len(conv.Messages) == 0 {
		slog.InfoContext(ctx, "empty conversation, bootstrapping outreach")
		return TurnResult{
			Phase:       phase.BuildingRapport,
			ReadyForAsk: false,
			Instruction: StartOutreachInstruction,
			Reasoning:   "No messages yet; begin with the initial outreach.",
			Status:      StatusOK,
		}, nil
	}

	judgment := p.analyzer.Analyze(ctx, conv, current)

	decision := p.gate.Decide(ctx, phase.Input{
		Current:       current,
		Confirm:       confirm,
		Suggested:     judgment.SuggestedPhase,
		Advance:       judgment.Advance,
		Instruction:   judgment.Instruction,
		Reasoning:     judgment.Reasoning,
		HelpRequested: analyzer.DetectHelpRequest(conv),
	})

	if decision.ApprovalRequired {
		slog.InfoContext(ctx, "turn paused pending approval",
			"current_phase", decision.Phase,
			"suggested_phase", decision.Suggested)
		return TurnResult{
			Phase:          decision.Phase,
			ReadyForAsk:    decision.ReadyForAsk,
			Instruction:    decision.Instruction,
			Reasoning:      decision.Reasoning,
			Status:         StatusApprovalRequired,
			SuggestedPhase: decision.Suggested,
		}, nil
	}

	if !generate {
		return TurnResult{
			Phase:       decision.Phase,
			ReadyForAsk: decision.ReadyForAsk,
			Instruction: decision.Instruction,
			Reasoning:   decision.Reasoning,
			Status:      StatusOK,
		}, nil
	}

	var snippets []knowledge.Snippet
	if p.know != nil {
		snippets = p.know.Retrieve(ctx, conv, decision.Phase)
	}

	msg := p.composer.Compose(ctx, conv, decision.Phase, decision.Instruction, snippets)

	slog.InfoContext(ctx, "turn completed",
		"phase", decision.Phase,
		"ready_for_ask", decision.ReadyForAsk,
		"message_generated", msg != "")

	return TurnResult{
		Phase:            decision.Phase,
		ReadyForAsk:      decision.ReadyForAsk,
		Instruction:      decision.Instruction,
		Reasoning:        decision.Reasoning,
		Status:           StatusOK,
		KnowledgeContext: snippets,
		Message:          msg,
	}, nil
}
