package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prodicity.app/engage/common/llm"
	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/phase"
)

// Result is the analyzer's strategic judgment for one turn. Produced fresh
// each call and never persisted here; the caller persists the resolved phase
// and feeds it back as current_phase on the next turn.
type Result struct {
	Reasoning      string
	Advance        bool
	Instruction    string
	SuggestedPhase phase.Phase
	// Degraded is set when the judgment is the local fallback after a
	// capability failure rather than a real model response.
	Degraded bool
}

type judgmentResponse struct {
	Reasoning            string `json:"reasoning" jsonschema:"required" jsonschema_description:"Strategic reasoning about the conversation state"`
	Advance              bool   `json:"advance" jsonschema:"required" jsonschema_description:"Whether the conversation should advance to the next phase"`
	InstructionForWriter string `json:"instruction_for_writer" jsonschema:"required" jsonschema_description:"Concrete directive for the message writer, exactly one call to action"`
	SuggestedPhase       string `json:"suggested_phase" jsonschema:"required,enum=building_rapport,enum=doing_the_ask,enum=post_selling" jsonschema_description:"Proposed sales phase"`
}

var judgmentSchema = llm.GenerateSchema[judgmentResponse]()

// Analyzer asks the reasoning capability for a single-shot strategic judgment.
// It never propagates capability failures: a failed call degrades to a
// conservative no-advance judgment so the turn still completes.
type Analyzer struct {
	llm         llm.Client
	maxTokens   int
	temperature float64
}

func New(client llm.Client, maxTokens int, temperature float64) *Analyzer {
	if maxTokens == 0 {
		maxTokens = 600
	}
	return &Analyzer{llm: client, maxTokens: maxTokens, temperature: temperature}
}

// Analyze runs one structured reasoning call over the recent conversation
// window. current is nil for a fresh conversation.
func (a *Analyzer) Analyze(ctx context.Context, conv conversation.Conversation, current *phase.Phase) Result {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "engage.analyzer",
	})

	var response judgmentResponse
	start := time.Now()

	_, err := a.llm.Chat(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   a.buildPrompt(conv, current),
		SchemaName:   "strategic_judgment",
		Schema:       judgmentSchema,
		MaxTokens:    a.maxTokens,
		Temperature:  llm.Temp(a.temperature),
	}, &response)
	if err != nil {
		slog.WarnContext(ctx, "analyzer degraded to fallback judgment", "error", err)
		return fallback(err)
	}

	suggested, perr := phase.Parse(response.SuggestedPhase)
	if perr != nil {
		slog.WarnContext(ctx, "analyzer returned unknown phase, degrading",
			"suggested_phase", response.SuggestedPhase)
		return fallback(perr)
	}

	slog.InfoContext(ctx, "conversation analyzed",
		"suggested_phase", suggested,
		"advance", response.Advance,
		"latency_ms", time.Since(start).Milliseconds())

	return Result{
		Reasoning:      response.Reasoning,
		Advance:        response.Advance,
		Instruction:    response.InstructionForWriter,
		SuggestedPhase: suggested,
	}
}

func fallback(err error) Result {
	return Result{
		Reasoning:      fmt.Sprintf("Analysis unavailable (%v); holding phase conservatively.", err),
		Advance:        false,
		Instruction:    phase.DefaultRapportInstruction,
		SuggestedPhase: phase.BuildingRapport,
		Degraded:       true,
	}
}

func (a *Analyzer) buildPrompt(conv conversation.Conversation, current *phase.Phase) string {
	var sb strings.Builder

	sb.WriteString("Analyze this sales conversation and decide the phase, whether to advance, and what the writer should do next.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", conv.Title))
	if conv.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", conv.Description))
	}
	sb.WriteString(fmt.Sprintf("Total messages: %d (Prospect: %d)\n", len(conv.Messages), len(conv.ProspectMessages())))
	if current != nil {
		sb.WriteString(fmt.Sprintf("Current phase: %s\n", *current))
	} else {
		sb.WriteString("Current phase: none (fresh conversation)\n")
	}
	sb.WriteString("\nRecent conversation:\n")
	sb.WriteString(conv.Transcript())
	sb.WriteString("\n\nBe accurate and conservative.")

	return sb.String()
}

// helpRequestKeywords are the phrasings treated as an explicit prospect
// request for help, which grants advance without the discovery checklist.
var helpRequestKeywords = []string{
	"can you help",
	"could you help",
	"help me",
	"how do i apply",
	"how can i join",
	"can i join",
	"sign me up",
	"where do i apply",
	"send me the link",
	"what is the program",
	"tell me more about the program",
}

// DetectHelpRequest reports whether the most recent prospect message contains
// an explicit ask for help. Pure function; used by the gate's bypass policy.
func DetectHelpRequest(conv conversation.Conversation) bool {
	prospect := conv.ProspectMessages()
	if len(prospect) == 0 {
		return false
	}
	last := strings.ToLower(prospect[len(prospect)-1].Text)
	for _, kw := range helpRequestKeywords {
		if strings.Contains(last, kw) {
			return true
		}
	}
	return false
}

const systemPrompt = `You are a sales strategist for Prodicity, a selective fellowship for high school students. You judge the state of an outreach conversation between "You" (the outreach account) and a "Prospect" (a student), then direct the copywriter.

Return a single structured judgment with:
- reasoning: short strategic read of the conversation
- advance: whether the conversation is ready to move forward a phase
- instruction_for_writer: one concrete directive for the next outbound message
- suggested_phase: building_rapport, doing_the_ask, or post_selling

Phase rules:
- building_rapport: early relationship building, discovery questions, no selling.
- doing_the_ask: introduce Prodicity and guide toward the application.
- post_selling: the pitch has been made; follow-ups, objections, logistics. This phase is one-way - never suggest going back to doing_the_ask from post_selling. Suggesting building_rapport from post_selling is allowed only as a rare, explicit reset.

Advance rules:
- Only set advance=true out of building_rapport when you have evidence of all three discovery facts about the prospect - their project, their pain or motivation, and their vision - OR the prospect has explicitly asked for help.
- If the current phase is doing_the_ask, instruction_for_writer must be a pitch instruction. Never tell the writer to go back to rapport questions.
- instruction_for_writer must contain exactly one call to action. Never combine "ask discovery questions" and "pitch" in the same instruction.`
