// Package composer turns the gate's decision into outbound message text with
// a single generation call.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"prodicity.app/engage/common/llm"
	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/scripts"
)

// Style selects the length envelope for a generated message.
type Style string

const (
	// StyleShort is the default conversational envelope; output over the
	// ceiling is truncated.
	StyleShort Style = "short"
	// StyleExtended permits several hundred characters so a pitch or CTA
	// instruction can be executed in full. Never truncated.
	StyleExtended Style = "extended"
)

// extendedCeiling is the soft limit for the extended envelope. Exceeding it
// only logs; truncation would corrupt an in-progress pitch.
const extendedCeiling = 600

// Composer generates the outbound message. A generation failure is never
// papered over with a fabricated message: the result is the empty string and
// the caller surfaces it as a retryable failure.
type Composer struct {
	llm         llm.Client
	maxChars    int
	maxTokens   int
	temperature float64
}

func New(client llm.Client, maxChars, maxTokens int, temperature float64) *Composer {
	if maxChars <= 0 {
		maxChars = 200
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &Composer{llm: client, maxChars: maxChars, maxTokens: maxTokens, temperature: temperature}
}

// Compose generates the next outbound message. Returns "" when generation is
// refused (empty conversation, or the last message is ours) or when the
// generation call fails.
func (c *Composer) Compose(ctx context.Context, conv conversation.Conversation, p phase.Phase, instruction string, snippets []knowledge.Snippet) string {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engage.composer"})

	if len(conv.Messages) == 0 {
		slog.InfoContext(ctx, "composer refused: no messages")
		return ""
	}
	if sender, _ := conv.LastSender(); sender == conversation.RoleYou {
		slog.InfoContext(ctx, "composer refused: last message is ours")
		return ""
	}

	style := StyleShort
	if p.ReadyForAsk() {
		style = StyleExtended
	}

	start := time.Now()
	raw, err := c.llm.Complete(ctx, llm.CompleteRequest{
		SystemPrompt: c.systemPrompt(conv, p, instruction, snippets, style),
		Messages:     turns(conv),
		MaxTokens:    c.maxTokens,
		Temperature:  llm.Temp(c.temperature),
	})
	if err != nil {
		slog.ErrorContext(ctx, "message generation failed, returning empty message", "error", err)
		return ""
	}

	msg := c.postProcess(ctx, raw, style)
	slog.InfoContext(ctx, "message composed",
		"style", style,
		"chars", len(msg),
		"latency_ms", time.Since(start).Milliseconds())
	return msg
}

// turns maps the recent window onto chat roles: our messages become assistant
// turns, everything else prospect/user turns.
func turns(conv conversation.Conversation) []llm.Message {
	recent := conv.Recent()
	out := make([]llm.Message, 0, len(recent))
	for _, m := range recent {
		role := "user"
		if m.Sender == conversation.RoleYou {
			role = "assistant"
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}
	return out
}

func (c *Composer) systemPrompt(conv conversation.Conversation, p phase.Phase, instruction string, snippets []knowledge.Snippet, style Style) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly, casual LinkedIn outreach account for Prodicity, ")
	sb.WriteString("a selective fellowship for exceptional high school students. ")
	sb.WriteString(fmt.Sprintf("You are messaging %s.\n\n", conv.ProspectName()))

	sb.WriteString(scripts.PhaseContext(p))
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(scripts.PromptBlocks(p), "\n"))
	sb.WriteString("\n")

	if instruction != "" {
		sb.WriteString("\nDIRECTIVE - your next message must accomplish this:\n")
		sb.WriteString(instruction)
		sb.WriteString("\n")
	}

	if len(snippets) > 0 {
		sb.WriteString("\nReference facts (use when relevant, never dump verbatim):\n")
		for _, s := range snippets {
			sb.WriteString(fmt.Sprintf("- Q: %s\n  A: %s\n", s.Question, s.Snippet))
		}
	}

	sb.WriteString("\nStyle rules:\n")
	sb.WriteString("- Write like a real person DMing: lowercase-friendly, casual, no corporate tone.\n")
	sb.WriteString("- Reply with the message text only. No preamble, no quotes, no sign-off.\n")
	if style == StyleShort {
		sb.WriteString(fmt.Sprintf("- Keep it under %d characters. One or two sentences.\n", c.maxChars))
	} else {
		sb.WriteString("- Long enough to fully execute the directive, but never padded.\n")
	}

	return sb.String()
}

// disallowed matches characters outside the outbound allow-list. URLs and
// prices must survive, so : / $ & @ are allowed alongside basic punctuation.
var disallowed = regexp.MustCompile(`[^\w\s.,!?'"()\-:/$&@]`)

func (c *Composer) postProcess(ctx context.Context, raw string, style Style) string {
	msg := strings.TrimSpace(raw)
	msg = disallowed.ReplaceAllString(msg, "")

	// Models wrap replies in quotes often enough to handle it here.
	for len(msg) >= 2 {
		if (msg[0] == '"' && msg[len(msg)-1] == '"') || (msg[0] == '\'' && msg[len(msg)-1] == '\'') {
			msg = strings.TrimSpace(msg[1 : len(msg)-1])
			continue
		}
		break
	}

	runes := []rune(msg)
	switch style {
	case StyleShort:
		if len(runes) > c.maxChars {
			msg = strings.TrimSpace(string(runes[:c.maxChars-3])) + "..."
			slog.DebugContext(ctx, "message truncated to short envelope", "limit", c.maxChars)
		}
	case StyleExtended:
		if len(runes) > extendedCeiling {
			slog.WarnContext(ctx, "extended message exceeds ceiling, sending untruncated",
				"chars", len(runes), "ceiling", extendedCeiling)
		}
	}
	return msg
}
