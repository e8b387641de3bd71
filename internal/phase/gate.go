package phase

import (
	"context"
	"log/slog"
)

// DefaultRapportInstruction is the writer instruction forced when a rejected
// or failed transition leaves the conversation in building_rapport.
const DefaultRapportInstruction = "Continue building rapport: ask a thoughtful follow-up question about their project, motivation, or goals. Do not pitch."

// Input is everything the gate needs for one decision. Current is nil for a
// fresh conversation; Confirm is the tri-state approval signal (nil = not yet
// decided).
type Input struct {
	Current     *Phase
	Confirm     *bool
	Suggested   Phase
	Advance     bool
	Instruction string
	Reasoning   string
	// HelpRequested is set when the prospect explicitly asked for help,
	// which grants advance without the discovery checklist.
	HelpRequested bool
}

// Decision is the gate's authoritative outcome for one turn.
type Decision struct {
	Phase            Phase
	ApprovalRequired bool
	Suggested        Phase // set only when ApprovalRequired
	Instruction      string
	Reasoning        string
	ReadyForAsk      bool
}

// Config carries gate policy flags.
type Config struct {
	// AllowHelpRequestBypass lets an explicit prospect help request skip the
	// approval step when advancing to doing_the_ask. Default off.
	AllowHelpRequestBypass bool
}

// Gate is the deterministic state machine layered on top of the analyzer's
// probabilistic judgment. It owns the authoritative phase value: the LLM only
// ever proposes, and the transition rules below decide.
type Gate struct {
	cfg Config
}

func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Decide evaluates the transition table in priority order; first match wins.
func (g *Gate) Decide(ctx context.Context, in Input) Decision {
	current := BuildingRapport
	fresh := in.Current == nil
	if !fresh {
		current = *in.Current
	}

	confirmed := in.Confirm != nil && *in.Confirm
	rejected := in.Confirm != nil && !*in.Confirm

	// 1. Explicit regression out of the terminal phase. Rare, and the only
	// way to leave post_selling.
	if current == PostSelling && in.Suggested == BuildingRapport {
		slog.InfoContext(ctx, "gate: explicit regression from post_selling",
			"suggested", in.Suggested)
		return g.adopt(BuildingRapport, in)
	}

	// 2. Terminal phase is sticky; the analyzer's suggestion is ignored.
	if current == PostSelling {
		return g.adopt(PostSelling, in)
	}

	// 3. Manual override pins doing_the_ask.
	if current == DoingTheAsk && confirmed {
		return g.adopt(DoingTheAsk, in)
	}

	// 4. Escalation after the pitch.
	if current == DoingTheAsk && in.Suggested == PostSelling {
		slog.InfoContext(ctx, "gate: escalating to post_selling")
		return g.adopt(PostSelling, in)
	}

	// 5. Advancing into the ask requires external approval unless the
	// conversation is fresh, already approved, or the bypass policy applies.
	if in.Suggested == DoingTheAsk && current != DoingTheAsk {
		bypass := g.cfg.AllowHelpRequestBypass && in.HelpRequested
		if !fresh && !confirmed && !bypass {
			slog.InfoContext(ctx, "gate: approval required before doing_the_ask",
				"current", current, "advance", in.Advance)
			return Decision{
				Phase:            current,
				ApprovalRequired: true,
				Suggested:        DoingTheAsk,
				Instruction:      in.Instruction,
				Reasoning:        in.Reasoning,
				ReadyForAsk:      current.ReadyForAsk(),
			}
		}
		return g.adopt(DoingTheAsk, in)
	}

	// 6. Rejection pins the caller's phase.
	if rejected {
		d := g.adopt(current, in)
		if d.Phase == BuildingRapport {
			d.Instruction = DefaultRapportInstruction
		}
		return d
	}

	// 7. Default: adopt the analyzer's suggestion.
	if in.Suggested.Valid() {
		return g.adopt(in.Suggested, in)
	}
	return g.adopt(current, in)
}

func (g *Gate) adopt(p Phase, in Input) Decision {
	return Decision{
		Phase:       p,
		Instruction: in.Instruction,
		Reasoning:   in.Reasoning,
		ReadyForAsk: p.ReadyForAsk(),
	}
}
