package phase

import "fmt"

// Phase is the sales conversation stage. The authoritative current phase is
// supplied by the caller on each invocation and the gate returns the next
// authoritative phase; nothing is stored between calls.
type Phase string

const (
	BuildingRapport Phase = "building_rapport"
	DoingTheAsk     Phase = "doing_the_ask"
	PostSelling     Phase = "post_selling"
)

// Parse validates a phase string.
func Parse(s string) (Phase, error) {
	switch Phase(s) {
	case BuildingRapport, DoingTheAsk, PostSelling:
		return Phase(s), nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

// Valid reports whether p is a recognized phase.
func (p Phase) Valid() bool {
	_, err := Parse(string(p))
	return err == nil
}

// ReadyForAsk reports whether the phase permits pitching: the gatekeeping
// preconditions have been satisfied once a conversation reaches doing_the_ask,
// and post_selling implies the pitch already happened.
func (p Phase) ReadyForAsk() bool {
	return p == DoingTheAsk || p == PostSelling
}
