package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks malformed conversation input. It always propagates to
// the immediate caller; nothing downstream recovers from it.
var ErrValidation = errors.New("invalid conversation input")

// Role identifies who authored a message or holds a participant seat.
type Role string

const (
	RoleYou      Role = "you"
	RoleProspect Role = "prospect"
	RoleOther    Role = "other"
)

// ParseRole validates a sender/role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleYou, RoleProspect, RoleOther:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unrecognized role %q", ErrValidation, s)
	}
}

// Participant is a conversation member. Immutable once constructed.
type Participant struct {
	ID   string
	Name string
	Role Role
}

type Link struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type Mention struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url,omitempty"`
}

type Reaction struct {
	Type      string `json:"type"`
	By        string `json:"by"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Attachment struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// Message is one conversation turn. Ordering is positional: the caller that
// assembled the message list owns chronological order, so no timestamps are
// modeled here.
type Message struct {
	Sender      Role
	Text        string
	Links       []Link
	Mentions    []Mention
	Reactions   []Reaction
	Attachments []Attachment
}

// NewMessage validates and constructs a Message.
func NewMessage(sender string, text string) (Message, error) {
	role, err := ParseRole(sender)
	if err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, fmt.Errorf("%w: message text cannot be empty", ErrValidation)
	}
	return Message{Sender: role, Text: text}, nil
}

// Conversation is a normalized thread. Rebuilt per request from caller-supplied
// history; the pipeline holds no conversation state between calls.
type Conversation struct {
	Title        string
	Description  string
	Participants []Participant
	Messages     []Message
}

// New validates and constructs a Conversation.
func New(title, description string, participants []Participant, messages []Message) (Conversation, error) {
	if strings.TrimSpace(title) == "" {
		return Conversation{}, fmt.Errorf("%w: conversation title cannot be empty", ErrValidation)
	}
	for i, m := range messages {
		if strings.TrimSpace(m.Text) == "" {
			return Conversation{}, fmt.Errorf("%w: message %d has empty text", ErrValidation, i)
		}
		if _, err := ParseRole(string(m.Sender)); err != nil {
			return Conversation{}, fmt.Errorf("%w: message %d has invalid sender %q", ErrValidation, i, m.Sender)
		}
	}
	return Conversation{
		Title:        title,
		Description:  description,
		Participants: participants,
		Messages:     messages,
	}, nil
}

// recentWindow is the fixed context window used for prompting.
const recentWindow = 10

// Recent returns the most recent messages used as LLM context, at most the
// fixed window size.
func (c Conversation) Recent() []Message {
	if len(c.Messages) <= recentWindow {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-recentWindow:]
}

// ProspectMessages returns the prospect-authored subsequence.
func (c Conversation) ProspectMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Sender == RoleProspect {
			out = append(out, m)
		}
	}
	return out
}

// YourMessages returns the subsequence authored by the outreach account.
func (c Conversation) YourMessages() []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Sender == RoleYou {
			out = append(out, m)
		}
	}
	return out
}

// Prospect returns the prospect participant, if one was supplied.
func (c Conversation) Prospect() (Participant, bool) {
	for _, p := range c.Participants {
		if p.Role == RoleProspect {
			return p, true
		}
	}
	return Participant{}, false
}

// ProspectName returns the prospect's display name, defaulting to "Prospect".
func (c Conversation) ProspectName() string {
	if p, ok := c.Prospect(); ok && p.Name != "" {
		return p.Name
	}
	return "Prospect"
}

// LastSender returns the sender of the most recent message. The second return
// is false for an empty conversation.
func (c Conversation) LastSender() (Role, bool) {
	if len(c.Messages) == 0 {
		return "", false
	}
	return c.Messages[len(c.Messages)-1].Sender, true
}

// Transcript renders the recent window as "<Role>: <text>" lines for prompts.
func (c Conversation) Transcript() string {
	recent := c.Recent()
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		who := "Prospect"
		if m.Sender == RoleYou {
			who = "You"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, m.Text))
	}
	return strings.Join(lines, "\n")
}
