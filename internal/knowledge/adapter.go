package knowledge

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/phase"
)

// topicKeywords maps a canonical topic to the phrasings that signal it in a
// prospect message. First the topics, then capitalized tokens as entities.
var topicKeywords = map[string][]string{
	"pricing": {
		"price", "pricing", "cost", "fee", "expensive", "afford",
		"scholarship", "financial aid", "how much", "pay", "tuition",
	},
	"program-mechanics": {
		"mentor", "mentorship", "curriculum", "program", "fellowship",
		"how does it work", "what do you do", "time commitment", "schedule",
		"workload", "meetings", "sessions",
	},
	"application-logistics": {
		"apply", "application", "deadline", "interview", "when does",
		"requirements", "eligib", "accept", "admission", "selective",
	},
}

// ClassifyTopics extracts the topics and named entities mentioned in the last
// prospect message. Pure function; drives the retrieval query.
func ClassifyTopics(conv conversation.Conversation) (topics []string, entities []string) {
	prospect := conv.ProspectMessages()
	if len(prospect) == 0 {
		return nil, nil
	}
	text := prospect[len(prospect)-1].Text
	lower := strings.ToLower(text)

	for _, topic := range []string{"pricing", "program-mechanics", "application-logistics"} {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}

	seen := map[string]bool{}
	for i, tok := range strings.Fields(text) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		// Sentence-initial capitals are not entities.
		if i == 0 || len(tok) < 2 || seen[tok] {
			continue
		}
		if unicode.IsUpper(rune(tok[0])) && tok != "I" {
			entities = append(entities, tok)
			seen[tok] = true
		}
	}

	return topics, entities
}

// BuildQuery turns classified topics into a search query, falling back to a
// phase-appropriate default when the message surfaced nothing.
func BuildQuery(topics, entities []string, p phase.Phase) string {
	parts := append(append([]string{}, topics...), entities...)
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	switch p {
	case phase.DoingTheAsk, phase.PostSelling:
		return "fellowship application pricing mentorship"
	default:
		return "student projects fellowship"
	}
}

// Retriever fetches knowledge context for message composition. Retrieval is
// strictly best-effort: any failure yields empty results and the turn
// continues without knowledge context.
type Retriever struct {
	store Store
	topK  int
}

func NewRetriever(store Store, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{store: store, topK: topK}
}

// Retrieve returns up to topK snippets relevant to the latest prospect
// message. Never returns an error.
func (r *Retriever) Retrieve(ctx context.Context, conv conversation.Conversation, p phase.Phase) []Snippet {
	if r == nil || r.store == nil {
		return nil
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engage.knowledge"})

	topics, entities := ClassifyTopics(conv)
	query := BuildQuery(topics, entities, p)

	snippets, err := r.store.Search(ctx, query, r.topK)
	if err != nil {
		slog.WarnContext(ctx, "knowledge retrieval failed, continuing without context",
			"query", query, "error", err)
		return nil
	}

	slog.DebugContext(ctx, "knowledge retrieved",
		"query", query, "topics", topics, "hits", len(snippets))
	return snippets
}
