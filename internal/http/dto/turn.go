package dto

import (
	"fmt"

	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/knowledge"
	"prodicity.app/engage/internal/pipeline"
)

type MessageRequest struct {
	Sender      string                    `json:"sender" binding:"required,oneof=you prospect other"`
	Text        string                    `json:"text" binding:"required"`
	Links       []conversation.Link       `json:"links,omitempty"`
	Mentions    []conversation.Mention    `json:"mentions,omitempty"`
	Reactions   []conversation.Reaction   `json:"reactions,omitempty"`
	Attachments []conversation.Attachment `json:"attachments,omitempty"`
}

type GenerateRequest struct {
	ThreadID           string           `json:"thread_id"`
	ProspectName       string           `json:"prospect_name" binding:"required,min=1,max=255"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Messages           []MessageRequest `json:"messages"`
	CurrentPhase       *string          `json:"current_phase" binding:"omitempty,oneof=building_rapport doing_the_ask post_selling"`
	ConfirmPhaseChange *bool            `json:"confirm_phase_change"`
}

// Conversation normalizes the request into the core conversation model.
func (r GenerateRequest) Conversation() (conversation.Conversation, error) {
	title := r.Title
	if title == "" {
		title = fmt.Sprintf("Conversation with %s", r.ProspectName)
	}

	participants := []conversation.Participant{
		{ID: "you", Name: "You", Role: conversation.RoleYou},
		{ID: "prospect", Name: r.ProspectName, Role: conversation.RoleProspect},
	}

	msgs := make([]conversation.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msg, err := conversation.NewMessage(m.Sender, m.Text)
		if err != nil {
			return conversation.Conversation{}, err
		}
		msg.Links = m.Links
		msg.Mentions = m.Mentions
		msg.Reactions = m.Reactions
		msg.Attachments = m.Attachments
		msgs = append(msgs, msg)
	}

	return conversation.New(title, r.Description, participants, msgs)
}

type MessagePreview struct {
	Sender      string `json:"sender"`
	TextPreview string `json:"text_preview"`
}

// InputEcho mirrors back what the caller sent, for extension-side debugging.
type InputEcho struct {
	ThreadID       string           `json:"thread_id"`
	ProspectName   string           `json:"prospect_name"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	MessageCount   int              `json:"message_count"`
	RecentMessages []MessagePreview `json:"recent_messages_preview"`
}

const previewChars = 100

func ToInputEcho(req GenerateRequest) InputEcho {
	echo := InputEcho{
		ThreadID:     req.ThreadID,
		ProspectName: req.ProspectName,
		Title:        req.Title,
		Description:  req.Description,
		MessageCount: len(req.Messages),
	}

	start := 0
	if len(req.Messages) > 3 {
		start = len(req.Messages) - 3
	}
	for _, m := range req.Messages[start:] {
		text := m.Text
		if len(text) > previewChars {
			text = text[:previewChars] + "..."
		}
		echo.RecentMessages = append(echo.RecentMessages, MessagePreview{
			Sender:      m.Sender,
			TextPreview: text,
		})
	}
	return echo
}

type GenerateResponse struct {
	Response         string              `json:"response"`
	Phase            string              `json:"phase"`
	Reasoning        string              `json:"reasoning"`
	ReadyForAsk      bool                `json:"ready_for_ask"`
	Status           string              `json:"status"`
	SuggestedPhase   string              `json:"suggested_phase,omitempty"`
	Instruction      string              `json:"instruction_for_writer"`
	KnowledgeContext []knowledge.Snippet `json:"knowledge_context"`
	Input            InputEcho           `json:"input"`
}

func ToGenerateResponse(req GenerateRequest, res pipeline.TurnResult) GenerateResponse {
	return GenerateResponse{
		Response:         res.Message,
		Phase:            string(res.Phase),
		Reasoning:        res.Reasoning,
		ReadyForAsk:      res.ReadyForAsk,
		Status:           res.Status,
		SuggestedPhase:   string(res.SuggestedPhase),
		Instruction:      res.Instruction,
		KnowledgeContext: res.KnowledgeContext,
		Input:            ToInputEcho(req),
	}
}

type AnalyzeResponse struct {
	Phase          string `json:"phase"`
	ReadyForAsk    bool   `json:"ready_for_ask"`
	Reasoning      string `json:"reasoning"`
	Status         string `json:"status"`
	SuggestedPhase string `json:"suggested_phase,omitempty"`
	Instruction    string `json:"instruction_for_writer"`
}

func ToAnalyzeResponse(res pipeline.TurnResult) AnalyzeResponse {
	return AnalyzeResponse{
		Phase:          string(res.Phase),
		ReadyForAsk:    res.ReadyForAsk,
		Reasoning:      res.Reasoning,
		Status:         res.Status,
		SuggestedPhase: string(res.SuggestedPhase),
		Instruction:    res.Instruction,
	}
}
