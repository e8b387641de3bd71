package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"prodicity.app/engage/common/logger"
	"prodicity.app/engage/internal/conversation"
	"prodicity.app/engage/internal/http/dto"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/pipeline"
	"prodicity.app/engage/internal/threadstate"
)

// TurnRunner is the pipeline surface the handler depends on.
type TurnRunner interface {
	RunTurn(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error)
	Analyze(ctx context.Context, conv conversation.Conversation, current *phase.Phase, confirm *bool) (pipeline.TurnResult, error)
}

// ThreadStateStore persists the per-thread phase between turns.
type ThreadStateStore interface {
	Get(ctx context.Context, threadID string) (threadstate.State, error)
	Set(ctx context.Context, threadID string, p phase.Phase) (threadstate.State, error)
}

type TurnHandler struct {
	pipeline TurnRunner
	threads  ThreadStateStore
}

// NewTurnHandler wires the pipeline and an optional thread state store.
// threads may be nil; phase persistence is then entirely the caller's job.
func NewTurnHandler(p TurnRunner, threads ThreadStateStore) *TurnHandler {
	return &TurnHandler{pipeline: p, threads: threads}
}

func (h *TurnHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid generate request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := req.Conversation()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: logger.Ptr(req.ThreadID)})

	current := h.resolvePhase(ctx, req)
	res, err := h.pipeline.RunTurn(ctx, conv, current, req.ConfirmPhaseChange)
	if err != nil {
		if errors.Is(err, conversation.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "turn failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run conversation turn"})
		return
	}

	h.persistPhase(ctx, req.ThreadID, res)
	c.JSON(http.StatusOK, dto.ToGenerateResponse(req, res))
}

func (h *TurnHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid analyze request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := req.Conversation()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{ThreadID: logger.Ptr(req.ThreadID)})

	current := h.resolvePhase(ctx, req)
	res, err := h.pipeline.Analyze(ctx, conv, current, req.ConfirmPhaseChange)
	if err != nil {
		if errors.Is(err, conversation.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze conversation"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyzeResponse(res))
}

// resolvePhase prefers the caller-supplied phase, then the thread state store.
// Returns nil (fresh conversation) when neither knows the thread.
func (h *TurnHandler) resolvePhase(ctx context.Context, req dto.GenerateRequest) *phase.Phase {
	if req.CurrentPhase != nil {
		if p, err := phase.Parse(*req.CurrentPhase); err == nil {
			return &p
		}
		return nil
	}

	if h.threads == nil || req.ThreadID == "" {
		return nil
	}
	st, err := h.threads.Get(ctx, req.ThreadID)
	if err != nil {
		if !errors.Is(err, threadstate.ErrNotFound) {
			slog.WarnContext(ctx, "thread state lookup failed, treating as fresh", "error", err)
		}
		return nil
	}
	return &st.Phase
}

// persistPhase stores the resolved phase after a completed turn. Pending
// approval keeps the stored phase untouched.
func (h *TurnHandler) persistPhase(ctx context.Context, threadID string, res pipeline.TurnResult) {
	if h.threads == nil || threadID == "" || res.Status != pipeline.StatusOK {
		return
	}
	if _, err := h.threads.Set(ctx, threadID, res.Phase); err != nil {
		slog.WarnContext(ctx, "failed to persist thread phase", "error", err)
	}
}
