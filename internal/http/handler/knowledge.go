package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/dto"
	"prodicity.app/engage/internal/knowledge"
)

type KnowledgeHandler struct {
	store       knowledge.Store
	adminAPIKey string
}

func NewKnowledgeHandler(store knowledge.Store, adminAPIKey string) *KnowledgeHandler {
	return &KnowledgeHandler{store: store, adminAPIKey: adminAPIKey}
}

// unavailable guards routes when the knowledge base is not configured.
func (h *KnowledgeHandler) unavailable(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge base not configured"})
		return true
	}
	return false
}

func (h *KnowledgeHandler) Add(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	ctx := c.Request.Context()

	var req dto.AddKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	doc, err := h.store.Add(ctx, req.Question, req.Answer, source, req.Tags)
	if err != nil {
		slog.ErrorContext(ctx, "failed to add knowledge entry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add knowledge entry"})
		return
	}

	c.JSON(http.StatusCreated, dto.AddKnowledgeResponse{OK: true, Document: doc})
}

func (h *KnowledgeHandler) Search(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	ctx := c.Request.Context()

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	k := 3
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'k' must be a positive integer"})
			return
		}
		k = parsed
	}

	items, err := h.store.Search(ctx, query, k)
	if err != nil {
		slog.ErrorContext(ctx, "knowledge search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "knowledge search failed"})
		return
	}
	if items == nil {
		items = []knowledge.Snippet{}
	}

	c.JSON(http.StatusOK, dto.SearchKnowledgeResponse{Items: items, Count: len(items)})
}

func (h *KnowledgeHandler) Recent(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	ctx := c.Request.Context()

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameter 'limit' must be a positive integer"})
			return
		}
		limit = parsed
	}

	items, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list knowledge entries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list knowledge entries"})
		return
	}
	if items == nil {
		items = []knowledge.Document{}
	}

	c.JSON(http.StatusOK, dto.RecentKnowledgeResponse{Items: items, Count: len(items)})
}

// RequireAdminAPIKey guards mutating knowledge base routes.
func (h *KnowledgeHandler) RequireAdminAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.adminAPIKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin API not configured"})
			c.Abort()
			return
		}

		apiKey := c.GetHeader("X-Admin-API-Key")
		if apiKey == "" {
			apiKey = c.GetHeader("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}

		if apiKey != h.adminAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
