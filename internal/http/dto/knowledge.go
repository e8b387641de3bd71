package dto

import "prodicity.app/engage/internal/knowledge"

type AddKnowledgeRequest struct {
	Question string   `json:"question" binding:"required,min=1"`
	Answer   string   `json:"answer" binding:"required,min=1"`
	Source   string   `json:"source" binding:"omitempty,max=255"`
	Tags     []string `json:"tags"`
}

type AddKnowledgeResponse struct {
	OK       bool               `json:"ok"`
	Document knowledge.Document `json:"document"`
}

type SearchKnowledgeResponse struct {
	Items []knowledge.Snippet `json:"items"`
	Count int                 `json:"count"`
}

type RecentKnowledgeResponse struct {
	Items []knowledge.Document `json:"items"`
	Count int                  `json:"count"`
}
