package router

import (
	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/handler"
)

func KnowledgeRouter(rg *gin.RouterGroup, h *handler.KnowledgeHandler) {
	rg.GET("/search", h.Search)
	rg.GET("/recent", h.Recent)
	rg.POST("/add", h.RequireAdminAPIKey(), h.Add)
}
