package router

import (
	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/handler"
)

func TurnRouter(r *gin.Engine, h *handler.TurnHandler) {
	r.POST("/generate", h.Generate)
	r.POST("/analyze", h.Analyze)
}
