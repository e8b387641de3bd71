package router

import (
	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/handler"
)

func ScriptsRouter(rg *gin.RouterGroup, h *handler.ScriptsHandler) {
	rg.GET("/initial-message", h.InitialMessage)
	rg.GET("/list", h.List)
	rg.GET("/:phase/:id", h.Get)
}
