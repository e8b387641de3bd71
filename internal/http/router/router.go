package router

import (
	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/handler"
	"prodicity.app/engage/internal/knowledge"
)

type RouterConfig struct {
	AdminAPIKey  string
	IsProduction bool
}

type Dependencies struct {
	Pipeline TurnRunner
	Threads  handler.ThreadStateStore
	Know     knowledge.Store
}

// TurnRunner re-exported so callers wire the pipeline without importing the
// handler package directly.
type TurnRunner = handler.TurnRunner

func SetupRoutes(router *gin.Engine, deps Dependencies, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "engage"})
	})

	turnHandler := handler.NewTurnHandler(deps.Pipeline, deps.Threads)
	TurnRouter(router, turnHandler)

	knowledgeHandler := handler.NewKnowledgeHandler(deps.Know, cfg.AdminAPIKey)
	KnowledgeRouter(router.Group("/kb"), knowledgeHandler)

	scriptsHandler := handler.NewScriptsHandler()
	ScriptsRouter(router.Group("/scripts"), scriptsHandler)
}
