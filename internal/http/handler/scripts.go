package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prodicity.app/engage/internal/http/dto"
	"prodicity.app/engage/internal/phase"
	"prodicity.app/engage/internal/scripts"
)

// ScriptsHandler serves the static script library to the extension UI.
type ScriptsHandler struct{}

func NewScriptsHandler() *ScriptsHandler {
	return &ScriptsHandler{}
}

func (h *ScriptsHandler) InitialMessage(c *gin.Context) {
	c.JSON(http.StatusOK, dto.InitialMessageResponse{Template: scripts.InitialMessageTemplate()})
}

func (h *ScriptsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToScriptsList())
}

func (h *ScriptsHandler) Get(c *gin.Context) {
	p, err := phase.Parse(c.Param("phase"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, ok := scripts.Lookup(p, c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "script not found"})
		return
	}

	c.JSON(http.StatusOK, dto.ToScriptResponse(p, tpl))
}
