// Package controller exposes the analysis engine to the HTTP handlers.
package controller

import (
	"net/http"

	"guard-bot/internal/engine"
	"guard-bot/internal/history"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalysisController handles analysis requests over HTTP
type AnalysisController struct {
	engine  *engine.Engine
	history *history.Writer
	logger  *zap.Logger
}

// NewAnalysisController creates a new analysis controller
func NewAnalysisController(eng *engine.Engine, hist *history.Writer, logger *zap.Logger) *AnalysisController {
	return &AnalysisController{
		engine:  eng,
		history: hist,
		logger:  logger,
	}
}

// Analyze runs one analysis call: JSON request in, outcome JSON out.
// Skipped and unavailable outcomes are still 200s; they are valid results,
// not transport errors.
func (c *AnalysisController) Analyze(ctx *gin.Context) {
	var req engine.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("Invalid analysis request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	outcome := c.engine.Analyze(ctx.Request.Context(), req)
	c.history.Log(outcome)

	ctx.JSON(http.StatusOK, outcome)
}
