package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lectern-ai/lectern/internal/pkg/errcode"
	"github.com/lectern-ai/lectern/internal/pkg/response"
	"github.com/lectern-ai/lectern/internal/service"
)

type RAGHandler struct {
	rag *service.RAGService
}

func NewRAGHandler(rag *service.RAGService) *RAGHandler {
	return &RAGHandler{rag: rag}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

func (h *RAGHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	start := time.Now()
	answer, err := h.rag.AnswerQuestion(c.Request.Context(), req.Query, req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrAIUnavailable) {
			response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"answer":           answer.Answer,
		"sources":          answer.Sources,
		"session_id":       answer.SessionID,
		"response_time_ms": time.Since(start).Milliseconds(),
	})
}

func (h *RAGHandler) Courses(c *gin.Context) {
	stats, err := h.rag.GetCorpusStats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *RAGHandler) Models(c *gin.Context) {
	models, err := h.rag.ListModels(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"models": models})
}
