package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storyloom.app/api/internal/http/dto"
	"storyloom.app/api/internal/http/middleware"
	"storyloom.app/api/internal/revision"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/store"
)

type RevisionHandler struct {
	sessions service.RevisionSessions
}

func NewRevisionHandler(sessions service.RevisionSessions) *RevisionHandler {
	return &RevisionHandler{sessions: sessions}
}

// Submit runs one revision request through the chapter's session. The
// response is always a displayable proposal; a superseded request gets 409.
func (h *RevisionHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	var req dto.RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessions.SubmitRequest(ctx, middleware.OwnerID(c), chapterID, req.Text, revision.Selection{
		ParagraphIndices: req.ParagraphIndices,
		Snippets:         req.Snippets,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		case errors.Is(err, revision.ErrSuperseded):
			c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer request"})
		default:
			slog.ErrorContext(ctx, "revision request failed", "chapter_id", chapterID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "revision request failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToProposalResponse(result))
}

func (h *RevisionHandler) Accept(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	accepted, content, err := h.sessions.Accept(ctx, middleware.OwnerID(c), chapterID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		case errors.Is(err, revision.ErrNoPendingProposal):
			c.JSON(http.StatusConflict, gin.H{"error": "no pending proposal"})
		default:
			slog.ErrorContext(ctx, "failed to accept proposal", "chapter_id", chapterID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept proposal"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.AcceptResponse{Kind: string(accepted.Kind), Content: content})
}

func (h *RevisionHandler) Reject(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	if err := h.sessions.Reject(ctx, middleware.OwnerID(c), chapterID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		case errors.Is(err, revision.ErrNoPendingProposal):
			c.JSON(http.StatusConflict, gin.H{"error": "no pending proposal"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject proposal"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RevisionHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	if err := h.sessions.Reset(ctx, middleware.OwnerID(c), chapterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset conversation"})
		return
	}

	c.Status(http.StatusNoContent)
}
