package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storyloom.app/api/internal/http/dto"
	"storyloom.app/api/internal/http/middleware"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/store"
)

type ChapterHandler struct {
	chapters service.ChapterService
	sessions service.RevisionSessions
}

func NewChapterHandler(chapters service.ChapterService, sessions service.RevisionSessions) *ChapterHandler {
	return &ChapterHandler{chapters: chapters, sessions: sessions}
}

func (h *ChapterHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chapter, err := h.chapters.Create(ctx, middleware.OwnerID(c), storyID, service.ChapterInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chapter"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToChapterResponse(chapter))
}

func (h *ChapterHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	chapter, err := h.chapters.Get(ctx, middleware.OwnerID(c), chapterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chapter"})
		return
	}

	c.JSON(http.StatusOK, dto.ToChapterResponse(chapter))
}

func (h *ChapterHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	chapters, err := h.chapters.List(ctx, middleware.OwnerID(c), storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chapters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chapters": dto.ToChapterResponses(chapters)})
}

func (h *ChapterHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chapter, err := h.chapters.Update(ctx, middleware.OwnerID(c), chapterID, service.ChapterInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update chapter"})
		return
	}

	// The stored text changed outside any live session; its conversation
	// would now propose edits against stale content.
	h.sessions.Evict(chapterID)

	c.JSON(http.StatusOK, dto.ToChapterResponse(chapter))
}

func (h *ChapterHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	if err := h.chapters.Delete(ctx, middleware.OwnerID(c), chapterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chapter"})
		return
	}

	h.sessions.Evict(chapterID)

	c.Status(http.StatusNoContent)
}

func (h *ChapterHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	chapterID, ok := pathID(c, "chapter_id")
	if !ok {
		return
	}

	revs, err := h.chapters.History(ctx, middleware.OwnerID(c), chapterID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load revision history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revisions": dto.ToChapterRevisionResponses(revs)})
}
