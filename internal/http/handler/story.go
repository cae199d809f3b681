package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storyloom.app/api/internal/http/dto"
	"storyloom.app/api/internal/http/middleware"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/store"
)

type StoryHandler struct {
	stories service.StoryService
	drafts  service.DraftService
}

func NewStoryHandler(stories service.StoryService, drafts service.DraftService) *StoryHandler {
	return &StoryHandler{stories: stories, drafts: drafts}
}

func (h *StoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := h.stories.Create(ctx, middleware.OwnerID(c), service.StoryInput{
		Title:           req.Title,
		Synopsis:        req.Synopsis,
		StyleDirectives: req.StyleDirectives,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create story", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create story"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToStoryResponse(story))
}

func (h *StoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	story, err := h.stories.Get(ctx, middleware.OwnerID(c), storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load story"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStoryResponse(story))
}

func (h *StoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	stories, err := h.stories.List(ctx, middleware.OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": dto.ToStoryResponses(stories)})
}

func (h *StoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	story, err := h.stories.Update(ctx, middleware.OwnerID(c), storyID, service.StoryInput{
		Title:           req.Title,
		Synopsis:        req.Synopsis,
		StyleDirectives: req.StyleDirectives,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update story"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStoryResponse(story))
}

func (h *StoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	if err := h.stories.Delete(ctx, middleware.OwnerID(c), storyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete story"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) GenerateDraft(c *gin.Context) {
	ctx := c.Request.Context()

	storyID, ok := pathID(c, "story_id")
	if !ok {
		return
	}

	var req dto.GenerateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chapter, err := h.drafts.Generate(ctx, middleware.OwnerID(c), storyID, service.DraftInput{
		ChapterTitle: req.ChapterTitle,
		Guidance:     req.Guidance,
		UseWebSearch: req.WebSearch,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		slog.ErrorContext(ctx, "draft generation failed", "story_id", storyID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "draft generation failed"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToChapterResponse(chapter))
}

// pathID parses an int64 path parameter, answering 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
