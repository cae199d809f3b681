package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storyloom.app/api/internal/http/handler"
	"storyloom.app/api/internal/http/middleware"
	"storyloom.app/api/internal/service"
	"storyloom.app/api/internal/stream"
)

func SetupRoutes(router *gin.Engine, services *service.Services, redisClient *redis.Client, publisher *stream.Publisher) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireOwner())
	{
		storyHandler := handler.NewStoryHandler(services.Stories(), services.Drafts())
		chapterHandler := handler.NewChapterHandler(services.Chapters(), services.Revisions())
		StoryRouter(v1.Group("/stories"), storyHandler, chapterHandler)

		revisionHandler := handler.NewRevisionHandler(services.Revisions())
		eventsHandler := handler.NewEventsHandler(redisClient, publisher, services.Chapters())
		ChapterRouter(v1.Group("/chapters"), chapterHandler, revisionHandler, eventsHandler)
	}
}
