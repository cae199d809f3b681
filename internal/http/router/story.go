package router

import (
	"github.com/gin-gonic/gin"

	"storyloom.app/api/internal/http/handler"
)

func StoryRouter(router *gin.RouterGroup, stories *handler.StoryHandler, chapters *handler.ChapterHandler) {
	router.POST("", stories.Create)
	router.GET("", stories.List)
	router.GET("/:story_id", stories.Get)
	router.PATCH("/:story_id", stories.Update)
	router.DELETE("/:story_id", stories.Delete)

	router.POST("/:story_id/draft", stories.GenerateDraft)

	router.POST("/:story_id/chapters", chapters.Create)
	router.GET("/:story_id/chapters", chapters.List)
}
