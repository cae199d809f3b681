package router

import (
	"github.com/gin-gonic/gin"

	"storyloom.app/api/internal/http/handler"
)

func ChapterRouter(router *gin.RouterGroup, chapters *handler.ChapterHandler, revisions *handler.RevisionHandler, events *handler.EventsHandler) {
	router.GET("/:chapter_id", chapters.Get)
	router.PATCH("/:chapter_id", chapters.Update)
	router.DELETE("/:chapter_id", chapters.Delete)
	router.GET("/:chapter_id/revisions", chapters.History)

	router.POST("/:chapter_id/revision/requests", revisions.Submit)
	router.POST("/:chapter_id/revision/accept", revisions.Accept)
	router.POST("/:chapter_id/revision/reject", revisions.Reject)
	router.POST("/:chapter_id/revision/reset", revisions.Reset)
	router.GET("/:chapter_id/revision/events", events.Stream)
}
