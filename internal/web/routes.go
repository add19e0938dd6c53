package web

import (
	"github.com/gin-gonic/gin"

	"github.com/zaliyaya/RunConnect/pkg/response"
)

// RegisterRoutes wires the event endpoints and the live-update feed
// onto the router.
func RegisterRoutes(router *gin.Engine, h *Handler, feed *Feed) {
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.GET("/events", h.List)
	router.GET("/events/:id", h.Get)
	router.POST("/events", h.Create)
	router.PATCH("/events/:id", h.Update)
	router.DELETE("/events/:id", h.Delete)
	router.POST("/events/:id/join", h.Join)
	router.POST("/events/:id/leave", h.Leave)

	router.GET("/profile/stats", h.ProfileStats)
	router.GET("/sync/status", h.SyncStatus)
	router.GET("/ws", feed.Serve)
}
