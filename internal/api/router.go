// Package api exposes habits, statistics, analytics and sharing over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler into a gin engine.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(), CORS(normalizeOrigins(corsOrigins)))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.GET("/overview", h.Overview)

	habits := api.Group("/habits")
	habits.GET("", h.ListHabits)
	habits.GET("/:id/stats", h.HabitStats)

	analytics := api.Group("/analytics")
	analytics.GET("/weekly", h.WeeklyTrends)
	analytics.GET("/monthly", h.MonthlyTrends)
	analytics.GET("/days", h.DayPerformance)
	analytics.GET("/correlations", h.Correlations)
	analytics.GET("/heatmap", h.Heatmap)

	shares := api.Group("/share")
	shares.POST("", h.CreateShare)
	shares.GET("/:code", h.GetShare)

	engine.NoRoute(func(c *gin.Context) {
		writeError(c, NotFound("not_found", "route not found"))
	})

	return engine
}
