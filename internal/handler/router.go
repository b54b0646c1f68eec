package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route of the timeline API.
func NewRouter(h *TimelineHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(logger), RequestLogger(logger))

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health)
		v1.GET("/floor", h.Floor)

		reservations := v1.Group("/reservations")
		{
			reservations.GET("", h.ListReservations)
			reservations.POST("", h.CreateReservation)
			reservations.GET("/:id", h.GetReservation)
			reservations.PATCH("/:id", h.UpdateReservation)
			reservations.DELETE("/:id", h.DeleteReservation)
			reservations.POST("/:id/status", h.ChangeStatus)
			reservations.POST("/:id/move", h.MoveReservation)
			reservations.POST("/:id/resize", h.ResizeReservation)
		}

		v1.POST("/conflicts/check", h.CheckConflict)

		suggestions := v1.Group("/suggestions")
		{
			suggestions.POST("/tables", h.SuggestTables)
			suggestions.POST("/slots", h.SuggestSlots)
		}

		batch := v1.Group("/batch")
		{
			batch.GET("/template", h.BatchTemplate)
			batch.POST("/preview", h.PreviewBatch)
			batch.POST("/import", h.ImportBatch)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/capacity", h.CapacityReport)
			analytics.GET("/sectors", h.SectorReport)
		}
	}

	return router
}
