package chat_module

import (
	"github.com/ethanbaker/mitra/internal/api/middleware"
	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the JSON routes driving a caller's view. store may be nil
func RegisterRoutes(g *gin.RouterGroup, registry *views.Registry, store archive.Store) {
	ctrl := NewController(registry, store)

	group := g.Group("")
	group.Use(middleware.ViewLoader(registry))

	group.GET("/view", ctrl.GetView)                     // Current transcript, flow states and results
	group.DELETE("/view", ctrl.ResetView)                // Start over with a fresh transcript
	group.POST("/query", ctrl.PostQuery)                 // Submit a conversational query
	group.POST("/batch", ctrl.PostBatch)                 // Upload a CSV file for batch processing
	group.DELETE("/batch/error", ctrl.DismissBatchError) // Hide the batch error
}
