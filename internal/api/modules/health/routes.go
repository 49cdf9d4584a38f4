package health

import (
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes for the health module
func RegisterRoutes(g *gin.RouterGroup, registry *views.Registry) {
	ctrl := &controller{registry: registry}

	g.GET("/health", ctrl.getStatus)
}
