package page_module

import (
	"github.com/ethanbaker/mitra/internal/api/middleware"
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the browser facing routes. The engine must render with Templates()
func RegisterRoutes(g *gin.RouterGroup, registry *views.Registry, branding utils.Branding) {
	ctrl := NewController(branding)

	group := g.Group("")
	group.Use(middleware.ViewLoader(registry))

	group.GET("/", ctrl.Index)
	group.POST("/chat", ctrl.SubmitChat)
	group.POST("/upload", ctrl.SubmitUpload)
	group.POST("/dismiss", ctrl.Dismiss)
}
