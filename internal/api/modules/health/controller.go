package health

import (
	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/gin-gonic/gin"
)

// status is the data reported by the health route
type status struct {
	Views int `json:"views"` // Live views held by the server
}

type controller struct {
	registry *views.Registry
}

// Return status of the API
func (ctrl *controller) getStatus(c *gin.Context) {
	res := api_types.NewSuccessResponse("OK", status{Views: ctrl.registry.Len()})
	c.JSON(res.AsGinResponse())
}
