package chat_module

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ethanbaker/mitra/internal/api/dto"
	"github.com/ethanbaker/mitra/internal/api/middleware"
	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Controller serves the view routes of one server
type Controller struct {
	registry *views.Registry
	store    archive.Store // nil when transcripts are not archived
}

// NewController creates a controller over registry and the optional archive
func NewController(registry *views.Registry, store archive.Store) *Controller {
	return &Controller{registry: registry, store: store}
}

// GetView handles GET requests returning the caller's view state
func (ctrl *Controller) GetView(c *gin.Context) {
	view := middleware.GetView(c)
	c.JSON(dto.NewSuccessResponse("View retrieved successfully", view.Snapshot()).AsGinResponse())
}

// ResetView handles DELETE requests replacing the caller's view with a fresh one
func (ctrl *Controller) ResetView(c *gin.Context) {
	id := middleware.GetViewID(c)
	ctx := context.WithoutCancel(c.Request.Context())

	if ctrl.store != nil {
		if err := ctrl.store.DeleteMessages(ctx, id); err != nil {
			log.Printf("[ARCHIVE]: Failed to delete transcript of view %s: %v", id, err)
		}
	}

	ctrl.registry.Delete(id)
	view := ctrl.registry.GetOrCreate(ctx, id)

	c.JSON(dto.NewSuccessResponse("View reset", view.Snapshot()).AsGinResponse())
}

// PostQuery handles POST requests submitting a conversational query
func (ctrl *Controller) PostQuery(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(dto.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	view := middleware.GetView(c)

	// Requests run to completion even if the caller goes away
	reply, err := view.SubmitQuery(context.WithoutCancel(c.Request.Context()), req.Text)
	if err != nil {
		c.JSON(dto.NewErrorResponse(statusFor(err), "Query not submitted", err).AsGinResponse())
		return
	}

	resp := dto.QueryResponse{
		Reply: reply,
		View:  view.Snapshot(),
	}
	c.JSON(dto.NewSuccessResponse("Query answered", resp).AsGinResponse())
}

// PostBatch handles POST requests uploading a CSV file. A multipart "file" part replaces
// the selected file; without one the previously selected file is uploaded again
func (ctrl *Controller) PostBatch(c *gin.Context) {
	view := middleware.GetView(c)

	if header, err := c.FormFile(sdk.FileField); err == nil {
		file, err := dto.ReadUpload(header)
		if err != nil {
			c.JSON(dto.NewErrorResponse(http.StatusBadRequest, "Could not read uploaded file", err).AsGinResponse())
			return
		}
		if err := view.SelectFile(file); err != nil {
			c.JSON(dto.NewErrorResponse(statusFor(err), "Could not select file", err).AsGinResponse())
			return
		}
	}

	if err := view.SubmitBatch(context.WithoutCancel(c.Request.Context())); err != nil {
		c.JSON(dto.NewErrorResponse(statusFor(err), "Batch not submitted", err).AsGinResponse())
		return
	}

	// Service failures are part of the view state, not an API error
	c.JSON(dto.NewSuccessResponse("Batch processed", view.Snapshot()).AsGinResponse())
}

// DismissBatchError handles DELETE requests hiding the batch error
func (ctrl *Controller) DismissBatchError(c *gin.Context) {
	view := middleware.GetView(c)
	view.DismissError()
	c.JSON(dto.NewSuccessResponse("Batch error dismissed", view.Snapshot()).AsGinResponse())
}

// statusFor maps view precondition errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrQueryPending), errors.Is(err, chat.ErrBatchPending):
		return http.StatusConflict
	case errors.Is(err, chat.ErrBatchDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
