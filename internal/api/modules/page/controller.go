package page_module

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/ethanbaker/mitra/internal/api/dto"
	"github.com/ethanbaker/mitra/internal/api/middleware"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/gin-gonic/gin"
)

// IndexTemplate is the name of the page template
const IndexTemplate = "index.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the page templates for engine.SetHTMLTemplate
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"clock": func(t time.Time) string {
			return t.Format("15:04")
		},
		"percent": func(confidence float64) string {
			return fmt.Sprintf("%.0f%%", confidence*100)
		},
		"isUser": func(role chat.Role) bool {
			return role == chat.RoleUser
		},
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// Controller serves the page routes with the given branding
type Controller struct {
	branding utils.Branding
}

// NewController creates a page controller
func NewController(branding utils.Branding) *Controller {
	return &Controller{branding: branding}
}

// pageData is everything the index template renders
type pageData struct {
	Branding utils.Branding
	View     chat.Snapshot
}

// Index renders the caller's view
func (ctrl *Controller) Index(c *gin.Context) {
	view := middleware.GetView(c)

	c.HTML(http.StatusOK, IndexTemplate, pageData{
		Branding: ctrl.branding,
		View:     view.Snapshot(),
	})
}

// SubmitChat handles the chat form
func (ctrl *Controller) SubmitChat(c *gin.Context) {
	view := middleware.GetView(c)

	// Empty input and a pending query are no-ops, the page shows the current state either way
	if _, err := view.SubmitQuery(context.WithoutCancel(c.Request.Context()), c.PostForm("text")); err != nil {
		log.Printf("[WEB]: Query not submitted: %v", err)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitUpload handles the batch upload form
func (ctrl *Controller) SubmitUpload(c *gin.Context) {
	view := middleware.GetView(c)

	if header, err := c.FormFile(sdk.FileField); err == nil {
		file, err := dto.ReadUpload(header)
		if err == nil {
			err = view.SelectFile(file)
		}
		if err != nil {
			log.Printf("[WEB]: Could not select uploaded file: %v", err)
		}
	}

	if err := view.SubmitBatch(context.WithoutCancel(c.Request.Context())); err != nil {
		log.Printf("[WEB]: Batch not submitted: %v", err)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// Dismiss hides the batch error
func (ctrl *Controller) Dismiss(c *gin.Context) {
	middleware.GetView(c).DismissError()
	c.Redirect(http.StatusSeeOther, "/")
}
