package middleware

import (
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ViewCookie and ViewHeader carry the id of the caller's view
	ViewCookie = "mitra_view"
	ViewHeader = "X-View-ID"

	viewKey   = "view"
	viewIDKey = "view_id"

	viewCookieMaxAge = 30 * 24 * 60 * 60
)

// ViewLoader resolves the caller's view from the header or cookie, creating one when
// neither is present or valid, and stores it in the gin context
func ViewLoader(registry *views.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestViewID(c)
		if !ok {
			id = uuid.New()
		}

		view := registry.GetOrCreate(c.Request.Context(), id)

		c.SetCookie(ViewCookie, id.String(), viewCookieMaxAge, "/", "", false, true)
		c.Header(ViewHeader, id.String())
		c.Set(viewKey, view)
		c.Set(viewIDKey, id)

		c.Next()
	}
}

// requestViewID reads the view id a request carries, the header winning over the cookie
func requestViewID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(ViewHeader)
	if raw == "" {
		raw, _ = c.Cookie(ViewCookie)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetView returns the view loaded by ViewLoader
func GetView(c *gin.Context) *chat.View {
	view, _ := c.MustGet(viewKey).(*chat.View)
	return view
}

// GetViewID returns the id of the view loaded by ViewLoader
func GetViewID(c *gin.Context) uuid.UUID {
	id, _ := c.MustGet(viewIDKey).(uuid.UUID)
	return id
}
