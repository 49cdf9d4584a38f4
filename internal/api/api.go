package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ethanbaker/api/pkg/api_key"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/internal/stores/views"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	chat_module "github.com/ethanbaker/mitra/internal/api/modules/chat"
	health_module "github.com/ethanbaker/mitra/internal/api/modules/health"
	page_module "github.com/ethanbaker/mitra/internal/api/modules/page"
)

// Options are the collaborators of the web front end
type Options struct {
	Backend  chat.Backend   // Query service every view talks to
	Archive  archive.Store  // Optional transcript archive, nil disables it
	Branding utils.Branding // Copy rendered on the page and used to greet new views
}

// Server is the web front end: the gin engine and the live views it serves
type Server struct {
	Engine *gin.Engine
	Views  *views.Registry
}

// NewServer builds the gin engine serving the page and the JSON API
func NewServer(cfg *utils.Config, opts Options) (*Server, error) {
	// Add app level settings/routes
	engine := gin.Default()
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetListWithDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY", "X-View-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-View-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	templates, err := page_module.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	engine.SetHTMLTemplate(templates)

	// The factory checks archive writes against the registry it feeds
	var registry *views.Registry
	registry = views.NewRegistry(newViewFactory(cfg, opts, func(id uuid.UUID, view *chat.View) bool {
		return registry.IsCurrent(id, view)
	}))

	// Browser page at the root
	page_module.RegisterRoutes(&engine.RouterGroup, registry, opts.Branding)

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")
	health_module.RegisterRoutes(baseGroup, registry)

	// The view routes are optionally guarded by an API key
	viewGroup := baseGroup.Group("")
	if apiKey := cfg.Get("API_KEY"); apiKey != "" {
		viewGroup.Use(api_key.APIKeyHeaderHandler(func(key string) bool {
			return key == apiKey
		}))
	}
	chat_module.RegisterRoutes(viewGroup, registry, opts.Archive)

	return &Server{Engine: engine, Views: registry}, nil
}

// Start builds the server, sweeps idle views in the background and serves on WEB_PORT
func Start(cfg *utils.Config, opts Options) {
	// Initialized configuration settings
	port := cfg.GetIntWithDefault("WEB_PORT", 3000)

	server, err := NewServer(cfg, opts)
	if err != nil {
		log.Fatalf("[WEB]: Failed to build server: %v", err)
	}

	sweeper := views.NewSweeper(server.Views, cfg.GetDurationWithDefault("VIEW_IDLE_TIMEOUT", views.DefaultIdleTimeout))
	if err := sweeper.Start(cfg.GetWithDefault("VIEW_SWEEP_SCHEDULE", views.DefaultSweepSchedule)); err != nil {
		log.Fatalf("[WEB]: Failed to schedule view sweeps: %v", err)
	}
	defer sweeper.Stop()

	// Then after performing initial setup, start the server
	if err := server.Engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal("[WEB]: Failed to start server: ", err)
	}
}

// newViewFactory creates views that restore from and write to the archive when one is configured.
// isCurrent tells whether a view is still the registered one for its id
func newViewFactory(cfg *utils.Config, opts Options, isCurrent func(uuid.UUID, *chat.View) bool) views.Factory {
	batchEnabled := cfg.GetBoolWithDefault("BATCH_ENABLED", true)

	return func(ctx context.Context, id uuid.UUID) *chat.View {
		viewOpts := chat.Options{
			Greeting:     opts.Branding.Greeting,
			BatchEnabled: batchEnabled,
		}

		if opts.Archive == nil {
			return chat.NewView(opts.Backend, viewOpts)
		}

		history, err := opts.Archive.GetMessages(ctx, id)
		if err != nil {
			log.Printf("[ARCHIVE]: Failed to restore view %s: %v", id, err)
		}
		viewOpts.History = history

		// The view is only known once NewView returns, the greeting it sends before that is held back
		var view *chat.View
		journal := newTranscriptJournal(opts.Archive, id, len(history) > 0, func() bool {
			return isCurrent(id, view)
		})
		viewOpts.OnMessage = journal.Record

		view = chat.NewView(opts.Backend, viewOpts)
		return view
	}
}
