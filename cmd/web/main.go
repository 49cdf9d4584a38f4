package main

import (
	"log"

	"github.com/ethanbaker/mitra/internal/api"
	"github.com/ethanbaker/mitra/internal/stores/archive"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
)

// Start the web server
func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())

	branding, err := utils.LoadBrandingFromConfig(cfg)
	if err != nil {
		log.Printf("[WEB]: Failed to load branding, using defaults: %v", err)
	}

	opts := api.Options{
		Backend:  sdk.NewClientFromConfig(cfg),
		Branding: branding,
	}

	// Transcripts are archived only when a database is configured
	if dsn, ok := archive.DSNFromConfig(cfg); ok {
		store, err := archive.NewMySqlStore(dsn)
		if err != nil {
			log.Fatalf("[WEB]: Failed to initialize archive store: %v", err)
		}
		defer store.Close()

		opts.Archive = store
	}

	// Start
	api.Start(cfg, opts)
}
