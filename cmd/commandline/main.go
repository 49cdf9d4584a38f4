package main

import (
	"context"
	"log"
	"os"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
)

func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())

	branding, err := utils.LoadBrandingFromConfig(cfg)
	if err != nil {
		log.Printf("[COMMANDLINE]: Failed to load branding, using defaults: %v", err)
	}

	// Create the view backed by the query service
	client := sdk.NewClientFromConfig(cfg)
	view := chat.NewView(client, chat.Options{
		Greeting:     branding.Greeting,
		BatchEnabled: cfg.GetBoolWithDefault("BATCH_ENABLED", true),
	})

	// Start interactive session
	if err := startInteractiveSession(context.Background(), os.Stdin, os.Stdout, branding, view); err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to run interactive session: %v", err)
	}
}
