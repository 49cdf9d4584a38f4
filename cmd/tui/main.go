package main

import (
	"log"

	"github.com/ethanbaker/mitra/internal/tui"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
)

func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())

	branding, err := utils.LoadBrandingFromConfig(cfg)
	if err != nil {
		log.Printf("[TUI]: Failed to load branding, using defaults: %v", err)
	}

	client := sdk.NewClientFromConfig(cfg)
	view := chat.NewView(client, chat.Options{
		Greeting:     branding.Greeting,
		BatchEnabled: cfg.GetBoolWithDefault("BATCH_ENABLED", true),
	})

	if err := tui.Run(view, client, branding); err != nil {
		log.Fatalf("[TUI]: Failed to run terminal UI: %v", err)
	}
}
