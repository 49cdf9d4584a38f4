package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default branding values, used for anything the branding file leaves out
const (
	DefaultTitle       = "LenDen Mitra"
	DefaultGreeting    = "Hello! I'm your AI assistant. How can I help you today?"
	DefaultPlaceholder = "Type your message..."

	// DefaultBrandingFile is read when BRANDING_FILE is not set
	DefaultBrandingFile = "branding.yaml"
)

// Branding holds the user facing copy shared by every front end
type Branding struct {
	Title       string `yaml:"title"`
	Greeting    string `yaml:"greeting"`
	Placeholder string `yaml:"placeholder"`
}

// DefaultBranding returns the built in branding
func DefaultBranding() Branding {
	return Branding{
		Title:       DefaultTitle,
		Greeting:    DefaultGreeting,
		Placeholder: DefaultPlaceholder,
	}
}

// LoadBranding reads a YAML branding file. A missing file is not an error and yields
// the defaults; fields left empty in the file are filled from the defaults as well
func LoadBranding(filePath string) (Branding, error) {
	branding := DefaultBranding()

	content, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return branding, nil
	}
	if err != nil {
		return branding, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	var loaded Branding
	if err := yaml.Unmarshal(content, &loaded); err != nil {
		return branding, fmt.Errorf("failed to parse branding file %s: %w", filePath, err)
	}

	if v := strings.TrimSpace(loaded.Title); v != "" {
		branding.Title = v
	}
	if v := strings.TrimSpace(loaded.Greeting); v != "" {
		branding.Greeting = v
	}
	if v := strings.TrimSpace(loaded.Placeholder); v != "" {
		branding.Placeholder = v
	}

	return branding, nil
}

// LoadBrandingFromConfig loads the branding file named by BRANDING_FILE
func LoadBrandingFromConfig(cfg *Config) (Branding, error) {
	return LoadBranding(cfg.GetWithDefault("BRANDING_FILE", DefaultBrandingFile))
}
