package utils

import (
	"log"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when ENV_FILE is not set
const DefaultEnvFile = ".env"

// EnvFile returns the .env file the binaries should load
func EnvFile() string {
	return GetEnvWithDefault("ENV_FILE", DefaultEnvFile)
}

// LoadEnv reads variables from the given .env files and the process environment.
// Later files take precedence over earlier ones, and the process environment wins over all files
func LoadEnv(files ...string) map[string]string {
	config := make(map[string]string)

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}

		values, err := godotenv.Read(file)
		if err != nil {
			log.Printf("[UTILS]: Warning, could not load %s: %v", file, err)
			continue
		}
		maps.Copy(config, values)
	}

	for _, env := range os.Environ() {
		if key, value, ok := strings.Cut(env, "="); ok && key != "" {
			config[key] = value
		}
	}

	return config
}

// GetEnvWithDefault returns an environment variable value or a default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
