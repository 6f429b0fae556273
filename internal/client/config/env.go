package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from environment variables. A .env
// file in the working directory is loaded first, if present; real
// environment variables win over the file.
//
// Recognized variables:
//
//	SALONDESK_SERVER_URL   backend base URL
//	SALONDESK_BASE_PATH    sub-path deployment prefix
//	SALONDESK_MOCK_MODE    "true"/"1" enables demo mode
//	SALONDESK_DB_PATH      local SQLite database path
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SALONDESK_SERVER_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("SALONDESK_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("SALONDESK_MOCK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MockMode = b
		}
	}
	if v := os.Getenv("SALONDESK_DB_PATH"); v != "" {
		cfg.LocalDBPath = v
	}
}
