package config

import "time"

// Config holds runtime settings for the SalonDesk CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - BasePath: URL prefix of a sub-path deployment, "" when at the root.
//   - MockMode: demo mode; the client attaches no credentials.
//   - RequestTimeout: per-call client-side timeout.
//   - UploadField: multipart form field name for file uploads.
//   - LocalDBPath: path of the local SQLite database holding session state.
type Config struct {
	ServerBaseURL  string
	BasePath       string
	MockMode       bool
	RequestTimeout time.Duration
	UploadField    string
	LocalDBPath    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	// Matches the demo server's default listen address and root-mounted routes.
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.BasePath = ""
	c.MockMode = false
	c.RequestTimeout = 30 * time.Second
	c.UploadField = "file"
	c.LocalDBPath = "salondesk.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (including a .env file, if present), a JSON file (if
// given) and command-line flags. Later sources take precedence over earlier
// ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
