package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avoskres/salondesk/internal/flagx"
	"github.com/avoskres/salondesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "30s" or as integer nanoseconds. After parsing, values are
// copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	BasePath       string         `json:"base_path"`
	MockMode       *bool          `json:"mock_mode"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	UploadField    string         `json:"upload_field"`
	LocalDBPath    string         `json:"local_db_path"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flags (via
// flagx.JsonConfigFlags); with no such flag, nothing is loaded. Absent JSON
// fields leave the current Config values untouched.
//
// Intended usage is: defaults -> parseEnv -> parseJson -> parseFlags, where
// later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.BasePath != "" {
		cfg.BasePath = jc.BasePath
	}
	if jc.MockMode != nil {
		cfg.MockMode = *jc.MockMode
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.UploadField != "" {
		cfg.UploadField = jc.UploadField
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
}
