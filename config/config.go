// Package config loads process configuration from environment variables.
//
// Both processes read the same variables:
//
//	TEMPORAL_ENDPOINT    - Temporal server address (cloud mode)
//	TEMPORAL_NAMESPACE   - Temporal namespace (default: "default")
//	TEMPORAL_TASK_QUEUE  - task queue name (default: "research-queue")
//	TEMPORAL_API_KEY     - API key for Temporal Cloud
//	CONNECT_CLOUD        - "Y" to connect to Temporal Cloud
//	OPENAI_API_KEY       - OpenAI API key (worker only)
//	HTTP_ADDR            - API listen address (default: ":8234")
//	STATIC_DIR           - prebuilt frontend directory (optional)
//	IMAGES_DIR           - generated artifacts directory (default: "temp_images")
package config

import (
	"fmt"
	"os"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultNamespace = "default"
	DefaultTaskQueue = "research-queue"
	DefaultHTTPAddr  = ":8234"
	DefaultImagesDir = "temp_images"

	// LocalHostPort is the fixed loopback endpoint used when not connecting
	// to Temporal Cloud.
	LocalHostPort = "localhost:7233"
)

// Config holds the environment-sourced settings shared by the API server and
// the worker.
type Config struct {
	TemporalEndpoint  string
	TemporalNamespace string
	TaskQueue         string
	TemporalAPIKey    string
	ConnectCloud      bool

	OpenAIAPIKey string

	HTTPAddr  string
	StaticDir string
	ImagesDir string
}

// Load reads the configuration from the environment. Cloud mode requires an
// endpoint and an API key; local mode ignores both and dials the loopback
// endpoint.
func Load() (Config, error) {
	cfg := Config{
		TemporalEndpoint:  os.Getenv("TEMPORAL_ENDPOINT"),
		TemporalNamespace: envOr("TEMPORAL_NAMESPACE", DefaultNamespace),
		TaskQueue:         envOr("TEMPORAL_TASK_QUEUE", DefaultTaskQueue),
		TemporalAPIKey:    os.Getenv("TEMPORAL_API_KEY"),
		ConnectCloud:      os.Getenv("CONNECT_CLOUD") == "Y",
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		HTTPAddr:          envOr("HTTP_ADDR", DefaultHTTPAddr),
		StaticDir:         os.Getenv("STATIC_DIR"),
		ImagesDir:         envOr("IMAGES_DIR", DefaultImagesDir),
	}
	if cfg.ConnectCloud {
		if cfg.TemporalEndpoint == "" {
			return Config{}, fmt.Errorf("CONNECT_CLOUD=Y requires TEMPORAL_ENDPOINT")
		}
		if cfg.TemporalAPIKey == "" {
			return Config{}, fmt.Errorf("CONNECT_CLOUD=Y requires TEMPORAL_API_KEY")
		}
	}
	return cfg, nil
}

// HostPort returns the Temporal address to dial: the configured endpoint in
// cloud mode, the loopback endpoint otherwise.
func (c Config) HostPort() string {
	if c.ConnectCloud {
		return c.TemporalEndpoint
	}
	return LocalHostPort
}

// Namespace returns the Temporal namespace to use: the configured namespace
// in cloud mode, "default" otherwise.
func (c Config) Namespace() string {
	if c.ConnectCloud {
		return c.TemporalNamespace
	}
	return DefaultNamespace
}

// envOr returns the environment variable value or a default.
func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
