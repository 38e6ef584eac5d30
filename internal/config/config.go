// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backend names accepted in StoreBackend.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the blob store implementation: "fs" or "memory".
	StoreBackend string `koanf:"store_backend"`

	// DataDir is the root directory for the filesystem store.
	DataDir string `koanf:"data_dir"`

	// BaseFolder is an optional prefix placed before the vote_results namespace,
	// mirroring the layout used by the hosted storage account.
	BaseFolder string `koanf:"base_folder"`

	// AllowedOrigins lists the origins permitted by CORS.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// ListPageSize bounds one page of a store listing.
	ListPageSize int `koanf:"list_page_size"`

	// MaxRawVotes caps the rawVotes passthrough on /api/results; 0 means no cap.
	MaxRawVotes int `koanf:"max_raw_votes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:       "info",
		Addr:           ":5000",
		StoreBackend:   BackendFS,
		DataDir:        "./data",
		BaseFolder:     "",
		AllowedOrigins: []string{"https://z-labo.github.io"},
		ListPageSize:   1000,
		MaxRawVotes:    0,
	}
	return c
}
