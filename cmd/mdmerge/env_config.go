package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-mdmerge/internal/config"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath  string        // MDMERGE_CONFIG: config file name or path
	CacheDir    string        // MDMERGE_CACHE_DIR: render cache directory
	GitHubToken string        // MDMERGE_GITHUB_TOKEN: token for the Markdown API
	Timeout     time.Duration // MDMERGE_TIMEOUT: merge timeout
}

// knownEnvVars lists valid MDMERGE_* environment variables.
var knownEnvVars = map[string]bool{
	"MDMERGE_CONFIG":       true,
	"MDMERGE_CACHE_DIR":    true,
	"MDMERGE_GITHUB_TOKEN": true,
	"MDMERGE_TIMEOUT":      true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or non-positive timeout is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("MDMERGE_CONFIG"),
		CacheDir:    os.Getenv("MDMERGE_CACHE_DIR"),
		GitHubToken: os.Getenv("MDMERGE_GITHUB_TOKEN"),
	}

	if timeout := os.Getenv("MDMERGE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars reports MDMERGE_* variables that are not recognized.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDMERGE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values that the file left empty.
// Flags are merged afterwards and win over both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.CacheDir != "" && cfg.Cache.Dir == "" {
		cfg.Cache.Dir = env.CacheDir
	}
	if env.Timeout > 0 && cfg.Render.Timeout == "" {
		cfg.Render.Timeout = env.Timeout.String()
	}
}
