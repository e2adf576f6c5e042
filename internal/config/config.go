package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/alnah/go-mdmerge/internal/fileutil"
	"github.com/alnah/go-mdmerge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxURLLength     = 2048
	MaxContextLength = 200 // "owner/repository"
	MaxPatternLength = 256
	MaxMargin        = 3.0 // inches
)

// appDir is the directory searched under the user config directory.
const appDir = "go-mdmerge"

// Config holds the settings of a merge, as read from a YAML file.
// Zero values mean "use the default"; command-line flags override them.
type Config struct {
	Entry  string       `yaml:"entry"` // entry page relative to the repository (default: README.md)
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Cache  CacheConfig  `yaml:"cache"`
	Page   PageConfig   `yaml:"page"`
	Links  LinksConfig  `yaml:"links"`
	Assets AssetsConfig `yaml:"assets"`
	GitHub GitHubConfig `yaml:"github"`
}

// RenderConfig selects the Markdown renderer and post-processing.
type RenderConfig struct {
	Offline bool   `yaml:"offline"` // render with goldmark instead of the GitHub API
	Embed   bool   `yaml:"embed"`   // inline images as data URIs
	Timeout string `yaml:"timeout"` // Go duration, e.g. "2m"
}

// OutputConfig defines the merged artifact.
type OutputConfig struct {
	Path    string   `yaml:"path"`    // "-" for stdout
	PDF     string   `yaml:"pdf"`     // "disable" or "chrome"
	MainCSS string   `yaml:"mainCSS"` // "builtin", a URL or a path
	CSS     []string `yaml:"css"`     // extra stylesheets, in order
	Cover   string   `yaml:"cover"`   // cover image for PDF output
}

// CacheConfig locates the render cache.
type CacheConfig struct {
	Dir string `yaml:"dir"` // empty = user cache directory
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size   string  `yaml:"size"`   // "a4", "letter", "legal"
	Margin float64 `yaml:"margin"` // inches
}

// LinksConfig controls link following.
type LinksConfig struct {
	Exclude []string `yaml:"exclude"` // globs over repo-relative page paths
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// GitHubConfig configures the online renderer.
type GitHubConfig struct {
	APIURL  string `yaml:"apiURL"`  // empty = https://api.github.com
	Context string `yaml:"context"` // "owner/repository" for issue and mention links
}

// Validate checks field lengths and enumerated values.
// Called by LoadConfig, and available for configs built in code.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"entry", c.Entry, MaxPathLength},
		{"output.path", c.Output.Path, MaxPathLength},
		{"output.mainCSS", c.Output.MainCSS, MaxURLLength},
		{"output.cover", c.Output.Cover, MaxPathLength},
		{"cache.dir", c.Cache.Dir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"github.apiURL", c.GitHub.APIURL, MaxURLLength},
		{"github.context", c.GitHub.Context, MaxContextLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}
	for i, css := range c.Output.CSS {
		if err := validateFieldLength(fmt.Sprintf("output.css[%d]", i), css, MaxURLLength); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Output.PDF) {
	case "", "disable", "chrome":
	default:
		return fmt.Errorf("%w: output.pdf %q (must be disable or chrome)", ErrInvalidValue, c.Output.PDF)
	}

	switch strings.ToLower(c.Page.Size) {
	case "", "a4", "letter", "legal":
	default:
		return fmt.Errorf("%w: page.size %q (must be a4, letter, or legal)", ErrInvalidValue, c.Page.Size)
	}
	if c.Page.Margin < 0 || c.Page.Margin > MaxMargin {
		return fmt.Errorf("%w: page.margin must be between 0 and %.1f, got %.2f", ErrInvalidValue, MaxMargin, c.Page.Margin)
	}

	for i, pattern := range c.Links.Exclude {
		field := fmt.Sprintf("links.exclude[%d]", i)
		if err := validateFieldLength(field, pattern, MaxPatternLength); err != nil {
			return err
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, field, pattern, err)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration: every setting falls back to
// the command-line defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as <name>.yaml or <name>.yml in the current
// directory, then in the user config directory.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries .yaml then .yml, in the current directory then ~/.config/go-mdmerge/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		local := name + ext
		if fileutil.FileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if base := UserConfigPath(name); base != "" {
		for _, ext := range extensions {
			userPath := base + ext
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			tried = append(tried, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// UserConfigPath returns the path, without extension, where a config named
// name is searched in the user config directory. Empty if that directory is
// unknown.
func UserConfigPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, name)
}
