package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdcards/internal/dateutil"
	"github.com/alnah/go-mdcards/internal/fileutil"
	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/validation"
	"github.com/alnah/go-mdcards/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// AppName names the user config directory.
const AppName = "go-mdcards"

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxURLLength         = 2048 // Browser limit
	MaxTokenLength       = 4096
	MaxDescriptionLength = 500
	MaxLanguageLength    = 35 // BCP 47 upper bound in practice
	MaxStyleLength       = 50
)

// Defaults.
const (
	DefaultEngine         = "native"
	DefaultHighlightStyle = "github"
	DefaultSessionTimeout = 30 * time.Second
	DefaultSessionRetries = 3
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

var validate = validation.New()

// Config holds all configuration for rendering, packaging and importing.
type Config struct {
	Input       InputConfig       `yaml:"input" json:"input"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Renderer    RendererConfig    `yaml:"renderer" json:"renderer"`
	Sanitizer   SanitizerConfig   `yaml:"sanitizer" json:"sanitizer"`
	Packager    PackagerConfig    `yaml:"packager" json:"packager"`
	Session     SessionConfig     `yaml:"session" json:"session"`
	ContentBank ContentBankConfig `yaml:"contentBank" json:"contentBank"`
	Preview     PreviewConfig     `yaml:"preview" json:"preview"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Workers     int               `yaml:"workers" json:"workers" validate:"gte=0,lte=64"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir" json:"defaultDir"` // Empty = must specify
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir" json:"defaultDir"` // Empty = same as source
}

// RendererConfig selects the markdown engine and its options.
type RendererConfig struct {
	Engine         string `yaml:"engine" json:"engine" validate:"omitempty,oneof=native goldmark"`
	Highlighting   *bool  `yaml:"highlighting" json:"highlighting"` // nil = enabled
	HighlightStyle string `yaml:"highlightStyle" json:"highlightStyle"`
	HardWraps      bool   `yaml:"hardWraps" json:"hardWraps"`
}

// HighlightingEnabled reports the effective highlighting setting.
func (r RendererConfig) HighlightingEnabled() bool {
	return r.Highlighting == nil || *r.Highlighting
}

// SanitizerConfig adjusts the default HTML allow-list.
type SanitizerConfig struct {
	URLSchemes  []string `yaml:"urlSchemes" json:"urlSchemes" validate:"dive,alpha,lowercase"` // Empty = http, https, mailto
	DenyImages  bool     `yaml:"denyImages" json:"denyImages"`
	DenyClasses bool     `yaml:"denyClasses" json:"denyClasses"`
}

// PackagerConfig defines card-deck packaging options.
type PackagerConfig struct {
	Library     string   `yaml:"library" json:"library"` // "Name Major.Minor"; empty = H5P.Dialogcards 1.9
	Language    string   `yaml:"language" json:"language"`
	Description string   `yaml:"description" json:"description"`
	ScratchDir  string   `yaml:"scratchDir" json:"scratchDir"` // Empty = system temp dir
	Installed   []string `yaml:"installed" json:"installed"`   // Libraries the static registry reports
}

// PinnedLibrary parses Library, falling back to h5p.DialogCards.
func (p PackagerConfig) PinnedLibrary() (h5p.Library, error) {
	if strings.TrimSpace(p.Library) == "" {
		return h5p.DialogCards, nil
	}
	return h5p.ParseLibrary(p.Library)
}

// SessionConfig points at the remote session API.
type SessionConfig struct {
	BaseURL string        `yaml:"baseURL" json:"baseURL" validate:"omitempty,url"`
	Token   string        `yaml:"token" json:"token"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
	Retries *int          `yaml:"retries" json:"retries" validate:"omitempty,gte=0,lte=10"`
}

// EffectiveRetries returns Retries or the default when unset.
func (s SessionConfig) EffectiveRetries() int {
	if s.Retries == nil {
		return DefaultSessionRetries
	}
	return *s.Retries
}

// ContentBankConfig locates the local content bank.
type ContentBankConfig struct {
	Dir        string `yaml:"dir" json:"dir"`               // Empty = <user data dir>/go-mdcards
	DateFormat string `yaml:"dateFormat" json:"dateFormat"` // Listing dates; empty = dateutil.DefaultFormat
}

// PreviewConfig selects the page wrapper used for standalone HTML output.
type PreviewConfig struct {
	AssetPath string `yaml:"assetPath" json:"assetPath"` // Empty = built-in assets only
	Style     string `yaml:"style" json:"style"`         // Empty = "default"
	Template  string `yaml:"template" json:"template"`   // Empty = "page"
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
}

// Validate checks field values and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"renderer.highlightStyle", c.Renderer.HighlightStyle, MaxStyleLength},
		{"packager.language", c.Packager.Language, MaxLanguageLength},
		{"packager.description", c.Packager.Description, MaxDescriptionLength},
		{"packager.scratchDir", c.Packager.ScratchDir, MaxPathLength},
		{"session.baseURL", c.Session.BaseURL, MaxURLLength},
		{"session.token", c.Session.Token, MaxTokenLength},
		{"contentBank.dir", c.ContentBank.Dir, MaxPathLength},
		{"contentBank.dateFormat", c.ContentBank.DateFormat, dateutil.MaxFormatLength},
		{"preview.assetPath", c.Preview.AssetPath, MaxPathLength},
		{"preview.style", c.Preview.Style, MaxStyleLength},
		{"preview.template", c.Preview.Template, MaxStyleLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, validation.Describe(err))
	}

	if _, err := c.Packager.PinnedLibrary(); err != nil {
		return fmt.Errorf("%w: packager.library: %v", ErrInvalidConfig, err)
	}
	if c.ContentBank.DateFormat != "" {
		if _, err := dateutil.Layout(c.ContentBank.DateFormat); err != nil {
			return fmt.Errorf("%w: contentBank.dateFormat: %v", ErrInvalidConfig, err)
		}
	}
	for i, name := range c.Packager.Installed {
		if _, err := h5p.ParseLibrary(name); err != nil {
			return fmt.Errorf("%w: packager.installed[%d]: %v", ErrInvalidConfig, i, err)
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

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Renderer: RendererConfig{
			Engine:         DefaultEngine,
			HighlightStyle: DefaultHighlightStyle,
		},
		Session: SessionConfig{Timeout: DefaultSessionTimeout},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
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

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UserConfigPath returns ~/.config/go-mdcards/<name>.yaml (platform equivalent).
func UserConfigPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, name+".yaml"), nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdcards/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

