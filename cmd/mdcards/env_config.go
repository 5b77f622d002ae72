package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/hints"
)

// Environment variable names.
const (
	envPrefix      = "MDCARDS_"
	envConfigPath  = "MDCARDS_CONFIG"
	envTimeout     = "MDCARDS_TIMEOUT"
	envInputDir    = "MDCARDS_INPUT_DIR"
	envOutputDir   = "MDCARDS_OUTPUT_DIR"
	envEngine      = "MDCARDS_ENGINE"
	envLanguage    = "MDCARDS_LANGUAGE"
	envContentBank = "MDCARDS_CONTENT_BANK"
	envLogLevel    = "MDCARDS_LOG_LEVEL"
	envLogFormat   = "MDCARDS_LOG_FORMAT"
	envWorkers     = "MDCARDS_WORKERS"
	envContainer   = "MDCARDS_CONTAINER"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath   string        // MDCARDS_CONFIG: config file name or path
	SessionURL   string        // MDCARDS_SESSION_URL: session API base URL
	SessionToken string        // MDCARDS_SESSION_TOKEN: bearer token
	Timeout      time.Duration // MDCARDS_TIMEOUT: per-page build timeout

	// Tier 2 - I/O
	InputDir    string // MDCARDS_INPUT_DIR: default input directory
	OutputDir   string // MDCARDS_OUTPUT_DIR: default output directory
	ContentBank string // MDCARDS_CONTENT_BANK: content bank directory

	// Tier 3 - Extended
	Engine    string // MDCARDS_ENGINE: native or goldmark
	Language  string // MDCARDS_LANGUAGE: package manifest language
	LogLevel  string // MDCARDS_LOG_LEVEL: debug, info, warn, error
	LogFormat string // MDCARDS_LOG_FORMAT: text or json
	Workers   int    // MDCARDS_WORKERS: parallel workers
}

// knownEnvVars lists valid MDCARDS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfigPath:         true,
	hints.EnvSessionURL:   true,
	hints.EnvSessionToken: true,
	envTimeout:            true,
	envInputDir:           true,
	envOutputDir:          true,
	envContentBank:        true,
	envEngine:             true,
	envLanguage:           true,
	envLogLevel:           true,
	envLogFormat:          true,
	envWorkers:            true,
	envContainer:          true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:   getenv(envConfigPath),
		SessionURL:   getenv(hints.EnvSessionURL),
		SessionToken: getenv(hints.EnvSessionToken),
		InputDir:     getenv(envInputDir),
		OutputDir:    getenv(envOutputDir),
		ContentBank:  getenv(envContentBank),
		Engine:       getenv(envEngine),
		Language:     getenv(envLanguage),
		LogLevel:     getenv(envLogLevel),
		LogFormat:    getenv(envLogFormat),
	}

	if timeout := getenv(envTimeout); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv(envWorkers); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDCARDS_* variables.
// Helps catch typos like MDCARDS_SESION_URL.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies set environment values over the file config.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SessionURL != "" {
		cfg.Session.BaseURL = env.SessionURL
	}
	if env.SessionToken != "" {
		cfg.Session.Token = env.SessionToken
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.ContentBank != "" {
		cfg.ContentBank.Dir = env.ContentBank
	}
	if env.Engine != "" {
		cfg.Renderer.Engine = env.Engine
	}
	if env.Language != "" {
		cfg.Packager.Language = env.Language
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
