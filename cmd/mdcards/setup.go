package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/contentbank"
	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// contentBankDirName is the default content bank location under the user
// config directory.
const contentBankDirName = "contentbank"

// loadSettings resolves configuration in order: defaults, config file,
// environment. Commands apply their own flags on top.
func loadSettings(common commonFlags, env *Environment) (*config.Config, *envConfig, error) {
	ev := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	name := common.config
	if name == "" {
		name = ev.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			err = fmt.Errorf("loading config: %w", err)
			if errors.Is(err, config.ErrConfigNotFound) {
				err = withHint(err, hints.ForConfigNotFound(configSearchPaths(name)))
			}
			return nil, nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(ev, cfg)
	return cfg, ev, nil
}

// configSearchPaths lists where a config name is looked up, for hints.
func configSearchPaths(name string) []string {
	paths := []string{name + ".yaml", name + ".yml"}
	if p, err := config.UserConfigPath(name); err == nil {
		paths = append(paths, p)
	}
	return paths
}

// applyRendererFlags merges rendering flags into config. CLI values win.
func applyRendererFlags(f rendererFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Renderer.Engine = f.engine
	}
	if f.style != "" {
		cfg.Renderer.HighlightStyle = f.style
	}
	if f.noHighlight {
		disabled := false
		cfg.Renderer.Highlighting = &disabled
	}
	if f.hardWraps {
		cfg.Renderer.HardWraps = true
	}
}

// builderOptions translates config into Builder options. timeout <= 0 keeps
// the Builder default.
func builderOptions(cfg *config.Config, logger *slog.Logger, timeout time.Duration) ([]mdcards.Option, error) {
	lib, err := cfg.Packager.PinnedLibrary()
	if err != nil {
		return nil, err
	}

	opts := []mdcards.Option{
		mdcards.WithEngine(cfg.Renderer.Engine),
		mdcards.WithHighlighting(cfg.Renderer.HighlightingEnabled()),
		mdcards.WithHighlightStyle(cfg.Renderer.HighlightStyle),
		mdcards.WithHardWraps(cfg.Renderer.HardWraps),
		mdcards.WithSanitizer(sanitizerConfig(cfg.Sanitizer)),
		mdcards.WithLibrary(lib),
		mdcards.WithLanguage(cfg.Packager.Language),
		mdcards.WithDescription(cfg.Packager.Description),
		mdcards.WithScratchDir(cfg.Packager.ScratchDir),
		mdcards.WithLogger(logger),
	}
	if timeout > 0 {
		opts = append(opts, mdcards.WithTimeout(timeout))
	}

	registry, err := staticRegistry(cfg.Packager.Installed)
	if err != nil {
		return nil, err
	}
	if registry != nil {
		opts = append(opts, mdcards.WithLibraryRegistry(registry))
	}
	return opts, nil
}

// sanitizerConfig narrows the default allow-list with config settings.
func sanitizerConfig(c config.SanitizerConfig) mdcards.SanitizerConfig {
	sc := mdcards.DefaultSanitizerConfig()
	if len(c.URLSchemes) > 0 {
		sc.URLSchemes = c.URLSchemes
	}
	sc.AllowImages = !c.DenyImages
	sc.AllowClasses = !c.DenyClasses
	return sc
}

// staticRegistry builds a registry from packager.installed. An empty list
// returns nil so the packager trusts its pinned library.
func staticRegistry(installed []string) (mdcards.LibraryRegistry, error) {
	if len(installed) == 0 {
		return nil, nil
	}
	reg := h5p.NewStaticRegistry()
	for _, name := range installed {
		lib, err := h5p.ParseLibrary(name)
		if err != nil {
			return nil, err
		}
		reg.Install(lib)
	}
	return reg, nil
}

// resolveBankDir picks the content bank directory.
// Priority: flag > config/env > user config dir.
func resolveBankDir(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.ContentBank.Dir != "" {
		return cfg.ContentBank.Dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: no content bank directory (use --bank): %v", ErrUsage, err)
	}
	return filepath.Join(dir, config.AppName, contentBankDirName), nil
}

// openContentBank opens the content bank chosen by resolveBankDir.
func openContentBank(flagValue string, cfg *config.Config) (*contentbank.Store, error) {
	dir, err := resolveBankDir(flagValue, cfg)
	if err != nil {
		return nil, err
	}
	store, err := contentbank.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening content bank %s: %w", dir, err)
	}
	return store, nil
}

// resolveTimeoutWithEnv determines the build timeout.
// Priority: flag > env > 0 (Builder default).
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, flagValue)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}
	return envValue, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdcards.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdcards.MaxWorkers)
	}
	return nil
}

// cliLogger builds the logger for a command: --verbose forces debug,
// --quiet forces error, otherwise config decides.
func cliLogger(common commonFlags, cfg *config.Config, env *Environment) *slog.Logger {
	level := cfg.Log.Level
	switch {
	case common.verbose:
		level = "debug"
	case common.quiet:
		level = "error"
	}
	return newLogger(env.Stderr, level, cfg.Log.Format)
}
