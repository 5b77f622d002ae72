package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string          `json:"status"` // "ready", "warnings", "errors"
	Config      configInfo      `json:"config"`
	ContentBank contentBankInfo `json:"contentBank"`
	Session     sessionInfo     `json:"session"`
	Env         envInfo         `json:"environment"`
	System      systemInfo      `json:"system"`
	Warnings    []string        `json:"warnings,omitempty"`
	Errors      []string        `json:"errors,omitempty"`
}

// configInfo describes the configuration in effect.
type configInfo struct {
	Source  string `json:"source"` // file name or "defaults"
	Engine  string `json:"engine"`
	Library string `json:"library"`
}

// contentBankInfo holds content bank checks.
type contentBankInfo struct {
	Dir              string `json:"dir"`
	Open             bool   `json:"open"`
	LibraryInstalled bool   `json:"libraryInstalled"`
	Packages         int    `json:"packages"`
}

// sessionInfo holds session API settings checks.
type sessionInfo struct {
	BaseURL  string `json:"baseURL,omitempty"`
	HasToken bool   `json:"hasToken"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	ScratchDir      string `json:"scratch_dir"`
	ScratchWritable bool   `json:"scratch_writable"`
	PageAssets      string `json:"page_assets"`
	PageAssetsOK    bool   `json:"page_assets_ok"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, _, err := parseBankFlags("doctor", args, env.Stderr, printDoctorUsage)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, flags, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, flags *bankFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	cfg := checkConfig(result, flags, env)
	checkContentBank(ctx, result, flags.bank, cfg)
	checkSession(result, cfg)
	checkEnvironment(result, env.Getenv)
	checkSystem(result, cfg)
	checkPageAssets(result, cfg)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads configuration the way the other commands do. On
// failure the defaults are used for the remaining checks.
func checkConfig(result *doctorResult, flags *bankFlags, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	if flags.common.config != "" {
		result.Config.Source = flags.common.config
	} else if p := env.Getenv(envConfigPath); p != "" {
		result.Config.Source = p
	}

	cfg, _, err := loadSettings(flags.common, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		cfg = config.DefaultConfig()
	}

	result.Config.Engine = cfg.Renderer.Engine
	if lib, err := cfg.Packager.PinnedLibrary(); err == nil {
		result.Config.Library = lib.String()
	}
	return cfg
}

// checkContentBank opens the content bank and looks up the pinned library.
func checkContentBank(ctx context.Context, result *doctorResult, bankFlag string, cfg *config.Config) {
	dir, err := resolveBankDir(bankFlag, cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.ContentBank.Dir = dir

	store, err := openContentBank(bankFlag, cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	defer store.Close()
	result.ContentBank.Open = true

	if lib, err := cfg.Packager.PinnedLibrary(); err == nil {
		ok, err := store.HasLibrary(ctx, lib)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, err.Error())
		case !ok:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s is not installed; imports with cards will fail. Run 'mdcards install'", lib))
		default:
			result.ContentBank.LibraryInstalled = true
		}
	}

	if records, err := store.Packages(ctx); err == nil {
		result.ContentBank.Packages = len(records)
	}
}

// checkSession verifies that the session API is configured.
func checkSession(result *doctorResult, cfg *config.Config) {
	result.Session.BaseURL = cfg.Session.BaseURL
	result.Session.HasToken = cfg.Session.Token != ""

	if cfg.Session.BaseURL == "" {
		result.Warnings = append(result.Warnings,
			"Session API URL not set; import is unavailable. Set MDCARDS_SESSION_URL")
	} else if !result.Session.HasToken {
		result.Warnings = append(result.Warnings,
			"Session API token not set. Set MDCARDS_SESSION_TOKEN if the API requires one")
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv(envContainer) == "1" {
		return true, envContainer + "=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that packaging can create scratch directories.
func checkSystem(result *doctorResult, cfg *config.Config) {
	root := cfg.Packager.ScratchDir
	if root == "" {
		root = os.TempDir()
	}
	result.System.ScratchDir = root

	_, cleanup, err := fileutil.ScratchDir(cfg.Packager.ScratchDir, "mdcards-doctor")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Scratch directory not writable: %s", root))
		return
	}
	_ = cleanup()
	result.System.ScratchWritable = true
}

// checkPageAssets loads the preview template and stylesheet once, the way
// render --page and import --preview will.
func checkPageAssets(result *doctorResult, cfg *config.Config) {
	result.System.PageAssets = cfg.Preview.AssetPath
	if result.System.PageAssets == "" {
		result.System.PageAssets = "built-in"
	}

	if _, err := newPageRenderer(cfg); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Page assets unusable: %v", err))
		return
	}
	result.System.PageAssetsOK = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdcards doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	fmt.Fprintf(w, "  [OK] Engine: %s\n", r.Config.Engine)
	if r.Config.Library != "" {
		fmt.Fprintf(w, "  [OK] Library: %s\n", r.Config.Library)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content bank")
	if r.ContentBank.Open {
		fmt.Fprintf(w, "  [OK] Open at %s\n", r.ContentBank.Dir)
		fmt.Fprintf(w, "  [OK] Packages: %d\n", r.ContentBank.Packages)
		if r.ContentBank.LibraryInstalled {
			fmt.Fprintln(w, "  [OK] Library: installed")
		} else {
			fmt.Fprintln(w, "  [WARN] Library: not installed")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not available")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Session API")
	if r.Session.BaseURL != "" {
		fmt.Fprintf(w, "  [OK] URL: %s\n", r.Session.BaseURL)
	} else {
		fmt.Fprintln(w, "  [WARN] URL: not set")
	}
	if r.Session.HasToken {
		fmt.Fprintln(w, "  [OK] Token: set")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.ScratchWritable {
		fmt.Fprintf(w, "  [OK] Scratch directory: %s\n", r.System.ScratchDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Scratch directory not writable: %s\n", r.System.ScratchDir)
	}
	if r.System.PageAssetsOK {
		fmt.Fprintf(w, "  [OK] Page assets: %s\n", r.System.PageAssets)
	} else {
		fmt.Fprintf(w, "  [ERROR] Page assets unusable: %s\n", r.System.PageAssets)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
