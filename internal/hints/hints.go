// Package hints builds the actionable suffixes appended to CLI errors.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdcards/internal/fileutil"
)

// Environment variables the hints refer to.
const (
	EnvSessionURL   = "MDCARDS_SESSION_URL"
	EnvSessionToken = "MDCARDS_SESSION_TOKEN"
)

// ForSessionAuth explains a rejected request. tokenSet tells whether any
// token, from env or config, was sent.
func ForSessionAuth(tokenSet bool) string {
	if !tokenSet {
		return format("set " + EnvSessionToken + " or session.token in the config")
	}
	return format("the session API rejected the token; check that " + EnvSessionToken + " has not expired")
}

func ForSessionURL() string {
	return format("set " + EnvSessionURL + " or session.baseURL in the config")
}

func ForMissingLibrary(library string) string {
	return format("run `mdcards install \"" + library + "\"` or list it under packager.installed")
}

func ForTimeout() string {
	return format("for slow session APIs or large decks, use --timeout flag")
}

// ForConfigNotFound suggests --config, or creating the file in the user
// config directory when that location was searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-mdcards/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDeckFile points at the extension when that is the problem, else at the
// card fields.
func ForDeckFile(path string) string {
	if path != "" && !fileutil.HasExtension(path, ".yaml", ".yml", ".json") {
		return format("deck files are .yaml, .yml or .json")
	}
	return format("each card needs a non-blank question and answer")
}

// ForPageAssets describes where page assets are looked up.
func ForPageAssets(assetPath string) string {
	if assetPath == "" {
		return format("built-in assets are style \"default\" and template \"page\"; set preview.assetPath for custom ones")
	}
	return format("custom assets live in " + filepath.Join(assetPath, "styles", "<name>.css") +
		" and " + filepath.Join(assetPath, "templates", "<name>.html"))
}

func ForDateFormat() string {
	return format("use tokens like YYYY-MM-DD HH:mm, [literal text], or a preset: iso, european, us, long, datetime")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
