package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// retriesUnset detects if --retries was explicitly set. 0 is valid (no retry).
const retriesUnset = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// rendererFlags holds markdown rendering flags.
type rendererFlags struct {
	engine      string
	style       string
	noHighlight bool
	hardWraps   bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	renderer rendererFlags
	output   string
	workers  int
	timeout  string
	page     bool
}

// packFlags holds all flags for the pack command.
type packFlags struct {
	common      commonFlags
	output      string
	title       string
	language    string
	description string
	library     string
	bank        string
	timeout     string
}

// importFlags holds all flags for the import command.
type importFlags struct {
	common   commonFlags
	renderer rendererFlags
	bank     string
	baseURL  string
	title    string
	timeout  string
	retries  int
	preview  string
}

// bankFlags holds flags for commands that only touch the content bank.
type bankFlags struct {
	common     commonFlags
	bank       string
	json       bool
	dateFormat string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addRendererFlags adds markdown rendering flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "markdown engine: native, goldmark")
	fs.StringVar(&f.style, "highlight-style", "", "chroma style name for code blocks")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable syntax highlighting")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render single newlines as <br>")
}

// addBankFlag adds the content bank location flag to a FlagSet.
func addBankFlag(fs *flag.FlagSet, dst *string) {
	fs.StringVarP(dst, "bank", "b", "", "content bank directory")
}

// newFlagSet creates a FlagSet that reports errors through usage.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseFlagSet parses args and classifies parse errors as usage errors.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// renderFlagSet registers render command flags.
func renderFlagSet(w io.Writer) (*flag.FlagSet, *renderFlags) {
	f := &renderFlags{}
	fs := newFlagSet("render", w, printRenderUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-page timeout (e.g., 10s, 1m)")
	fs.BoolVar(&f.page, "page", false, "wrap each fragment in a standalone HTML page")
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	return fs, f
}

// packFlagSet registers pack command flags.
func packFlagSet(w io.Writer) (*flag.FlagSet, *packFlags) {
	f := &packFlags{}
	fs := newFlagSet("pack", w, printPackUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.title, "title", "", "deck title (\"\" = from deck file)")
	fs.StringVar(&f.language, "language", "", "manifest language code")
	fs.StringVar(&f.description, "description", "", "text shown above the cards")
	fs.StringVar(&f.library, "library", "", "content library, e.g. \"H5P.Dialogcards 1.9\"")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "packaging timeout (e.g., 10s)")
	addBankFlag(fs, &f.bank)
	addCommonFlags(fs, &f.common)
	return fs, f
}

// importFlagSet registers import command flags.
func importFlagSet(w io.Writer) (*flag.FlagSet, *importFlags) {
	f := &importFlags{}
	fs := newFlagSet("import", w, printImportUsage)

	fs.StringVar(&f.baseURL, "session-url", "", "session API base URL")
	fs.StringVar(&f.title, "title", "", "page title (\"\" = from session)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page build timeout (e.g., 30s)")
	fs.IntVar(&f.retries, "retries", retriesUnset, "session API retries (0 = none)")
	fs.StringVar(&f.preview, "preview", "", "write an HTML preview with resolved embeds")
	addBankFlag(fs, &f.bank)
	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	return fs, f
}

// bankFlagSet registers flags for install, list and doctor.
func bankFlagSet(name string, w io.Writer, usage func(io.Writer)) (*flag.FlagSet, *bankFlags) {
	f := &bankFlags{}
	fs := newFlagSet(name, w, usage)

	addBankFlag(fs, &f.bank)
	addCommonFlags(fs, &f.common)
	if name == "list" || name == "doctor" {
		fs.BoolVar(&f.json, "json", false, "output JSON")
	}
	if name == "list" {
		fs.StringVar(&f.dateFormat, "date-format", "", "CREATED column format or preset (e.g., DD/MM/YYYY, iso)")
	}
	return fs, f
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	fs, f := renderFlagSet(w)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePackFlags parses pack command flags and returns positional args.
func parsePackFlags(args []string, w io.Writer) (*packFlags, []string, error) {
	fs, f := packFlagSet(w)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseImportFlags parses import command flags and returns positional args.
func parseImportFlags(args []string, w io.Writer) (*importFlags, []string, error) {
	fs, f := importFlagSet(w)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseBankFlags parses flags for install, list and doctor.
func parseBankFlags(name string, args []string, w io.Writer, usage func(io.Writer)) (*bankFlags, []string, error) {
	fs, f := bankFlagSet(name, w, usage)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
