package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/dateutil"
	"github.com/alnah/go-mdcards/internal/h5p"
)

// runInstall records content libraries as installed in the content bank.
// Without arguments it installs the pinned library.
func runInstall(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBankFlags("install", args, env.Stderr, printInstallUsage)
	if err != nil {
		return err
	}

	cfg, _, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}

	var libs []mdcards.Library
	if len(positional) == 0 {
		lib, err := cfg.Packager.PinnedLibrary()
		if err != nil {
			return err
		}
		libs = append(libs, lib)
	}
	for _, arg := range positional {
		lib, err := h5p.ParseLibrary(arg)
		if err != nil {
			return err
		}
		libs = append(libs, lib)
	}

	store, err := openContentBank(flags.bank, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, lib := range libs {
		if err := store.InstallLibrary(ctx, lib); err != nil {
			return err
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Installed %s\n", lib)
		}
	}
	return nil
}

// packageListing is the JSON shape of one stored package.
type packageListing struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// runList prints the packages stored in the content bank.
func runList(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBankFlags("list", args, env.Stderr, printListUsage)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: list takes no arguments", ErrUsage)
	}

	cfg, _, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}

	layout, err := listLayout(flags.dateFormat, cfg.ContentBank.DateFormat)
	if err != nil {
		return err
	}

	store, err := openContentBank(flags.bank, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Packages(ctx)
	if err != nil {
		return err
	}

	if flags.json {
		out := make([]packageListing, len(records))
		for i, r := range records {
			out[i] = packageListing(r)
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(records) == 0 {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "No packages stored.")
		}
		return nil
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tTITLE\tSIZE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Filename, r.Title, r.Size, r.CreatedAt.Local().Format(layout))
	}
	return tw.Flush()
}

// listLayout picks the flag format, then the config one, then the default.
func listLayout(flagValue, configValue string) (string, error) {
	format := dateutil.DefaultFormat
	switch {
	case flagValue != "":
		format = flagValue
	case configValue != "":
		format = configValue
	}
	return dateutil.Layout(format)
}
