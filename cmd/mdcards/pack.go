package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/fileutil"
	"github.com/alnah/go-mdcards/internal/hints"
	"github.com/alnah/go-mdcards/internal/yamlutil"
)

// deckFile is the on-disk deck format. JSON decks decode the same way.
type deckFile struct {
	Title       string       `yaml:"title" json:"title"`
	Description string       `yaml:"description" json:"description"`
	Cards       mdcards.Deck `yaml:"cards" json:"cards"`
}

// runPack packages a deck file into an archive in the output directory.
func runPack(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePackFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: pack takes exactly one deck file", ErrUsage)
	}
	path := positional[0]

	if !fileutil.HasExtension(path, deckExtensions...) {
		return withHint(
			fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path)),
			hints.ForDeckFile(path))
	}

	cfg, ev, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	applyPackFlags(flags, cfg)

	timeout, err := resolveTimeoutWithEnv(flags.timeout, ev.Timeout)
	if err != nil {
		return err
	}

	deck, err := readDeck(path)
	if err != nil {
		return err
	}
	if flags.description == "" && deck.Description != "" {
		cfg.Packager.Description = deck.Description
	}

	logger := cliLogger(flags.common, cfg, env)
	opts, err := builderOptions(cfg, logger, timeout)
	if err != nil {
		return err
	}

	if flags.bank != "" {
		store, err := openContentBank(flags.bank, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, mdcards.WithLibraryRegistry(store))
	}

	builder, err := mdcards.NewBuilder(opts...)
	if err != nil {
		return err
	}

	title := flags.title
	if title == "" {
		title = deck.Title
	}

	pkg, err := builder.Package(ctx, deck.Cards, title)
	if err != nil {
		var verr *mdcards.ValidationError
		if errors.As(err, &verr) {
			return withHint(err, hints.ForDeckFile(path))
		}
		return err
	}

	outDir := resolveOutputDir(flags.output, cfg)
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	outPath := filepath.Join(outDir, pkg.Filename)
	if err := writePackage(outPath, pkg.Data); err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%d cards, %d bytes)\n", outPath, len(deck.Cards), pkg.Size())
	}
	return nil
}

// applyPackFlags merges pack flags into config. CLI values win.
func applyPackFlags(f *packFlags, cfg *config.Config) {
	if f.language != "" {
		cfg.Packager.Language = f.language
	}
	if f.description != "" {
		cfg.Packager.Description = f.description
	}
	if f.library != "" {
		cfg.Packager.Library = f.library
	}
}

// readDeck decodes a deck file strictly.
func readDeck(path string) (*deckFile, error) {
	var deck deckFile
	if err := yamlutil.ReadFileStrict(path, &deck); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, yamlutil.ErrInputTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrReadDeck, err)
		}
		return nil, withHint(fmt.Errorf("%w: %w", ErrReadDeck, err), hints.ForDeckFile(path))
	}
	return &deck, nil
}

// writePackage writes archive data, creating parent directories.
func writePackage(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
