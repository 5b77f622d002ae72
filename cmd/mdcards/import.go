package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/config"
	"github.com/alnah/go-mdcards/internal/contentbank"
	"github.com/alnah/go-mdcards/internal/hints"
	"github.com/alnah/go-mdcards/internal/session"
)

// runImport fetches a session, builds its page and stores page and deck in
// the content bank. Re-importing a session replaces its page and deck.
func runImport(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseImportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: import takes exactly one session id", ErrUsage)
	}
	sessionID := positional[0]

	cfg, ev, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	applyRendererFlags(flags.renderer, cfg)
	applyImportFlags(flags, cfg)

	timeout, err := resolveTimeoutWithEnv(flags.timeout, ev.Timeout)
	if err != nil {
		return err
	}

	logger := cliLogger(flags.common, cfg, env)

	client, err := newSessionClient(cfg.Session, logger)
	if err != nil {
		return err
	}

	store, err := openContentBank(flags.bank, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := builderOptions(cfg, logger, timeout)
	if err != nil {
		return err
	}
	// The content bank is the authority on installed libraries.
	opts = append(opts, mdcards.WithLibraryRegistry(store))

	builder, err := mdcards.NewBuilder(opts...)
	if err != nil {
		return err
	}

	sess, err := client.Fetch(ctx, sessionID)
	if err != nil {
		err = fmt.Errorf("fetching session %s: %w", sessionID, err)
		if errors.Is(err, session.ErrUnauthorized) {
			err = withHint(err, hints.ForSessionAuth(cfg.Session.Token != ""))
		}
		return err
	}

	title := flags.title
	if title == "" {
		title = sess.Title
	}

	res, err := builder.Build(ctx, mdcards.Input{
		Markdown: sess.Summary,
		Title:    title,
		Cards:    mdcards.Deck(sess.Flashcards),
	})
	if err != nil {
		return fmt.Errorf("building page for session %s: %w", sess.ID, err)
	}

	page, err := savePage(ctx, store, sess.ID, res)
	if err != nil {
		return err
	}
	logger.Debug("session imported",
		slog.String("session", sess.ID),
		slog.Int("cards", len(sess.Flashcards)),
		slog.String("package_id", page.PackageID))

	if flags.preview != "" {
		if err := writePreview(flags.preview, cfg, store, res); err != nil {
			return err
		}
	}

	if !flags.common.quiet {
		if res.HasEmbed() {
			fmt.Fprintf(env.Stdout, "Imported %s: %q with %d cards (%s)\n",
				sess.ID, res.Title, len(sess.Flashcards), res.Package.Filename)
		} else {
			fmt.Fprintf(env.Stdout, "Imported %s: %q without cards\n", sess.ID, res.Title)
		}
	}
	return nil
}

// applyImportFlags merges import flags into config. CLI values win.
func applyImportFlags(f *importFlags, cfg *config.Config) {
	if f.baseURL != "" {
		cfg.Session.BaseURL = f.baseURL
	}
	if f.retries != retriesUnset {
		retries := f.retries
		cfg.Session.Retries = &retries
	}
}

// newSessionClient builds the API client from session config.
func newSessionClient(cfg config.SessionConfig, logger *slog.Logger) (*session.Client, error) {
	if cfg.Retries != nil && *cfg.Retries < 0 {
		return nil, fmt.Errorf("%w: --retries must be >= 0", ErrUsage)
	}
	return session.NewClient(cfg.BaseURL, cfg.Token,
		session.WithTimeout(cfg.Timeout),
		session.WithRetries(cfg.EffectiveRetries()),
		session.WithLogger(logger),
	)
}

// savePage stores the package (if any) and the page referencing it.
func savePage(ctx context.Context, store *contentbank.Store, sessionID string, res *mdcards.Result) (*contentbank.Page, error) {
	page := contentbank.Page{SessionID: sessionID, Title: res.Title, HTML: res.HTML}

	if res.HasEmbed() {
		rec, err := store.SavePackage(ctx, res.Package)
		if err != nil {
			return nil, fmt.Errorf("storing package: %w", err)
		}
		page.PackageID = rec.ID
	}

	if err := store.SavePage(ctx, page); err != nil {
		err = fmt.Errorf("storing page: %w", err)
		if page.PackageID != "" {
			// The page never referenced the package; do not leave it stored.
			if cerr := store.DeletePackage(context.WithoutCancel(ctx), page.PackageID); cerr != nil {
				err = errors.Join(err, fmt.Errorf("removing unreferenced package: %w", cerr))
			}
		}
		return nil, err
	}
	return &page, nil
}

// writePreview writes a standalone page with embeds resolved to the stored
// files.
func writePreview(path string, cfg *config.Config, store *contentbank.Store, res *mdcards.Result) error {
	page, err := newPageRenderer(cfg)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(filepath.Dir(store.PackagePath("x")))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	base := (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String()

	resolved, err := mdcards.ResolveEmbeds(res.HTML, base)
	if err != nil {
		return fmt.Errorf("resolving embeds: %w", err)
	}
	doc, err := page.Render(res.Title, resolved)
	if err != nil {
		return err
	}
	return writeHTML(path, doc)
}
