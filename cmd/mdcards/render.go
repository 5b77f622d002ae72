package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdcards"
	"github.com/alnah/go-mdcards/internal/assets"
	"github.com/alnah/go-mdcards/internal/fileutil"
)

// RenderResult holds the outcome of a single file.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Err        error
}

// runRender renders markdown files to sanitized HTML fragments.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, ev, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	applyRendererFlags(flags.renderer, cfg)

	timeout, err := resolveTimeoutWithEnv(flags.timeout, ev.Timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, resolveOutputDir(flags.output, cfg))
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	logger := cliLogger(flags.common, cfg, env)
	opts, err := builderOptions(cfg, logger, timeout)
	if err != nil {
		return err
	}
	builder, err := mdcards.NewBuilder(opts...)
	if err != nil {
		return err
	}

	var page *assets.PageRenderer
	if flags.page {
		if page, err = newPageRenderer(cfg); err != nil {
			return err
		}
	}

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}

	start := env.Now()
	results := renderBatch(ctx, builder, page, files, workers)
	logger.Debug("render finished",
		"files", len(files),
		"workers", mdcards.ResolveWorkers(workers),
		"elapsed", env.Now().Sub(start).Round(time.Millisecond))

	failed := printRenderResults(results, flags.common.quiet, env)
	if len(results) == 1 && failed == 1 {
		return results[0].Err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// renderBatch reads every file, builds the readable ones with bounded
// workers and writes each fragment next to its output path. A non-nil page
// wraps each fragment in a standalone document.
func renderBatch(ctx context.Context, builder *mdcards.Builder, page *assets.PageRenderer, files []FileToRender, workers int) []RenderResult {
	results := make([]RenderResult, len(files))
	inputs := make([]mdcards.Input, 0, len(files))
	indexes := make([]int, 0, len(files))

	for i, f := range files {
		results[i] = RenderResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
		content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
		if err != nil {
			results[i].Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
			continue
		}
		inputs = append(inputs, mdcards.Input{Markdown: string(content)})
		indexes = append(indexes, i)
	}

	for _, br := range builder.BuildAll(ctx, inputs, workers) {
		i := indexes[br.Index]
		if br.Err != nil {
			results[i].Err = br.Err
			continue
		}
		out := br.Result.HTML
		if page != nil {
			wrapped, err := page.Render(br.Result.Title, out)
			if err != nil {
				results[i].Err = err
				continue
			}
			out = wrapped
		}
		results[i].Err = writeHTML(results[i].OutputPath, out)
	}
	return results
}

// writeHTML writes a fragment, creating parent directories.
func writeHTML(path, fragment string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(fragment+"\n"), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// printRenderResults outputs per-file results and returns the failure count.
func printRenderResults(results []RenderResult, quiet bool, env *Environment) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			// A single failure is reported once, by runMain.
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}
		if !quiet {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}
