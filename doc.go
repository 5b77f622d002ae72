// Package mdcards turns generated session material into a course page: a
// sanitized HTML fragment rendered from Markdown, plus an embedded
// interactive card deck packaged as an archive.
//
// # Quick Start
//
// Render Markdown on its own:
//
//	html := mdcards.Render("# Cells\n\nThe **unit** of life.")
//
// Build a page with a deck:
//
//	b, err := mdcards.NewBuilder()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := b.Build(ctx, mdcards.Input{
//	    Markdown: summary,
//	    Cards: mdcards.Deck{
//	        {Question: "What is a cell?", Answer: "The unit of life."},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Package.Filename, result.Package.Data, 0644)
//
// result.HTML ends with an embed placeholder referencing the package file.
// Storing the archive where the placeholder resolves is the caller's job;
// ResolveEmbeds turns placeholders into iframes for display.
//
// # Pipeline
//
// Build runs these stages in order:
//
//  1. Validation (non-blank Markdown, every card has question and answer)
//  2. Markdown preprocessing (BOM, line endings, blank-line runs)
//  3. Markdown to HTML via the native tokenizer or Goldmark
//  4. Sanitization with an explicit allow-list (never skipped)
//  5. Packaging (skipped for an empty deck): library check, manifest and
//     content documents, archive, unique filename
//  6. Embed placeholder appended to the fragment
//
// # Errors
//
// Input problems return *ValidationError before any stage runs. Packaging
// problems return *PackagingError with Kind MissingDependency or
// ArchiveFailure; nothing is partially built. Rendering never fails on
// malformed Markdown: unmatched syntax passes through as text.
//
// # Configuration
//
// Use functional options to customize the builder:
//
//	b, err := mdcards.NewBuilder(
//	    mdcards.WithEngine(mdcards.EngineGoldmark),
//	    mdcards.WithHardWraps(true),
//	    mdcards.WithLibraryRegistry(registry),
//	    mdcards.WithLanguage("fr"),
//	)
//
// # Parallel Processing
//
// A Builder is safe for concurrent use. BuildAll runs a batch with bounded
// workers:
//
//	results := b.BuildAll(ctx, inputs, mdcards.ResolveWorkers(0))
package mdcards
