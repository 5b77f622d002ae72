package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render markdown files to sanitized HTML fragments")
	fmt.Fprintln(w, "  pack       Package a card deck file as an archive")
	fmt.Fprintln(w, "  import     Fetch a session and store its page and deck")
	fmt.Fprintln(w, "  install    Register content libraries in the content bank")
	fmt.Fprintln(w, "  list       List packages stored in the content bank")
	fmt.Fprintln(w, "  doctor     Check configuration and environment")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'mdcards notes.md' is shorthand for 'mdcards render notes.md'.")
	fmt.Fprintln(w, "Run 'mdcards help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

func printRendererFlags(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -e, --engine <s>          Markdown engine: native, goldmark")
	fmt.Fprintln(w, "      --highlight-style <s> Chroma style for code blocks")
	fmt.Fprintln(w, "      --no-highlight        Disable syntax highlighting")
	fmt.Fprintln(w, "      --hard-wraps          Render single newlines as <br>")
	fmt.Fprintln(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown files to sanitized HTML fragments.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-page timeout (e.g., 10s, 1m)")
	fmt.Fprintln(w, "      --page                Wrap each fragment in a standalone HTML page")
	fmt.Fprintln(w, "                            (assets from config preview.assetPath)")
	fmt.Fprintln(w)
	printRendererFlags(w)
	printCommonFlags(w)
}

// printPackUsage prints usage for the pack command.
func printPackUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards pack <deck.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Package a card deck file (YAML or JSON) as an archive.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Deck file:")
	fmt.Fprintln(w, "  title: Cells")
	fmt.Fprintln(w, "  cards:")
	fmt.Fprintln(w, "    - question: What is a cell?")
	fmt.Fprintln(w, "      answer: The unit of life.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Package:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to the deck)")
	fmt.Fprintln(w, "      --title <s>           Deck title (\"\" = from deck file)")
	fmt.Fprintln(w, "      --language <s>        Manifest language code")
	fmt.Fprintln(w, "      --description <s>     Text shown above the cards")
	fmt.Fprintln(w, "      --library <s>         Content library, e.g. \"H5P.Dialogcards 1.9\"")
	fmt.Fprintln(w, "  -b, --bank <dir>          Check the library against this content bank")
	fmt.Fprintln(w, "  -t, --timeout <d>         Packaging timeout (e.g., 10s)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printImportUsage prints usage for the import command.
func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards import <session-id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fetch a session, build its page and deck, and store both in the content bank.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session API:")
	fmt.Fprintln(w, "      --session-url <url>   Session API base URL (or MDCARDS_SESSION_URL)")
	fmt.Fprintln(w, "      --retries <n>         Retries on transient failures (0 = none)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --title <s>           Page title (\"\" = from session)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page build timeout (e.g., 30s)")
	fmt.Fprintln(w, "  -b, --bank <dir>          Content bank directory")
	fmt.Fprintln(w, "      --preview <path>      Write an HTML preview with resolved embeds")
	fmt.Fprintln(w)
	printRendererFlags(w)
	printCommonFlags(w)
}

// printInstallUsage prints usage for the install command.
func printInstallUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards install [library...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Register content libraries in the content bank.")
	fmt.Fprintln(w, "Without arguments, installs the pinned library (see packager.library).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  library  Library in \"Machine.Name MAJOR.MINOR\" form")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content bank:")
	fmt.Fprintln(w, "  -b, --bank <dir>          Content bank directory")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printListUsage prints usage for the list command.
func printListUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards list [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List packages stored in the content bank, newest first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content bank:")
	fmt.Fprintln(w, "  -b, --bank <dir>          Content bank directory")
	fmt.Fprintln(w, "      --json                Output JSON")
	fmt.Fprintln(w, "      --date-format <fmt>   CREATED column format (default: YYYY-MM-DD HH:mm)")
	fmt.Fprintln(w, "                            Tokens: YYYY YY MMMM MMM MM M DD D HH mm ss, [literal]")
	fmt.Fprintln(w, "                            Presets: iso, european, us, long, datetime")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdcards doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check configuration, content bank, session API settings and environment.")
	fmt.Fprintln(w, "Exits 1 when errors are found; warnings do not fail.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -b, --bank <dir>          Content bank directory")
	fmt.Fprintln(w, "      --json                Output JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "pack":
		printPackUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "install":
		printInstallUsage(env.Stdout)
	case "list":
		printListUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdcards version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdcards help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	}
}
