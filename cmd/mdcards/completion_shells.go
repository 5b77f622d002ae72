package main

import (
	"fmt"
	"io"
	"strings"
)

// commandNames returns the names of cmds in order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// flagWords returns every spelling of every flag of c.
func flagWords(c commandDef) []string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// globSuffixes turns "*.yaml,*.yml" into ["yaml", "yml"].
func globSuffixes(glob string) []string {
	var out []string
	for _, g := range strings.Split(glob, ",") {
		if s := strings.TrimPrefix(strings.TrimSpace(g), "*."); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# bash completion for mdcards\n\n")
	b.WriteString("_mdcards_files() {\n")
	b.WriteString("    local pattern=\"$1\" cur=\"$2\"\n")
	b.WriteString("    local restore\n")
	b.WriteString("    restore=$(shopt -p extglob)\n")
	b.WriteString("    shopt -s extglob\n")
	b.WriteString("    COMPREPLY=($(compgen -f -X \"!${pattern}\" -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n")
	b.WriteString("    eval \"${restore}\"\n")
	b.WriteString("}\n\n")

	b.WriteString("_mdcards_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		writeBashFlagValues(&b, c)
		if len(c.Flags) > 0 {
			b.WriteString("            if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(flagWords(c), " "))
			b.WriteString("                return 0\n")
			b.WriteString("            fi\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "            _mdcards_files '%s' \"${cur}\"\n", bashPattern(c.FilePattern))
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("    return 0\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _mdcards_completions mdcards\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeBashFlagValues completes the value of the flag just typed.
func writeBashFlagValues(b *strings.Builder, c commandDef) {
	var cases []string
	for _, f := range c.Flags {
		if f.Type == flagBool {
			continue
		}

		var action string
		switch f.Type {
		case flagEnum:
			action = fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"${cur}\"))", strings.Join(f.Values, " "))
		case flagFile:
			action = fmt.Sprintf("_mdcards_files '%s' \"${cur}\"", bashPattern(f.FileGlob))
		case flagDir:
			action = "COMPREPLY=($(compgen -d -- \"${cur}\"))"
		default:
			action = ":"
		}

		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		cases = append(cases, fmt.Sprintf(
			"                %s)\n                    %s\n                    return 0\n                    ;;\n", pattern, action))
	}
	if len(cases) == 0 {
		return
	}

	b.WriteString("            case \"${prev}\" in\n")
	for _, c := range cases {
		b.WriteString(c)
	}
	b.WriteString("            esac\n")
}

// bashPattern turns "*.md,*.markdown" into the extglob "*.@(md|markdown)".
func bashPattern(glob string) string {
	return "*.@(" + strings.Join(globSuffixes(glob), "|") + ")"
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshEscape escapes text inside a single-quoted _arguments spec.
var zshEscape = strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`)

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("#compdef mdcards\n\n")
	b.WriteString("_mdcards() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape.Replace(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C \\\n")
	b.WriteString("        '1:command:->command' \\\n")
	b.WriteString("        '*::arg:->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command)\n")
	b.WriteString("            _describe 'command' commands\n")
	b.WriteString("            ;;\n")
	b.WriteString("        args)\n")
	b.WriteString("            case $words[1] in\n")

	for _, c := range cmds {
		specs := make([]string, 0, len(c.Flags)+1)
		for _, f := range c.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(c.Args, " ")))
		case c.FilePattern != "":
			specs = append(specs, fmt.Sprintf(`'*:file:_files -g "%s"'`, zshGlob(c.FilePattern)))
		}
		if len(specs) == 0 {
			continue
		}

		fmt.Fprintf(&b, "                %s)\n", c.Name)
		b.WriteString("                    _arguments \\\n")
		for i, s := range specs {
			b.WriteString("                        " + s)
			if i < len(specs)-1 {
				b.WriteString(" \\")
			}
			b.WriteByte('\n')
		}
		b.WriteString("                    ;;\n")
	}

	b.WriteString("            esac\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_mdcards \"$@\"\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec builds one _arguments spec for f.
func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscape.Replace(f.Desc) + "]"

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		action = `:file:_files -g "` + zshGlob(f.FileGlob) + `"`
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ":"
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// zshGlob turns "*.md,*.markdown" into "*.md *.markdown".
func zshGlob(glob string) string {
	return strings.ReplaceAll(glob, ",", " ")
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

// fishEscape escapes text inside a single-quoted fish string.
var fishEscape = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# fish completion for mdcards\n\n")
	b.WriteString("function __fish_mdcards_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_mdcards_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = \"$argv[1]\"\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c mdcards -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdcards -n __fish_mdcards_needs_command -a %s -d '%s'\n",
			c.Name, fishEscape.Replace(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("-n '__fish_mdcards_using_command %s'", c.Name)
		b.WriteByte('\n')

		for _, f := range c.Flags {
			line := "complete -c mdcards " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long

			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -a '" + fishSuffixes(f.FileGlob) + "'"
			case flagDir:
				line += " -r -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}

			line += " -d '" + fishEscape.Replace(f.Desc) + "'"
			b.WriteString(line + "\n")
		}

		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c mdcards %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "complete -c mdcards %s -a '%s'\n", cond, fishSuffixes(c.FilePattern))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishSuffixes completes files by suffix for each glob entry.
func fishSuffixes(glob string) string {
	parts := make([]string, 0, 2)
	for _, s := range globSuffixes(glob) {
		parts = append(parts, "(__fish_complete_suffix ."+s+")")
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

// psQuote returns s as a single-quoted PowerShell string.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// psList returns items as a PowerShell array literal.
func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = psQuote(s)
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func generatePowerShell(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("# PowerShell completion for mdcards\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName mdcards -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		words := flagWords(c)
		if len(words) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psList(words))
	}
	b.WriteString("    }\n\n")

	// Enum values are keyed by flag spelling; metadata is shared across commands.
	b.WriteString("    $values = @{\n")
	seen := make(map[string]bool)
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        %s = %s\n", psQuote("--"+f.Long), psList(f.Values))
			if f.Short != "" {
				fmt.Fprintf(&b, "        %s = %s\n", psQuote("-"+f.Short), psList(f.Values))
			}
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $arguments = @{\n")
	for _, c := range cmds {
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "        %s = %s\n", psQuote(c.Name), psList(c.Args))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    $count = $elements.Count\n")
	b.WriteString("    if ($wordToComplete -ne '') { $count-- }\n\n")
	b.WriteString("    if ($count -le 1) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $command = $elements[1]\n")
	b.WriteString("    $prev = $elements[$count - 1]\n\n")
	b.WriteString("    if ($values.ContainsKey($prev)) {\n")
	b.WriteString("        $values[$prev] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    if ($wordToComplete -like '-*' -and $flags.ContainsKey($command)) {\n")
	b.WriteString("        $flags[$command] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    if ($arguments.ContainsKey($command)) {\n")
	b.WriteString("        $arguments[$command] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
