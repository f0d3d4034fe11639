/*
Cococ compiles one or more source files written in the surface language
into plain target-language source text.

Usage:

	cococ [flags] [file ...]

The flags are:

	-v, --version
		Give the current version of the compiler and then exit.

	-t, --target VERSION
		Target a specific version ("2", "3", "27", "35", ...). Defaults to
		universal mode, which emits runtime version guards instead of
		picking a side.

	-c, --config FILE
		Load driver options from a TOML config file before applying flags,
		so a flag on the command line always overrides the file.

	-s, --strict
		Promote style warnings to errors.

	-m, --minify
		Suppress line-number comments and minify the emitted header.

	-l, --line-numbers
		Emit "# <orig-line>" comments after each compiled statement.

	-k, --keep-lines
		Trail the compiled file with the original source as a comment.

	-i, --interactive
		Start a line-at-a-time interactive session (parse_single mode)
		instead of compiling files. Uses GNU readline-style editing when
		stdin and stdout are both a tty, unless -d is also given.

	-d, --direct
		Force reading directly from stdin in interactive mode even when a
		tty is available.

	-e, --eval COMMANDS
		Immediately compile and run the given line(s) in parse_single mode
		before (or instead of) starting an interactive session. Multiple
		logical lines may be given in one shell-quoted string; they are
		split respecting quoting, not on a bare separator character.

With no file arguments and without -i, source is read from stdin and the
compiled result (parse_exec mode, no header) is written to stdout.

Given file arguments, each is compiled in parse_file mode and the result
is written alongside it with a target-language extension, reporting byte
and line counts as it goes.
*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cococ "github.com/dekarrin/cococ"
	"github.com/dekarrin/cococ/internal/config"
	"github.com/dekarrin/cococ/internal/diag"
	"github.com/dekarrin/cococ/internal/version"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates a diagnostic aborted at least one
	// compilation.
	ExitCompileError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading configuration or reading input.
	ExitInitError
)

var (
	returnCode = ExitSuccess

	flagVersion     = pflag.BoolP("version", "v", false, "Gives the version info")
	flagTarget      = pflag.StringP("target", "t", "", "Target a specific version, or universal mode if omitted")
	flagConfig      = pflag.StringP("config", "c", "", "Load driver options from the given TOML config file")
	flagStrict      = pflag.BoolP("strict", "s", false, "Promote style warnings to errors")
	flagMinify      = pflag.BoolP("minify", "m", false, "Suppress line-number comments and minify the header")
	flagLineNumbers = pflag.BoolP("line-numbers", "l", false, "Emit original-line comments after each statement")
	flagKeepLines   = pflag.BoolP("keep-lines", "k", false, "Trail output with the original source as a comment")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an interactive parse_single session")
	flagDirect      = pflag.BoolP("direct", "d", false, "Force reading directly from stdin in interactive mode")
	flagCommand     = pflag.StringP("eval", "e", "", "Immediately compile and run the given shell-quoted line(s)")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	c := cococ.New(cfg)

	if *flagCommand != "" {
		lines, err := shellquote.Split(*flagCommand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: splitting --eval commands: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		for _, line := range lines {
			compileLine(c, line)
		}
	}

	if *flagInteractive {
		runInteractive(c)
		return
	}
	if *flagCommand != "" {
		return
	}

	args := pflag.Args()
	if len(args) == 0 {
		runStdin(c)
		return
	}
	runFiles(c, args)
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if *flagTarget != "" {
		cfg.Target = *flagTarget
	}
	if *flagStrict {
		cfg.Strict = true
	}
	if *flagMinify {
		cfg.Minify = true
	}
	if *flagLineNumbers {
		cfg.LineNumbers = true
	}
	if *flagKeepLines {
		cfg.KeepLines = true
	}
	return cfg, nil
}

// runStdin compiles stdin to stdout in parse_exec mode (no header), for
// use as the tail end of a shell pipeline.
func runStdin(c *cococ.Compiler) {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading stdin: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	result, err := c.Compile(cococ.ModeExec, string(src), cococ.Options{})
	if err != nil {
		reportDiagnostic(err)
		return
	}
	fmt.Print(result.Code)
	reportWarnings(result.Warnings)
}

// runFiles compiles each named file in parse_file mode, writing the
// result next to the source with a ".py" extension.
func runFiles(c *cococ.Compiler, paths []string) {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", path, err.Error())
			returnCode = ExitInitError
			continue
		}

		result, err := c.Compile(cococ.ModeFile, string(src), cococ.Options{
			Interpreter: "python3",
			Encoding:    "utf-8",
		})
		if err != nil {
			reportDiagnostic(err)
			continue
		}
		reportWarnings(result.Warnings)

		outPath := outputPath(path)
		if err := os.WriteFile(outPath, []byte(result.Code), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: writing %s: %s\n", outPath, err.Error())
			returnCode = ExitInitError
			continue
		}

		fmt.Printf("%s -> %s (%s, %s)\n", path, outPath,
			humanize.Bytes(uint64(len(result.Code))),
			humanize.Comma(int64(strings.Count(result.Code, "\n"))))
	}
}

func outputPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + ".py"
}

// runInteractive drives a parse_single REPL: each logical line is
// compiled independently and its target-code translation is echoed back,
// matching spec §6.1's parse_single mode.
func runInteractive(c *cococ.Compiler) {
	useReadline := !*flagDirect && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	if useReadline {
		runInteractiveReadline(c)
		return
	}
	runInteractiveDirect(c)
}

func runInteractiveReadline(c *cococ.Compiler) {
	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: starting readline: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		compileLine(c, line)
	}
}

func runInteractiveDirect(c *cococ.Compiler) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			return
		}
		compileLine(c, scanner.Text())
	}
}

func compileLine(c *cococ.Compiler, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	result, err := c.Compile(cococ.ModeSingle, line, cococ.Options{})
	if err != nil {
		reportDiagnostic(err)
		return
	}
	fmt.Print(result.Code)
	if !strings.HasSuffix(result.Code, "\n") {
		fmt.Println()
	}
	reportWarnings(result.Warnings)
}

func reportDiagnostic(err error) {
	if d, ok := err.(*diag.Diagnostic); ok {
		fmt.Fprintln(os.Stderr, d.Render())
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
	}
	returnCode = ExitCompileError
}

func reportWarnings(bag *diag.Bag) {
	if bag == nil {
		return
	}
	for _, w := range bag.All() {
		fmt.Fprintln(os.Stderr, w.Render())
	}
}
