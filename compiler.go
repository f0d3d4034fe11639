// Package cococ implements the full compilation pipeline described by
// spec §§3-6: ten sequenced stages (S1 Prepare through S10 Polish) that
// turn a source text and a driver-facing Config into either compiled
// target text or a positioned diag.Diagnostic.
//
// A Compiler holds no shared mutable state beyond its own Config and is
// safe to use from exactly one goroutine at a time, per spec §5 and
// SPEC_FULL §5.A: a driver that wants N concurrent workers instantiates N
// Compilers, shipping only the (immutable, rezi-encodable) Config between
// processes.
package cococ

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cococ/internal/config"
	"github.com/dekarrin/cococ/internal/diag"
	"github.com/dekarrin/cococ/internal/header"
	"github.com/dekarrin/cococ/internal/indentproc"
	"github.com/dekarrin/cococ/internal/lex"
	"github.com/dekarrin/cococ/internal/litproc"
	"github.com/dekarrin/cococ/internal/polish"
	"github.com/dekarrin/cococ/internal/pygrammar"
	"github.com/dekarrin/cococ/internal/replproc"
	"github.com/dekarrin/cococ/internal/sidetable"
	"github.com/dekarrin/cococ/internal/source"
	"github.com/dekarrin/cococ/internal/version"
)

// Mode selects one of the six function-level compilation entry points of
// spec §6.1. Each mode differs only in which header (if any) is
// synthesized and whether the body must reduce to a single expression or
// logical line.
type Mode int

const (
	// ModeSingle compiles one logical line (the parse_single REPL shape):
	// no header, target code only.
	ModeSingle Mode = iota

	// ModeFile compiles full source to a standalone module: KindFile
	// header (content hash on line 3) plus body.
	ModeFile

	// ModeExec compiles full source with no header at all, for embedding
	// in an already-headered host (e.g. exec()).
	ModeExec

	// ModePackage compiles a package member: KindPackage header (relative
	// runtime import at PackageDepth) plus body.
	ModePackage

	// ModeBlock compiles a source fragment with no header, same as
	// ModeExec but named separately per spec §6.1's table (a fragment
	// rather than a complete module).
	ModeBlock

	// ModeEval compiles a single expression: target expression text with
	// the trailing newline stripped, no header.
	ModeEval
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "parse_single"
	case ModeFile:
		return "parse_file"
	case ModeExec:
		return "parse_exec"
	case ModePackage:
		return "parse_package"
	case ModeBlock:
		return "parse_block"
	case ModeEval:
		return "parse_eval"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options bundles the per-call values a compile needs beyond source text
// and Mode: the parts of header.Params that aren't derived from Config,
// plus PackageDepth for ModePackage.
type Options struct {
	// Interpreter is the shebang interpreter name emitted by ModeFile's
	// header, e.g. "python3". Ignored by modes that emit no header.
	Interpreter string

	// Encoding is the source encoding declared on a ModeFile header's
	// second line, e.g. "utf-8".
	Encoding string

	// Docstring is reproduced verbatim in a ModeFile header, if non-empty.
	Docstring string

	// PackageDepth is the relative-import dot count used only by
	// ModePackage.
	PackageDepth int
}

// Result is the successful output of a Compile call.
type Result struct {
	// Code is the final compiled text: header (if any) plus body, cleaned
	// by S10 Polish.
	Code string

	// Hash is the content hash folded into any emitted header (or, for
	// header-less modes, the hash the driver would use as a cache key
	// anyway), per spec §8 invariant 5.
	Hash string

	// Warnings accumulates every non-fatal diagnostic raised over the
	// compile (strict-adjacent style warnings, indent warnings promoted
	// under Config.Strict are instead returned as the error).
	Warnings *diag.Bag
}

// Compiler drives one compilation at a time. It carries no state besides
// its Config and is not safe for concurrent use by multiple goroutines;
// per SPEC_FULL §5.A, a driver wanting parallelism instantiates one
// Compiler per worker.
type Compiler struct {
	cfg config.Config
}

// New returns a Compiler configured by cfg. cfg is copied; later mutation
// of the caller's value has no effect.
func New(cfg config.Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Config returns the Compiler's configuration.
func (c *Compiler) Config() config.Config {
	return c.cfg
}

// Compile runs the full S1-S10 pipeline over src under mode, returning
// either a Result or the first fatal diag.Diagnostic raised, per spec §7's
// "one diagnostic per compilation" rule.
func (c *Compiler) Compile(mode Mode, src string, opts Options) (*Result, error) {
	warnings := diag.NewBag()

	// S1 Prepare.
	normalized := source.Prepare(src)

	// S2/S3: string, comment, and passthrough extraction into a shared
	// side table, recording skipped (fully-consumed) physical lines in a
	// SkipSet so later stages can map a BracketedText line back to its
	// original-source line (spec §8 invariant 3).
	st := sidetable.New()
	skip := sidetable.NewSkipSet()

	bracketed, err := litproc.ExtractStrings(normalized, st, skip)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}
	bracketed, err = litproc.ExtractPassthroughs(bracketed, st, skip)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}

	// Unicode operator-alias normalization runs here: after marker
	// substitution so an alias glyph that happened to appear inside a
	// string or comment literal (now an opaque marker) is never touched,
	// and before S4 so the indent processor and lexer both see only ASCII
	// operator spellings.
	bracketed = pygrammar.NormalizeAliases(bracketed)

	// S4 IndentProc: convert significant whitespace to OPEN/CLOSE
	// sentinels.
	indentResult, err := indentproc.Process(bracketed, skip, c.cfg.Strict)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}
	for _, w := range indentResult.Warnings {
		warnings.Add(diag.Warn(diag.KindStyleError, w.Error(), diag.Position{}))
	}

	// S5 Parse: lex then build the computation graph.
	toks, err := lex.New(indentResult.Text).Tokens()
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}

	parseOpts := pygrammar.Options{Strict: c.cfg.Strict, Target: c.cfg.Target}
	p := pygrammar.New(toks, parseOpts)

	var parseResult interface {
		Evaluate(string) (string, error)
	}
	if mode == ModeEval {
		r, err := p.ParseExpr()
		if err != nil {
			return nil, c.wrapStageError(err, normalized, skip)
		}
		parseResult = r
	} else {
		r, err := p.ParseModule()
		if err != nil {
			return nil, c.wrapStageError(err, normalized, skip)
		}
		parseResult = r
	}

	// S6 Evaluate: a single post-order walk of the graph. Its output is
	// still BracketedText — suite bodies are still OPEN/CLOSE-wrapped, not
	// yet real whitespace; only S7 below turns sentinel nesting into
	// actual indentation.
	evaluated, err := parseResult.Evaluate(indentResult.Text)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}

	// S7 ReindProc: sentinels -> real whitespace.
	reindented, err := indentproc.Reindent(evaluated)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}

	// S8 ReplProc: sidetable markers -> literal string/comment/passthrough
	// text.
	expanded, err := replproc.Expand(reindented, st)
	if err != nil {
		return nil, c.wrapStageError(err, normalized, skip)
	}

	// S9 HeaderProc: synthesize and prepend the mode-appropriate header.
	flags := header.FlagSet{
		Minify:      c.cfg.Minify,
		NoTCO:       c.cfg.NoTCO,
		NoWrapTypes: c.cfg.NoWrapTypes,
		Strict:      c.cfg.Strict,
	}
	hdrParams := header.Params{
		Target:           c.cfg.Target,
		Interpreter:      defaultString(opts.Interpreter, "python"),
		Encoding:         defaultString(opts.Encoding, "utf-8"),
		Docstring:        opts.Docstring,
		PackageDepth:     opts.PackageDepth,
		Flags:            flags,
		NormalizedSource: normalized,
	}

	kind, err := headerKindForMode(mode)
	if err != nil {
		return nil, err
	}
	hdr, err := header.Generate(kind, hdrParams)
	if err != nil {
		return nil, diag.Internal("header: %s", err).Wrap(err)
	}
	hash := header.ContentHash(headerCompilerVersion(), c.cfg.Target, normalized, flags)

	body := expanded
	if c.cfg.KeepLines {
		body = appendKeepLinesComment(body, normalized)
	}
	if c.cfg.LineNumbers && mode != ModeEval {
		body = appendLineNumberComments(body, skip)
	}

	full := hdr + body

	// S10 Polish.
	if mode == ModeEval {
		full = strings.TrimRight(full, "\n")
	} else {
		full = polish.Clean(full)
	}

	return &Result{Code: full, Hash: hash, Warnings: warnings}, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func headerKindForMode(mode Mode) (header.Kind, error) {
	switch mode {
	case ModeSingle, ModeExec, ModeBlock, ModeEval:
		return header.KindNone, nil
	case ModeFile:
		return header.KindFile, nil
	case ModePackage:
		return header.KindPackage, nil
	default:
		return header.KindNone, fmt.Errorf("cococ: unknown Mode %v", mode)
	}
}

func headerCompilerVersion() string {
	return version.Current
}

// appendKeepLinesComment trails body with the original source as a
// block comment, per Config.KeepLines (spec §6.5).
func appendKeepLinesComment(body, normalized string) string {
	var sb strings.Builder
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("# Original source:\n")
	for _, line := range strings.Split(normalized, "\n") {
		sb.WriteString("# ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// appendLineNumberComments emits "# <orig-line>" after each physical
// line of body, mapping the BracketedText line back through skip to the
// original-file line, per Config.LineNumbers and spec §8 invariant 3.
func appendLineNumberComments(body string, skip *sidetable.SkipSet) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, line)
			continue
		}
		orig := skip.OriginalLine(i + 1)
		out = append(out, fmt.Sprintf("%s  # %d", line, orig))
	}
	return strings.Join(out, "\n")
}

// wrapStageError turns a stage error into a positioned diag.Diagnostic,
// remapping the line each stage's error type carries through skip back to
// the original-file line (spec §7: "Parser-level ParseError is remapped
// (line via SkipSet...) before being surfaced to the driver"). Errors with
// no line of their own (UnexpectedTokenError carries one via its token;
// anything else falls back unpositioned) still produce a single
// diagnostic, since spec §7 requires exactly one per compilation.
func (c *Compiler) wrapStageError(err error, normalized string, skip *sidetable.SkipSet) error {
	if g, ok := err.(*pygrammar.TargetGateError); ok {
		origLine := skip.OriginalLine(g.Line)
		return diag.Target(g.Error(), g.RequiredTarget, diag.Position{
			Line:       origLine,
			SourceLine: sourceLine(normalized, origLine),
		}).Wrap(err)
	}

	bracketedLine, ok := stageErrorLine(err)
	if !ok {
		return diag.Exception(err.Error(), "").Wrap(err)
	}

	origLine := skip.OriginalLine(bracketedLine)
	return diag.SyntaxErr(diag.KindParseError, err.Error(), diag.Position{
		Line:       origLine,
		SourceLine: sourceLine(normalized, origLine),
	}).Wrap(err)
}

func stageErrorLine(err error) (int, bool) {
	switch e := err.(type) {
	case *litproc.UnclosedStringError:
		return e.Line, true
	case *litproc.EmbeddedNewlineError:
		return e.Line, true
	case *litproc.UnclosedParenPassthroughError:
		return e.Line, true
	case *indentproc.IllegalDedentError:
		return e.Line, true
	case *indentproc.IllegalInitialIndentError:
		return e.Line, true
	case *indentproc.UnclosedParenError:
		return e.Line, true
	case *pygrammar.UnexpectedTokenError:
		return e.Got.Line, true
	default:
		return 0, false
	}
}

func sourceLine(text string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}
