package pygrammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/cococ/internal/graph"
	"github.com/dekarrin/cococ/internal/handlers"
	"github.com/dekarrin/cococ/internal/lex"
)

// Options configures how a Parser lowers version-gated and target-
// sensitive constructs.
type Options struct {
	// Strict promotes style warnings (handlers.CheckName's reserved-word
	// and internal-prefix rules) to hard errors.
	Strict bool

	// Target is the driver-facing target string ("" for universal),
	// threaded through to handlers.UniversalImport.
	Target string
}

// UnexpectedTokenError reports a token the grammar had no production to
// consume, carrying enough to render a ParseError per spec §4.7.
type UnexpectedTokenError struct {
	Got      lex.Token
	Expected string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("line %d: unexpected %s (expected %s)", e.Got.Line, e.Got.Class, e.Expected)
}

// TargetGateError reports a version-gated construct (§4.4: async/await,
// yield-from, raise-from, type annotations, starred assignment, nonlocal,
// matrix-multiply `@`) used under a Target that doesn't support it. This
// is the parse-time source of a diag.Target TargetError (§4.7/§6.4).
type TargetGateError struct {
	Line           int
	Construct      string
	RequiredTarget string
}

func (e *TargetGateError) Error() string {
	return fmt.Sprintf("line %d: %q requires target %q", e.Line, e.Construct, e.RequiredTarget)
}

// minAsyncTarget is the earliest pinned target (spec §6.5 target strings)
// under which `async`/`await` are legal: target "35" (3.5, where the
// target language introduced native coroutine syntax) or later.
const minAsyncTarget = "35"

// targetSupportsAsync reports whether target allows async/await. "" is
// universal mode: always allowed, the header's runtime guard picks a side.
// Any "2"-prefixed target, or bare "3", predates 3.5 and is rejected; a
// "3"-prefixed target with a two-digit minor is allowed once that minor
// reaches 5.
func targetSupportsAsync(target string) bool {
	if target == "" {
		return true
	}
	if !strings.HasPrefix(target, "3") || target == "3" {
		return false
	}
	minor, err := strconv.Atoi(target[1:])
	if err != nil {
		return false
	}
	return minor >= 5
}

// packratKey identifies one memoized attempt: a grammar rule tried at a
// token offset, per spec §4.4.A.
type packratKey struct {
	rule string
	pos  int
}

type packratEntry struct {
	node   *graph.Node
	newPos int
	err    error
}

// Parser drives the recursive-descent/Pratt grammar over a token stream.
// It holds no state beyond one top-level parse; resetParseState (called by
// the root entry points) clears the packrat cache so it is never shared
// across compilations, per spec §5.
type Parser struct {
	toks  []lex.Token
	pos   int
	opts  Options
	cache map[packratKey]packratEntry
}

// New returns a Parser over toks (as produced by internal/lex.Lexer.Tokens,
// which always ends with a ClassEOF token).
func New(toks []lex.Token, opts Options) *Parser {
	return &Parser{toks: toks, opts: opts, cache: map[packratKey]packratEntry{}}
}

func (p *Parser) resetParseState() {
	p.cache = map[packratKey]packratEntry{}
}

func (p *Parser) cur() lex.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // trailing EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lex.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) loc() graph.Location {
	t := p.cur()
	return graph.Location{Line: t.Line, Col: t.Col}
}

func (p *Parser) at(class lex.Class) bool {
	return p.cur().Class == class
}

func (p *Parser) atKeyword(word string) bool {
	t := p.cur()
	return t.Class == lex.ClassKeyword && t.Lexeme == word
}

// adjacent reports whether the token at offset immediately follows (no
// intervening whitespace) the token before it, used to recognize two-token
// augmented-assignment spellings like `|>=` (ClassPipeForward, ClassAssign
// with no gap) that the lexer's punctuation table does not special-case.
func (p *Parser) adjacent() bool {
	a := p.cur()
	b := p.peekAt(1)
	return a.Line == b.Line && a.Col+len([]rune(a.Lexeme)) == b.Col
}

// atAugAssignLead reports whether the current token is immediately followed
// by a bare `=`, meaning it is the lead half of a two-token extended
// augmented-assignment spelling (`|>=`, `..=`, `::=`, ...) rather than a
// genuine pipeline/compose/chain operator. The expression-layer loops for
// those operators must not consume the token in that case; the statement
// layer's extendedAugAssignOp recognizes the pair instead.
func (p *Parser) atAugAssignLead() bool {
	return p.adjacent() && p.peekAt(1).Class == lex.ClassAssign
}

func (p *Parser) advance() lex.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(class lex.Class) (lex.Token, error) {
	if !p.at(class) {
		return lex.Token{}, &UnexpectedTokenError{Got: p.cur(), Expected: class.String()}
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(word string) error {
	if !p.atKeyword(word) {
		return &UnexpectedTokenError{Got: p.cur(), Expected: "keyword " + word}
	}
	p.advance()
	return nil
}

// memo wraps fn with packrat caching keyed by (rule, current offset): a
// repeated attempt to parse the same rule at the same position returns the
// cached outcome (including backtracking the token position past the same
// span) instead of re-deriving it.
func (p *Parser) memo(rule string, fn func() (*graph.Node, error)) (*graph.Node, error) {
	key := packratKey{rule: rule, pos: p.pos}
	if entry, ok := p.cache[key]; ok {
		p.pos = entry.newPos
		return entry.node, entry.err
	}

	startPos := p.pos
	node, err := fn()
	entry := packratEntry{node: node, newPos: p.pos, err: err}
	p.cache[packratKey{rule: rule, pos: startPos}] = entry
	return node, err
}

// binaryOp returns a graph.Action that textually joins two already-
// evaluated children with a literal infix operator — the lowering for
// every arithmetic/shift/bitwise/comparison layer, since those operators
// are already legal target-language syntax and need no semantic rewrite.
func binaryOp(op string) graph.Action {
	return func(original string, loc graph.Location, children []string) (string, error) {
		return fmt.Sprintf("%s %s %s", children[0], op, children[1]), nil
	}
}

func checkedName(tok lex.Token, strict bool) (string, error) {
	name := tok.Lexeme
	if tok.Class == lex.ClassEscapedName {
		return handlers.StripReservedEscape(name), nil
	}
	if err := handlers.CheckName(name, strict); err != nil {
		if _, isErr := err.(*handlers.ReservedWordError); isErr {
			return "", err
		}
		if _, isErr := err.(*handlers.InternalPrefixError); isErr {
			return "", err
		}
		// a non-strict InternalPrefixWarning does not block compilation
	}
	return name, nil
}

// ParseExpr parses a single expression (parse_eval/parse_single's typical
// shape) and returns the resulting ParseResult.
func (p *Parser) ParseExpr() (*graph.ParseResult, error) {
	p.resetParseState()
	node, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &graph.ParseResult{Root: node}, nil
}

// ParseModule parses a full sequence of statements (parse_file/parse_exec/
// parse_package/parse_block's shape) up to EOF and returns the resulting
// ParseResult.
func (p *Parser) ParseModule() (*graph.ParseResult, error) {
	p.resetParseState()
	node, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	return &graph.ParseResult{Root: node}, nil
}
