package pygrammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cococ/internal/graph"
	"github.com/dekarrin/cococ/internal/handlers"
	"github.com/dekarrin/cococ/internal/lex"
	"github.com/dekarrin/cococ/internal/matcher"
	"github.com/dekarrin/cococ/internal/sidetable"
)

// indentBlock wraps text in the OPEN/CLOSE sentinel pair S4 uses for
// significant indentation, rather than emitting literal whitespace: S6
// (graph evaluation, which this package performs) still yields
// BracketedText, and S7 (internal/indentproc.Reindent) is what later turns
// these markers into the actual indent width.
func indentBlock(text string) string {
	return string(sidetable.SentinelOpen) + text + string(sidetable.SentinelClose)
}

func (p *Parser) skipStmtSeparators() {
	for p.at(lex.ClassNewline) || p.at(lex.ClassSemicolon) {
		p.advance()
	}
}

func (p *Parser) atStatementEnd() bool {
	return p.at(lex.ClassNewline) || p.at(lex.ClassSemicolon) || p.at(lex.ClassEOF) || p.at(lex.ClassClose)
}

// parseStatements parses a sequence of statements separated by newlines/
// semicolons, stopping at EOF or a block-closing sentinel.
func (p *Parser) parseStatements() (*graph.Node, error) {
	loc := p.loc()
	var stmts []*graph.Node
	p.skipStmtSeparators()
	for !p.at(lex.ClassEOF) && !p.at(lex.ClassClose) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipStmtSeparators()
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		return strings.Join(children, "\n"), nil
	}
	return graph.New("block", loc, action, stmts...), nil
}

func (p *Parser) parseStatement() (*graph.Node, error) {
	if p.at(lex.ClassAt) {
		return p.parseDecorated()
	}
	if p.atKeyword("import") || p.atKeyword("from") {
		return p.parseImportStatement()
	}
	if p.atKeyword("data") {
		return p.parseDataStatement()
	}
	if p.atKeyword("def") {
		return p.parseDef()
	}
	if p.atKeyword("match") {
		return p.parseMatchStatement()
	}
	if p.atKeyword("async") {
		if !targetSupportsAsync(p.opts.Target) {
			return nil, &TargetGateError{
				Line:           p.cur().Line,
				Construct:      "async",
				RequiredTarget: minAsyncTarget,
			}
		}
		loc := p.loc()
		p.advance()
		inner, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return "async " + children[0], nil
		}
		return graph.New("async", loc, action, inner), nil
	}

	if p.cur().Class == lex.ClassKeyword {
		switch p.cur().Lexeme {
		case "if", "elif", "else", "while", "for", "with", "try", "except", "finally", "class":
			return p.parseCompoundPassthrough()
		case "return", "yield", "raise", "pass", "break", "continue", "global", "nonlocal", "assert", "del":
			return p.parseKeywordSimpleStatement()
		}
	}

	return p.parseExprOrAssignStatement()
}

// parseSuiteBody consumes the ':' introducing a suite and returns the
// body's raw (unindented) joined statement text: either an indented
// Open/Close block, or a single inline statement on the same logical line.
func (p *Parser) parseSuiteBody() (*graph.Node, error) {
	if _, err := p.expect(lex.ClassColon); err != nil {
		return nil, err
	}
	p.skipStmtSeparators()
	if p.at(lex.ClassOpen) {
		p.advance()
		body, err := p.parseStatements()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.ClassClose); err != nil {
			return nil, err
		}
		return body, nil
	}
	return p.parseStatement()
}

// parseSuite wraps parseSuiteBody's raw text with the newline-plus-indent
// rendering every compound statement's body needs.
func (p *Parser) parseSuite() (*graph.Node, error) {
	loc := p.loc()
	body, err := p.parseSuiteBody()
	if err != nil {
		return nil, err
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		return "\n" + indentBlock(children[0]), nil
	}
	return graph.New("suite", loc, action, body), nil
}

// parseHeaderUntilColon reads the mixed keyword/expression header of a
// compound statement (an if/while condition, a for-loop's `target in
// iter`, a with-item's `expr as name`, an except clause's `Type as name`,
// a class's base-list) up to (not including) the ':'. Expression-shaped
// runs are parsed in full so nested custom operators still get rewritten;
// the bare `as`/`in` keywords and top-level commas are threaded through
// literally.
func (p *Parser) parseHeaderUntilColon() (*graph.Node, error) {
	loc := p.loc()
	var parts []*graph.Node
	for !p.at(lex.ClassColon) {
		if p.at(lex.ClassEOF) {
			return nil, &UnexpectedTokenError{Got: p.cur(), Expected: ":"}
		}
		switch {
		case p.at(lex.ClassComma):
			parts = append(parts, graph.Leaf("sep", p.loc(), ","))
			p.advance()
		case p.atKeyword("as") || p.atKeyword("in"):
			parts = append(parts, graph.Leaf("kw", p.loc(), p.cur().Lexeme))
			p.advance()
		default:
			e, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		var sb strings.Builder
		for i, c := range children {
			if c == "," {
				sb.WriteString(",")
				continue
			}
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(c)
		}
		return sb.String(), nil
	}
	return graph.New("header", loc, action, parts...), nil
}

// parseCompoundPassthrough handles every compound statement whose header
// and body need no rewriting beyond what parseHeaderUntilColon/parseSuite
// already do: if/elif/else/while/for/with/try/except/finally/class. Each
// clause is parsed as its own sibling statement — equivalent output to
// treating if/elif/else as one production, since they render as adjacent
// lines either way.
func (p *Parser) parseCompoundPassthrough() (*graph.Node, error) {
	loc := p.loc()
	keyword := p.advance().Lexeme

	var header *graph.Node
	if p.at(lex.ClassColon) {
		header = graph.Leaf("empty-header", loc, "")
	} else {
		h, err := p.parseHeaderUntilColon()
		if err != nil {
			return nil, err
		}
		header = h
	}

	suite, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	action := func(original string, loc graph.Location, children []string) (string, error) {
		if children[0] == "" {
			return keyword + ":" + children[1], nil
		}
		return keyword + " " + children[0] + ":" + children[1], nil
	}
	return graph.New("compound", loc, action, header, suite), nil
}

func (p *Parser) parseKeywordSimpleStatement() (*graph.Node, error) {
	loc := p.loc()
	keyword := p.advance().Lexeme

	switch keyword {
	case "pass", "break", "continue":
		return graph.Leaf(keyword, loc, keyword), nil

	case "global", "nonlocal":
		var names []string
		for {
			tok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			names = append(names, tok.Lexeme)
			if p.at(lex.ClassComma) {
				p.advance()
				continue
			}
			break
		}
		return graph.Leaf(keyword, loc, keyword+" "+strings.Join(names, ", ")), nil
	}

	// del / assert / return / yield / raise: an optional comma-separated
	// expression list.
	var exprs []*graph.Node
	if !p.atStatementEnd() {
		for {
			e, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
			if p.at(lex.ClassComma) {
				p.advance()
				if p.atStatementEnd() {
					break
				}
				continue
			}
			break
		}
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		if len(children) == 0 {
			return keyword, nil
		}
		return keyword + " " + strings.Join(children, ", "), nil
	}
	return graph.New(keyword, loc, action, exprs...), nil
}

// extendedAugAssignOp recognizes a two-token augmented-assignment spelling
// (`|>=`, `|*>=`, `<|=`, `<*|=`, `..=`, `::=`) that internal/lex's
// punctuation table does not special-case, by checking that the current
// token is immediately (no gap) followed by a bare '='.
func (p *Parser) extendedAugAssignOp() (string, bool) {
	if !p.adjacent() {
		return "", false
	}
	if p.peekAt(1).Class != lex.ClassAssign {
		return "", false
	}
	switch p.cur().Class {
	case lex.ClassPipeForward:
		return "|>=", true
	case lex.ClassPipeStarForward:
		return "|*>=", true
	case lex.ClassPipeBackward:
		return "<|=", true
	case lex.ClassPipeStarBackward:
		return "<*|=", true
	case lex.ClassCompose:
		return "..=", true
	case lex.ClassChain:
		return "::=", true
	}
	return "", false
}

func (p *Parser) parseExprOrAssignStatement() (*graph.Node, error) {
	loc := p.loc()
	first, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	if p.at(lex.ClassAugAssign) {
		op := p.advance().Lexeme
		rhs, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return handlers.AugAssign(children[0], op, children[1]), nil
		}
		return graph.New("aug-assign", loc, action, first, rhs), nil
	}

	if op, ok := p.extendedAugAssignOp(); ok {
		p.advance()
		p.advance()
		rhs, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return handlers.AugAssign(children[0], op, children[1]), nil
		}
		return graph.New("aug-assign", loc, action, first, rhs), nil
	}

	if p.at(lex.ClassAssign) {
		targets := []*graph.Node{first}
		for p.at(lex.ClassAssign) {
			p.advance()
			next, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			targets = append(targets, next)
		}
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return strings.Join(children, " = "), nil
		}
		return graph.New("assign", loc, action, targets...), nil
	}

	return first, nil
}

func (p *Parser) parseImportStatement() (*graph.Node, error) {
	loc := p.loc()

	if p.atKeyword("import") {
		p.advance()
		module, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		alias := module
		if p.atKeyword("as") {
			p.advance()
			tok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			alias = tok.Lexeme
		}
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return handlers.UniversalImport(module, alias, p.opts.Target)
		}
		return graph.New("import", loc, action), nil
	}

	p.advance() // 'from'
	module, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("import"); err != nil {
		return nil, err
	}
	var items []string
	for {
		tok, err := p.expect(lex.ClassName)
		if err != nil {
			return nil, err
		}
		item := tok.Lexeme
		if p.atKeyword("as") {
			p.advance()
			aliasTok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			item += " as " + aliasTok.Lexeme
		}
		items = append(items, item)
		if p.at(lex.ClassComma) {
			p.advance()
			continue
		}
		break
	}
	text := "from " + module + " import " + strings.Join(items, ", ")
	return graph.Leaf("from-import", loc, text), nil
}

func (p *Parser) parseDataStatement() (*graph.Node, error) {
	loc := p.loc()
	p.advance() // 'data'
	nameTok, err := p.expect(lex.ClassName)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	var fields []string
	if p.at(lex.ClassLParen) {
		p.advance()
		for !p.at(lex.ClassRParen) {
			fTok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fTok.Lexeme)
			if p.at(lex.ClassComma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lex.ClassRParen); err != nil {
			return nil, err
		}
	}

	var body *graph.Node
	if p.at(lex.ClassColon) {
		b, err := p.parseSuiteBody()
		if err != nil {
			return nil, err
		}
		body = b
	} else {
		body = graph.Leaf("empty-body", loc, "")
	}

	action := func(original string, loc graph.Location, children []string) (string, error) {
		return handlers.DataClass(name, fields, children[0], "")
	}
	return graph.New("data", loc, action, body), nil
}

func (p *Parser) parseDecorated() (*graph.Node, error) {
	loc := p.loc()
	var decorators []*graph.Node
	for p.at(lex.ClassAt) {
		p.advance()
		e, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, e)
		p.skipStmtSeparators()
	}
	def, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		return handlers.Decorators(children[:len(children)-1], children[len(children)-1]), nil
	}
	return graph.New("decorated", loc, action, append(decorators, def)...), nil
}

func (p *Parser) parseMatchStatement() (*graph.Node, error) {
	loc := p.loc()
	p.advance() // 'match'
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	value, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuiteBody()
	if err != nil {
		return nil, err
	}

	p.skipStmtSeparators()
	hasElse := false
	var elseBody *graph.Node
	if p.atKeyword("else") {
		hasElse = true
		p.advance()
		eb, err := p.parseSuiteBody()
		if err != nil {
			return nil, err
		}
		elseBody = eb
	}

	children := []*graph.Node{value, body}
	if hasElse {
		children = append(children, elseBody)
	}

	action := func(original string, loc graph.Location, children []string) (string, error) {
		const tmp = "_coconut_match_value"
		const flag = "_coconut_match_check"

		matchCode, err := matcher.Generate(pat, tmp, flag)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s = %s\n", tmp, children[0])
		sb.WriteString(matchCode)
		fmt.Fprintf(&sb, "if %s:\n%s", flag, indentBlock(children[1]))
		if hasElse {
			fmt.Fprintf(&sb, "\nelse:\n%s", indentBlock(children[2]))
		}
		return sb.String(), nil
	}
	return graph.New("match", loc, action, children...), nil
}

// peekIsSimpleParamList scans (without consuming) from the current
// position — assumed to sit just past a def's opening '(' — to its
// matching ')', reporting whether every top-level comma-separated segment
// starts with a bare name (optionally prefixed by '*'/'**'): the shape a
// classic parameter list has. Any segment starting with something else
// (a literal, a nested bracket pattern) means the whole list must be
// lowered as pattern-matching parameters instead (spec 4.5.8).
func (p *Parser) peekIsSimpleParamList() bool {
	depth := 0
	i := p.pos
	segStart := true
	for i < len(p.toks) {
		t := p.toks[i]
		if depth == 0 && t.Class == lex.ClassRParen {
			return true
		}
		if segStart {
			cls := t.Class
			if cls == lex.ClassStar || cls == lex.ClassDoubleStar {
				i++
				if i >= len(p.toks) {
					return false
				}
				t = p.toks[i]
				cls = t.Class
			}
			if cls != lex.ClassName {
				return false
			}
			segStart = false
		}
		switch t.Class {
		case lex.ClassLParen, lex.ClassLBracket, lex.ClassLBrace:
			depth++
		case lex.ClassRParen, lex.ClassRBracket, lex.ClassRBrace:
			if depth == 0 {
				return true
			}
			depth--
		case lex.ClassComma:
			if depth == 0 {
				segStart = true
			}
		case lex.ClassEOF:
			return false
		}
		i++
	}
	return false
}

// parsePlainParams parses a classic parameter list: `name[: ann][=default]`
// comma-separated entries, with an optional leading '*'/'**' unpacking
// marker on any entry.
func (p *Parser) parsePlainParams(closeClass lex.Class) ([]*graph.Node, error) {
	var params []*graph.Node
	if p.at(closeClass) {
		return params, nil
	}
	for {
		loc := p.loc()
		prefix := ""
		if p.at(lex.ClassDoubleStar) {
			prefix = "**"
			p.advance()
		} else if p.at(lex.ClassStar) {
			prefix = "*"
			p.advance()
		}
		nameTok, err := p.expect(lex.ClassName)
		if err != nil {
			return nil, err
		}
		name := nameTok.Lexeme

		var children []*graph.Node
		hasAnn, hasDefault := false, false
		if p.at(lex.ClassColon) {
			p.advance()
			ann, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			children = append(children, ann)
			hasAnn = true
		}
		if p.at(lex.ClassAssign) {
			p.advance()
			def, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			children = append(children, def)
			hasDefault = true
		}

		action := func(original string, loc graph.Location, ch []string) (string, error) {
			out := prefix + name
			idx := 0
			if hasAnn {
				out += ": " + ch[idx]
				idx++
			}
			if hasDefault {
				out += "=" + ch[idx]
				idx++
			}
			return out, nil
		}
		params = append(params, graph.New("param", loc, action, children...))

		if p.at(lex.ClassComma) {
			p.advance()
			if p.at(closeClass) {
				break
			}
			continue
		}
		break
	}
	return params, nil
}

func joinParams(children []string) string {
	return strings.Join(children, ", ")
}

// parseDef handles every `def` shape spec 4.5 introduces: the backtick
// binary-operator-definition sugar, the single-expression math-def sugar,
// classic function definitions, and pattern-matching function definitions.
func (p *Parser) parseDef() (*graph.Node, error) {
	loc := p.loc()
	p.advance() // 'def'

	if p.at(lex.ClassLParen) && p.peekAt(1).Class == lex.ClassName &&
		p.peekAt(2).Class == lex.ClassRParen && p.peekAt(3).Class == lex.ClassBacktick {
		return p.parseOperatorDef(loc)
	}

	nameTok, err := p.expect(lex.ClassName)
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme

	if _, err := p.expect(lex.ClassLParen); err != nil {
		return nil, err
	}

	if p.peekIsSimpleParamList() {
		return p.parseClassicDef(loc, name)
	}
	return p.parseMatchFunctionDef(loc, name)
}

func (p *Parser) parseOperatorDef(loc graph.Location) (*graph.Node, error) {
	p.advance() // (
	aTok, err := p.expect(lex.ClassName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassBacktick); err != nil {
		return nil, err
	}
	opTok := p.advance()
	if _, err := p.expect(lex.ClassBacktick); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassLParen); err != nil {
		return nil, err
	}
	bTok, err := p.expect(lex.ClassName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassAssign); err != nil {
		return nil, err
	}
	expr, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	aName, bName, op := aTok.Lexeme, bTok.Lexeme, opTok.Lexeme
	action := func(original string, loc graph.Location, children []string) (string, error) {
		return handlers.OperatorDef(op, aName, bName, children[0]), nil
	}
	return graph.New("operator-def", loc, action, expr), nil
}

func (p *Parser) parseClassicDef(loc graph.Location, name string) (*graph.Node, error) {
	params, err := p.parsePlainParams(lex.ClassRParen)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassRParen); err != nil {
		return nil, err
	}

	var retAnn *graph.Node
	hasRetAnn := false
	if p.at(lex.ClassArrow) {
		p.advance()
		ann, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		retAnn = ann
		hasRetAnn = true
	}

	if p.at(lex.ClassAssign) {
		p.advance()
		expr, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		children := append(append([]*graph.Node{}, params...), expr)
		paramCount := len(params)
		action := func(original string, loc graph.Location, children []string) (string, error) {
			return handlers.MathDef(name, joinParams(children[:paramCount]), children[paramCount]), nil
		}
		return graph.New("math-def", loc, action, children...), nil
	}

	suite, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	children := append(append([]*graph.Node{}, params...), suite)
	if hasRetAnn {
		children = append(children, retAnn)
	}
	paramCount := len(params)
	action := func(original string, loc graph.Location, children []string) (string, error) {
		header := fmt.Sprintf("def %s(%s)", name, joinParams(children[:paramCount]))
		if hasRetAnn {
			header += " -> " + children[paramCount+1]
		}
		return header + ":" + children[paramCount], nil
	}
	return graph.New("def", loc, action, children...), nil
}

func (p *Parser) parseMatchFunctionDef(loc graph.Location, name string) (*graph.Node, error) {
	argPatterns, patternSource, err := p.parsePatternArgList(lex.ClassRParen)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.ClassRParen); err != nil {
		return nil, err
	}
	body, err := p.parseSuiteBody()
	if err != nil {
		return nil, err
	}
	action := func(original string, loc graph.Location, children []string) (string, error) {
		return handlers.MatchFunctionDef(name, argPatterns, patternSource, children[0])
	}
	return graph.New("match-func-def", loc, action, body), nil
}
