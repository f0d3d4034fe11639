package pygrammar

import (
	"strings"

	"github.com/dekarrin/cococ/internal/handlers"
	"github.com/dekarrin/cococ/internal/lex"
	"github.com/dekarrin/cococ/internal/matcher"
)

// parsePattern parses one match-pattern (spec 4.5.2): an atom, optionally
// followed by `as name` (matcher.As), `is Type` (matcher.Is), an iterator
// anchor `:: rest` (matcher.Iterator), or `|`-separated alternatives
// (matcher.Or).
func (p *Parser) parsePattern() (matcher.Pattern, error) {
	base, err := p.parsePatternAnchored()
	if err != nil {
		return nil, err
	}

	if !p.at(lex.ClassPipe) {
		return base, nil
	}

	alts := []matcher.Pattern{base}
	for p.at(lex.ClassPipe) {
		p.advance()
		alt, err := p.parsePatternAnchored()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return matcher.Or{Alts: alts}, nil
}

// parsePatternAnchored parses an atom plus its `as`/`is` suffixes, without
// consuming a following `|` (left to parsePattern, so Or binds loosest).
func (p *Parser) parsePatternAnchored() (matcher.Pattern, error) {
	base, err := p.parsePatternAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.atKeyword("as"):
			p.advance()
			tok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			base = matcher.As{Inner: base, Alias: tok.Lexeme}
		case p.atKeyword("is"):
			p.advance()
			typeName, err := p.parseDottedName()
			if err != nil {
				return nil, err
			}
			base = matcher.Is{Inner: base, Type: typeName}
		case p.at(lex.ClassChain):
			seq, ok := base.(matcher.Sequence)
			if !ok {
				return base, nil
			}
			p.advance()
			tok, err := p.expect(lex.ClassName)
			if err != nil {
				return nil, err
			}
			base = matcher.Iterator{Elems: seq.Elems, Rest: tok.Lexeme}
		default:
			return base, nil
		}
	}
}

func (p *Parser) parsePatternAtom() (matcher.Pattern, error) {
	tok := p.cur()

	switch tok.Class {
	case lex.ClassNumber:
		p.advance()
		return matcher.Const{Lexeme: tok.Lexeme}, nil

	case lex.ClassStringMarker, lex.ClassCommentMarker, lex.ClassPassthroughMarker:
		p.advance()
		return matcher.Const{Lexeme: markerText(tok)}, nil

	case lex.ClassMinus:
		p.advance()
		numTok, err := p.expect(lex.ClassNumber)
		if err != nil {
			return nil, err
		}
		return matcher.Const{Lexeme: "-" + numTok.Lexeme}, nil

	case lex.ClassKeyword:
		switch tok.Lexeme {
		case "True", "False", "None":
			p.advance()
			return matcher.Const{Lexeme: tok.Lexeme}, nil
		}
		return nil, &UnexpectedTokenError{Got: tok, Expected: "pattern"}

	case lex.ClassName:
		p.advance()
		if tok.Lexeme == "_" {
			return matcher.Var{Name: "_"}, nil
		}
		if p.at(lex.ClassLParen) {
			p.advance()
			elems, err := p.parsePatternListUntil(lex.ClassRParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lex.ClassRParen); err != nil {
				return nil, err
			}
			return matcher.Data{Type: tok.Lexeme, Elems: elems}, nil
		}
		return matcher.Var{Name: tok.Lexeme}, nil

	case lex.ClassEscapedName:
		p.advance()
		return matcher.Var{Name: handlers.StripReservedEscape(tok.Lexeme)}, nil

	case lex.ClassLParen:
		p.advance()
		return p.parseSequencePattern(lex.ClassRParen, true)

	case lex.ClassLBracket:
		p.advance()
		return p.parseSequencePattern(lex.ClassRBracket, false)

	case lex.ClassLBrace:
		p.advance()
		return p.parseDictOrSetPattern()

	default:
		return nil, &UnexpectedTokenError{Got: tok, Expected: "pattern"}
	}
}

func (p *Parser) parsePatternListUntil(closeClass lex.Class) ([]matcher.Pattern, error) {
	var pats []matcher.Pattern
	if p.at(closeClass) {
		return pats, nil
	}
	for {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		pats = append(pats, pat)
		if p.at(lex.ClassComma) {
			p.advance()
			if p.at(closeClass) {
				break
			}
			continue
		}
		break
	}
	return pats, nil
}

// parseSequencePattern parses the contents of a `(...)`/`[...]` pattern,
// whose elements are either ordinary sub-patterns or at most one `*name`
// rest-binder, whose position (first, last, or interior) selects between
// matcher.Sequence, matcher.HeadRest, matcher.RestTail, and matcher.Middle
// (spec 4.5.2).
func (p *Parser) parseSequencePattern(closeClass lex.Class, tuple bool) (matcher.Pattern, error) {
	var before []matcher.Pattern
	var after []matcher.Pattern
	restName := ""
	haveRest := false

	if !p.at(closeClass) {
		for {
			if p.at(lex.ClassStar) {
				p.advance()
				tok, err := p.expect(lex.ClassName)
				if err != nil {
					return nil, err
				}
				restName = tok.Lexeme
				haveRest = true
			} else {
				pat, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				if haveRest {
					after = append(after, pat)
				} else {
					before = append(before, pat)
				}
			}
			if p.at(lex.ClassComma) {
				p.advance()
				if p.at(closeClass) {
					break
				}
				continue
			}
			break
		}
	}
	if _, err := p.expect(closeClass); err != nil {
		return nil, err
	}

	if !haveRest {
		return matcher.Sequence{Elems: before, Tuple: tuple}, nil
	}
	if len(before) == 0 {
		return matcher.RestTail{Rest: restName, Tail: after, Tuple: tuple}, nil
	}
	if len(after) == 0 {
		return matcher.HeadRest{Front: before, Rest: restName, Tuple: tuple}, nil
	}
	return matcher.Middle{Head: before, Mid: restName, Tail: after, Tuple: tuple}, nil
}

// parseDictOrSetPattern parses `{...}`: `key: pattern` pairs make a
// matcher.Dict, bare constants make a matcher.Set. Mixing the two forms in
// one literal is not meaningful and is resolved in favor of whichever
// shape the first entry established.
func (p *Parser) parseDictOrSetPattern() (matcher.Pattern, error) {
	if p.at(lex.ClassRBrace) {
		p.advance()
		return matcher.Dict{}, nil
	}

	var keys []string
	var vals []matcher.Pattern
	var consts []string
	isDict := false

	for {
		keyTok := p.cur()
		keyText := tokenText(keyTok)
		p.advance()
		if p.at(lex.ClassColon) {
			isDict = true
			p.advance()
			val, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			keys = append(keys, keyText)
			vals = append(vals, val)
		} else {
			consts = append(consts, keyText)
		}
		if p.at(lex.ClassComma) {
			p.advance()
			if p.at(lex.ClassRBrace) {
				break
			}
			continue
		}
		break
	}
	if _, err := p.expect(lex.ClassRBrace); err != nil {
		return nil, err
	}

	if isDict {
		return matcher.Dict{Keys: keys, Vals: vals}, nil
	}
	return matcher.Set{Consts: consts}, nil
}

// parsePatternArgList parses a comma-separated list of patterns (a
// pattern-matching def's argument list) and also reconstructs the
// original source text of the whole list, for the MatchError message
// handlers.MatchFunctionDef embeds.
func (p *Parser) parsePatternArgList(closeClass lex.Class) ([]matcher.Pattern, string, error) {
	var pats []matcher.Pattern
	var srcParts []string
	if p.at(closeClass) {
		return pats, "", nil
	}
	for {
		start := p.pos
		pat, err := p.parsePattern()
		if err != nil {
			return nil, "", err
		}
		pats = append(pats, pat)
		srcParts = append(srcParts, p.sourceSlice(start, p.pos))
		if p.at(lex.ClassComma) {
			p.advance()
			if p.at(closeClass) {
				break
			}
			continue
		}
		break
	}
	return pats, strings.Join(srcParts, ", "), nil
}

func (p *Parser) sourceSlice(start, end int) string {
	var parts []string
	for i := start; i < end && i < len(p.toks); i++ {
		parts = append(parts, tokenText(p.toks[i]))
	}
	return strings.Join(parts, " ")
}
