package matcher

import (
	"fmt"
	"strings"
)

// frame is one (checks, defs) pair: checks must all hold for defs (and
// everything nested under them) to execute; defs become visible to every
// later frame, matching the spec's "earlier defs are in scope for later
// checks" requirement (needed for iterator patterns, whose length check
// happens after element extraction).
type frame struct {
	checks []string
	defs   []string
}

// sentinelName is the runtime helper S9's header is expected to provide: a
// unique object used as `next(iterator, sentinel)`'s default so iterator
// patterns can detect exhaustion without try/except inside an expression
// position.
const sentinelName = "_coconut_sentinel"

func compile(p Pattern, valueExpr string, bound map[string]bool, counter *int) ([]frame, error) {
	switch v := p.(type) {
	case Const:
		op := "=="
		if v.Lexeme == "None" || v.Lexeme == "True" || v.Lexeme == "False" {
			op = "is"
		}
		return []frame{{checks: []string{fmt.Sprintf("%s %s %s", valueExpr, op, v.Lexeme)}}}, nil

	case Var:
		if v.Name == "_" {
			return nil, nil
		}
		if bound[v.Name] {
			return []frame{{checks: []string{fmt.Sprintf("%s == %s", valueExpr, v.Name)}}}, nil
		}
		bound[v.Name] = true
		return []frame{{defs: []string{fmt.Sprintf("%s = %s", v.Name, valueExpr)}}}, nil

	case Sequence:
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, Sequence) and len(%s) == %d", valueExpr, valueExpr, len(v.Elems)),
		}}}
		for i, e := range v.Elems {
			sub, err := compile(e, fmt.Sprintf("%s[%d]", valueExpr, i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	case HeadRest:
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, Sequence) and len(%s) >= %d", valueExpr, valueExpr, len(v.Front)),
		}}}
		for i, e := range v.Front {
			sub, err := compile(e, fmt.Sprintf("%s[%d]", valueExpr, i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		if v.Rest != "" && v.Rest != "_" {
			ctor := seqCtor(v.Tuple)
			frames = append(frames, frame{defs: []string{
				fmt.Sprintf("%s = %s(%s[%d:])", v.Rest, ctor, valueExpr, len(v.Front)),
			}})
			bound[v.Rest] = true
		}
		return frames, nil

	case RestTail:
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, Sequence) and len(%s) >= %d", valueExpr, valueExpr, len(v.Tail)),
		}}}
		if v.Rest != "" && v.Rest != "_" {
			ctor := seqCtor(v.Tuple)
			frames = append(frames, frame{defs: []string{
				fmt.Sprintf("%s = %s(%s[:len(%s) - %d])", v.Rest, ctor, valueExpr, valueExpr, len(v.Tail)),
			}})
			bound[v.Rest] = true
		}
		for i, e := range v.Tail {
			sub, err := compile(e, fmt.Sprintf("%s[-%d]", valueExpr, len(v.Tail)-i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	case Middle:
		total := len(v.Head) + len(v.Tail)
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, Sequence) and len(%s) >= %d", valueExpr, valueExpr, total),
		}}}
		for i, e := range v.Head {
			sub, err := compile(e, fmt.Sprintf("%s[%d]", valueExpr, i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		if v.Mid != "" && v.Mid != "_" {
			ctor := seqCtor(v.Tuple)
			frames = append(frames, frame{defs: []string{
				fmt.Sprintf("%s = %s(%s[%d:len(%s) - %d])", v.Mid, ctor, valueExpr, len(v.Head), valueExpr, len(v.Tail)),
			}})
			bound[v.Mid] = true
		}
		for i, e := range v.Tail {
			sub, err := compile(e, fmt.Sprintf("%s[-%d]", valueExpr, len(v.Tail)-i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	case Iterator:
		*counter++
		iterName := fmt.Sprintf("_coconut_match_iter_%d", *counter)
		frames := []frame{{
			checks: []string{fmt.Sprintf("isinstance(%s, Iterable)", valueExpr)},
			defs:   []string{fmt.Sprintf("%s = iter(%s)", iterName, valueExpr)},
		}}
		for _, e := range v.Elems {
			*counter++
			tmp := fmt.Sprintf("_coconut_match_item_%d", *counter)
			frames = append(frames, frame{
				defs:   []string{fmt.Sprintf("%s = next(%s, %s)", tmp, iterName, sentinelName)},
				checks: []string{fmt.Sprintf("%s is not %s", tmp, sentinelName)},
			})
			sub, err := compile(e, tmp, bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		if v.Rest != "" && v.Rest != "_" {
			frames = append(frames, frame{defs: []string{fmt.Sprintf("%s = %s", v.Rest, iterName)}})
			bound[v.Rest] = true
		}
		return frames, nil

	case Dict:
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, Mapping) and len(%s) == %d", valueExpr, valueExpr, len(v.Keys)),
		}}}
		for i, k := range v.Keys {
			frames = append(frames, frame{checks: []string{fmt.Sprintf("%s in %s", k, valueExpr)}})
			sub, err := compile(v.Vals[i], fmt.Sprintf("%s[%s]", valueExpr, k), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	case Set:
		return []frame{{checks: []string{fmt.Sprintf(
			"isinstance(%s, Set) and len(%s) == %d and set((%s,)) <= %s",
			valueExpr, valueExpr, len(v.Consts), strings.Join(v.Consts, ", "), valueExpr,
		)}}}, nil

	case Data:
		frames := []frame{{checks: []string{
			fmt.Sprintf("isinstance(%s, %s) and len(%s) == %d", valueExpr, v.Type, valueExpr, len(v.Elems)),
		}}}
		for i, e := range v.Elems {
			sub, err := compile(e, fmt.Sprintf("%s[%d]", valueExpr, i), bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	case As:
		frames, err := compile(v.Inner, valueExpr, bound, counter)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame{defs: []string{fmt.Sprintf("%s = %s", v.Alias, valueExpr)}})
		bound[v.Alias] = true
		return frames, nil

	case Is:
		inner, err := compile(v.Inner, valueExpr, bound, counter)
		if err != nil {
			return nil, err
		}
		head := frame{checks: []string{fmt.Sprintf("isinstance(%s, %s)", valueExpr, v.Type)}}
		return append([]frame{head}, inner...), nil

	case And:
		var frames []frame
		for _, s := range v.Subs {
			sub, err := compile(s, valueExpr, bound, counter)
			if err != nil {
				return nil, err
			}
			frames = append(frames, sub...)
		}
		return frames, nil

	default:
		return nil, fmt.Errorf("matcher: unsupported pattern type %T", p)
	}
}

func seqCtor(tuple bool) string {
	if tuple {
		return "tuple"
	}
	return "list"
}

// Generate emits target-language code that, against valueExpr, sets
// flagVar to True and binds every name pattern p introduces on success,
// leaving flagVar False (and no new names bound beyond what the caller
// already had) on failure.
func Generate(p Pattern, valueExpr, flagVar string) (string, error) {
	var sb strings.Builder
	sb.WriteString(flagVar)
	sb.WriteString(" = False\n")

	counter := 0
	if err := emit(p, valueExpr, flagVar, &counter, map[string]bool{}, &sb, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func emit(p Pattern, valueExpr, flagVar string, counter *int, bound map[string]bool, sb *strings.Builder, indent int) error {
	if or, ok := p.(Or); ok {
		for _, alt := range or.Alts {
			writeIndent(sb, indent)
			sb.WriteString(fmt.Sprintf("if not %s:\n", flagVar))
			altBound := copyBound(bound)
			if err := emit(alt, valueExpr, flagVar, counter, altBound, sb, indent+1); err != nil {
				return err
			}
		}
		return nil
	}

	frames, err := compile(p, valueExpr, bound, counter)
	if err != nil {
		return err
	}

	cur := indent
	for _, f := range frames {
		if len(f.checks) > 0 {
			writeIndent(sb, cur)
			sb.WriteString("if " + strings.Join(f.checks, " and ") + ":\n")
			cur++
		}
		for _, d := range f.defs {
			writeIndent(sb, cur)
			sb.WriteString(d)
			sb.WriteByte('\n')
		}
	}
	writeIndent(sb, cur)
	sb.WriteString(flagVar)
	sb.WriteString(" = True\n")
	return nil
}

func writeIndent(sb *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		sb.WriteString("    ")
	}
}

func copyBound(b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
