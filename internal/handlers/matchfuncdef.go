package handlers

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cococ/internal/matcher"
)

// MatchError is the exception class name raised by a failed destructuring
// assignment or match-function call. S9's header is responsible for
// actually defining it.
const MatchErrorClass = "_coconut_MatchError"

// MatchFunctionDef lowers `def f(pattern1, pattern2): body` per 4.5.8: the
// argument list is treated as a single tuple pattern matched against
// `*_match_args`, binding every pattern variable before body runs; a
// failed match raises MatchError carrying the pattern source and the
// value that failed to match.
func MatchFunctionDef(name string, argPatterns []matcher.Pattern, patternSource string, body string) (string, error) {
	tuplePattern := matcher.Sequence{Elems: argPatterns, Tuple: true}

	matchCode, err := matcher.Generate(tuplePattern, "_match_args", "_match_check")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "def %s(*_match_args):\n", name)
	for _, line := range strings.Split(strings.TrimRight(matchCode, "\n"), "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "    if not _match_check:\n        raise %s(%q, _match_args)\n", MatchErrorClass, patternSource)

	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}
