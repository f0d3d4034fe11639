package pygrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/cococ/internal/indentproc"
	"github.com/dekarrin/cococ/internal/lex"
	"github.com/dekarrin/cococ/internal/sidetable"
)

func evalExpr(t *testing.T, src string) string {
	t.Helper()
	toks, err := lex.New(src).Tokens()
	require.NoError(t, err)
	p := New(toks, Options{})
	result, err := p.ParseExpr()
	require.NoError(t, err)
	out, err := result.Evaluate(src)
	require.NoError(t, err)
	return out
}

// evalModule runs ParseModule/Evaluate (S5/S6) and then indentproc.Reindent
// (S7), so assertions see the same real-whitespace shape the compiler's
// output would have rather than raw OPEN/CLOSE sentinels.
func evalModule(t *testing.T, src string, opts Options) string {
	t.Helper()
	toks, err := lex.New(src).Tokens()
	require.NoError(t, err)
	p := New(toks, opts)
	result, err := p.ParseModule()
	require.NoError(t, err)
	out, err := result.Evaluate(src)
	require.NoError(t, err)
	reindented, err := indentproc.Reindent(out)
	require.NoError(t, err)
	return reindented
}

func TestParseExpr_Arithmetic(t *testing.T) {
	assert.Equal(t, "1 + 2 * 3", evalExpr(t, "1 + 2 * 3"))
}

func TestParseExpr_ParenthesizedGroup(t *testing.T) {
	assert.Equal(t, "(1 + 2)", evalExpr(t, "(1 + 2)"))
}

func TestParseExpr_UnaryAndPower(t *testing.T) {
	assert.Equal(t, "-2 ** 2", evalExpr(t, "-2**2"))
}

func TestParseExpr_PipelineForward(t *testing.T) {
	assert.Equal(t, "(f)(x)", evalExpr(t, "x |> f"))
}

func TestParseExpr_PipelineBackwardStar(t *testing.T) {
	assert.Equal(t, "(f)(*xs)", evalExpr(t, "f <*| xs"))
}

func TestParseExpr_ChainedPipelineIsLeftAssociative(t *testing.T) {
	assert.Equal(t, "(g)((f)(x))", evalExpr(t, "x |> f |> g"))
}

func TestParseExpr_Compose(t *testing.T) {
	out := evalExpr(t, "f .. g")
	assert.Contains(t, out, "lambda *_coconut_a, **_coconut_k")
	assert.Contains(t, out, "(f)((g)(*_coconut_a, **_coconut_k))")
}

func TestParseExpr_Chain(t *testing.T) {
	out := evalExpr(t, "a :: b")
	assert.Contains(t, out, "itertools.chain.from_iterable")
}

func TestParseExpr_PartialApplyTrailer(t *testing.T) {
	assert.Equal(t, "_coconut.functools.partial(f, 1, 2)", evalExpr(t, "f$(1, 2)"))
}

func TestParseExpr_LazySubscriptTrailer(t *testing.T) {
	assert.Equal(t, "_coconut_igetitem(xs, 3)", evalExpr(t, "xs$[3]"))
}

func TestParseExpr_LazySliceTrailer(t *testing.T) {
	assert.Equal(t, "_coconut_igetitem(xs, slice(1, 5, None))", evalExpr(t, "xs$[1:5]"))
}

func TestParseExpr_RegularSlice(t *testing.T) {
	assert.Equal(t, "xs[1:5]", evalExpr(t, "xs[1:5]"))
}

func TestParseExpr_AttributeAndCallTrailers(t *testing.T) {
	assert.Equal(t, "a.b.c(1, 2)", evalExpr(t, "a.b.c(1, 2)"))
}

func TestParseExpr_BareOpAtom(t *testing.T) {
	assert.Equal(t, "_coconut.operator.add", evalExpr(t, "(+)"))
}

func TestParseExpr_ConditionalExpression(t *testing.T) {
	assert.Equal(t, "1 if x else 2", evalExpr(t, "1 if x else 2"))
}

func TestParseExpr_BooleanNotAndOr(t *testing.T) {
	assert.Equal(t, "not a and b or c", evalExpr(t, "not a and b or c"))
}

func TestParseExpr_ComparisonNotIn(t *testing.T) {
	assert.Equal(t, "x not in xs", evalExpr(t, "x not in xs"))
}

func TestParseExpr_TupleLiteral(t *testing.T) {
	assert.Equal(t, "(1, 2)", evalExpr(t, "(1, 2,)"))
}

func TestParseExpr_SingletonTupleKeepsRequiredComma(t *testing.T) {
	assert.Equal(t, "(1,)", evalExpr(t, "(1,)"))
}

func TestParseExpr_ListLiteral(t *testing.T) {
	assert.Equal(t, "[1, 2, 3]", evalExpr(t, "[1, 2, 3]"))
}

func TestParseExpr_ListComprehensionPassesThrough(t *testing.T) {
	assert.Equal(t, "[x for x in xs]", evalExpr(t, "[x for x in xs]"))
}

func TestParseExpr_DictLiteralPassesThrough(t *testing.T) {
	assert.Equal(t, "{1 : 2}", evalExpr(t, "{1: 2}"))
}

func TestParseExpr_EscapedReservedWordIsPlainName(t *testing.T) {
	assert.Equal(t, "match", evalExpr(t, `\match`))
}

func TestParseExpr_StringMarkerRoundTripsVerbatim(t *testing.T) {
	src := string(sidetable.SentinelOpenStr) + "7" + string(sidetable.SentinelClose)
	assert.Equal(t, src, evalExpr(t, src))
}

func TestParseModule_SimpleAssignment(t *testing.T) {
	assert.Equal(t, "x = 1", evalModule(t, "x = 1", Options{}))
}

func TestParseModule_ChainedAssignment(t *testing.T) {
	assert.Equal(t, "x = y = 1", evalModule(t, "x = y = 1", Options{}))
}

func TestParseModule_ExtendedAugAssign(t *testing.T) {
	assert.Equal(t, "x = (f)(x)", evalModule(t, "x |>= f", Options{}))
}

func TestParseModule_PlainAugAssign(t *testing.T) {
	assert.Equal(t, "x += 1", evalModule(t, "x += 1", Options{}))
}

func TestParseModule_ImportUniversal(t *testing.T) {
	out := evalModule(t, "import queue", Options{})
	assert.Contains(t, out, "_coconut_sys.version_info")
	assert.Contains(t, out, "import Queue as queue")
}

func TestParseModule_ImportPinnedTarget(t *testing.T) {
	assert.Equal(t, "import Queue as queue", evalModule(t, "import queue", Options{Target: "2"}))
}

func TestParseModule_FromImport(t *testing.T) {
	assert.Equal(t, "from os import path as p", evalModule(t, "from os import path as p", Options{}))
}

func TestParseModule_MathDef(t *testing.T) {
	assert.Equal(t, "def square(x): return x ** 2", evalModule(t, "def square(x) = x**2", Options{}))
}

func TestParseModule_ClassicDefWithSuite(t *testing.T) {
	src := "def f(x):" + string(sidetable.SentinelOpen) + "return x + 1" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "def f(x):")
	assert.Contains(t, out, "    return x + 1")
}

func TestParseModule_IfElseSuite(t *testing.T) {
	src := "if x:" + string(sidetable.SentinelOpen) + "y = 1" + string(sidetable.SentinelClose) +
		"else:" + string(sidetable.SentinelOpen) + "y = 2" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "if x:\n    y = 1")
	assert.Contains(t, out, "else:\n    y = 2")
}

func TestParseModule_ForLoopHeaderRewritesExpression(t *testing.T) {
	src := "for x in xs |> f:" + string(sidetable.SentinelOpen) + "pass" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "for x in (f)(xs):")
}

func TestParseModule_DataClass(t *testing.T) {
	out := evalModule(t, "data Point(x, y)", Options{})
	assert.Contains(t, out, `class Point(_coconut.collections.namedtuple("Point", "x y")):`)
	assert.Contains(t, out, "__slots__ = ()")
}

func TestParseModule_OperatorDef(t *testing.T) {
	assert.Equal(t, "def plus(a, b): return a + b", evalModule(t, "def (a) `plus` (b) = a + b", Options{}))
}

func TestParseModule_DecoratedDef(t *testing.T) {
	src := "@decorator\ndef f(x) = x"
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "@decorator\ndef f(x): return x")
}

func TestParseModule_MatchFunctionDef(t *testing.T) {
	src := "def f(1, x):" + string(sidetable.SentinelOpen) + "return x" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "def f(*_match_args):")
	assert.Contains(t, out, "_coconut_MatchError")
}

func TestParseModule_MatchStatement(t *testing.T) {
	src := "match [x, y] in pair:" + string(sidetable.SentinelOpen) + "z = x" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "_coconut_match_value = pair")
	assert.Contains(t, out, "if _coconut_match_check:")
	assert.Contains(t, out, "    z = x")
}

func TestParseModule_InternalPrefixNameStrictMode(t *testing.T) {
	toks, err := lex.New("_coconut_foo = 1").Tokens()
	require.NoError(t, err)
	p := New(toks, Options{Strict: true})
	_, err = p.ParseModule()
	assert.Error(t, err)
}

func TestParseModule_InternalPrefixNameNonStrictIsAllowed(t *testing.T) {
	assert.Equal(t, "_coconut_foo = 1", evalModule(t, "_coconut_foo = 1", Options{}))
}

func TestParseModule_AsyncAllowedUnderUniversalTarget(t *testing.T) {
	src := "async def f(x):" + string(sidetable.SentinelOpen) + "return x" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{})
	assert.Contains(t, out, "async def f(x):")
	assert.Contains(t, out, "    return x")
}

func TestParseModule_AsyncAllowedUnder35Target(t *testing.T) {
	src := "async def f(x):" + string(sidetable.SentinelOpen) + "return x" + string(sidetable.SentinelClose)
	out := evalModule(t, src, Options{Target: "35"})
	assert.Contains(t, out, "async def f(x):")
}

func TestParseModule_AsyncRejectedUnderPinnedPre35Target(t *testing.T) {
	src := "async def f(x):" + string(sidetable.SentinelOpen) + "return x" + string(sidetable.SentinelClose)
	toks, err := lex.New(src).Tokens()
	require.NoError(t, err)
	p := New(toks, Options{Target: "27"})
	_, err = p.ParseModule()
	require.Error(t, err)
	gateErr, ok := err.(*TargetGateError)
	require.True(t, ok, "expected *TargetGateError, got %T", err)
	assert.Equal(t, "async", gateErr.Construct)
	assert.Equal(t, "35", gateErr.RequiredTarget)
}

func TestParseModule_AsyncRejectedUnderBare3Target(t *testing.T) {
	src := "async def f(x):" + string(sidetable.SentinelOpen) + "return x" + string(sidetable.SentinelClose)
	toks, err := lex.New(src).Tokens()
	require.NoError(t, err)
	p := New(toks, Options{Target: "3"})
	_, err = p.ParseModule()
	assert.Error(t, err)
}
