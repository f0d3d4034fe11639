// Package sidetable holds the opaque-reference mechanism used to pull
// string literals, comments, and backslash passthroughs out of source text
// before the indentation and grammar passes run, and to put them back again
// once a target-language body has been produced.
//
// A SideTable is append-only for the lifetime of one compilation: Refs are
// never moved once added, so an index into the table is a stable identity
// for the rest of the pipeline.
package sidetable

import (
	"fmt"
	"sort"
)

// RefKind distinguishes the three kinds of region a Ref can stand in for.
type RefKind int

const (
	// KindString is a string literal.
	KindString RefKind = iota

	// KindComment is a line comment.
	KindComment

	// KindPassthrough is a backslash-escaped passthrough of raw
	// target-language text.
	KindPassthrough
)

func (k RefKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindComment:
		return "comment"
	case KindPassthrough:
		return "passthrough"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// Ref is a single entry in the SideTable. Exactly the fields relevant to
// its Kind are meaningful; the rest are zero-valued.
type Ref struct {
	Kind RefKind

	// Text is the inner text of the region (the string's contents without
	// quotes, the comment's contents without the leading '#', or the
	// passthrough's raw contents).
	Text string

	// QuoteChar is the quote character used to delimit a string Ref ('\''
	// or '"', or '`' for an f-string). Unused for other kinds.
	QuoteChar rune

	// Multiline is true for triple-quoted strings and for parenthesized
	// multi-line passthroughs.
	Multiline bool

	// Raw is true for a raw string literal (r"...").
	Raw bool

	// Byte is true for a byte string literal (b"...").
	Byte bool

	// FString is true for a literal using f-string interpolation syntax.
	FString bool
}

// SideTable is the append-only list of Refs accumulated for one
// compilation, plus the line-skip bookkeeping collapsed alongside it.
type SideTable struct {
	refs []Ref
}

// New returns an empty SideTable ready for use.
func New() *SideTable {
	return &SideTable{}
}

// Add appends ref to the table and returns its stable index.
func (st *SideTable) Add(ref Ref) int {
	st.refs = append(st.refs, ref)
	return len(st.refs) - 1
}

// Get returns the Ref at idx. It panics if idx is out of range, since an
// out-of-range reference index can only arise from a marker-format bug
// elsewhere in the pipeline (an Internal-class error, not a user-facing
// one).
func (st *SideTable) Get(idx int) Ref {
	if idx < 0 || idx >= len(st.refs) {
		panic(fmt.Sprintf("sidetable: index %d out of range (table has %d entries)", idx, len(st.refs)))
	}
	return st.refs[idx]
}

// Len returns the number of Refs currently stored.
func (st *SideTable) Len() int {
	return len(st.refs)
}

// Sentinels are the three Unicode code points used to delimit markers in
// processed text. They are drawn from the Private Use Area so they cannot
// collide with any legal source character.
const (
	SentinelOpen    rune = ''
	SentinelOpenStr rune = ''
	SentinelClose   rune = ''
)

// SkipSet is the sorted set of bracketed-text line numbers that were
// collapsed by S3/S4 (continuation joins, embedded newlines in multi-line
// strings or passthroughs). It is used only to remap a parser-reported line
// number back to the corresponding line in the original source.
//
// Despite the name, this is not a mathematical set: the same collapsed-text
// line number can legitimately be recorded more than once (e.g. a
// triple-quoted string that swallows three original lines into one output
// line contributes one entry per swallowed line, all at that same output
// line number), so that OriginalLine's counting formula advances correctly.
// It is kept sorted (with duplicates) for that counting and for Sorted.
type SkipSet struct {
	lines  []int
	sorted bool
}

// NewSkipSet returns an empty SkipSet.
func NewSkipSet() *SkipSet {
	return &SkipSet{sorted: true}
}

// Add records that one more original-source line was collapsed away at (or
// before) the given collapsed-text line number.
func (s *SkipSet) Add(line int) {
	s.lines = append(s.lines, line)
	s.sorted = false
}

func (s *SkipSet) ensureSorted() {
	if s.sorted {
		return
	}
	sort.Ints(s.lines)
	s.sorted = true
}

// Sorted returns the recorded lines in ascending order (with duplicates).
func (s *SkipSet) Sorted() []int {
	s.ensureSorted()
	out := make([]int, len(s.lines))
	copy(out, s.lines)
	return out
}

// OriginalLine maps a line number in the bracketed/parsed text back to the
// corresponding line number in the original source, per spec: original =
// line + |{s in SkipSet : s <= line}|.
func (s *SkipSet) OriginalLine(line int) int {
	s.ensureSorted()
	// first index where lines[i] > line == count of entries <= line
	lo, hi := 0, len(s.lines)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.lines[mid] <= line {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return line + lo
}

// Len returns the number of lines recorded as skipped.
func (s *SkipSet) Len() int {
	return len(s.lines)
}
