// Package header implements S9 HeaderProc: synthesizing the version-gated
// prelude prepended to compiled output, per the six header kinds and the
// layout of spec §4.6/§6.4.
package header

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dekarrin/cococ/internal/version"
)

// Kind selects which of the six header shapes to synthesize.
type Kind int

const (
	// KindNone emits nothing: parse_single/parse_exec/parse_block modes.
	KindNone Kind = iota

	// KindInitial is the first header of a standalone file: shebang,
	// encoding declaration, content hash, and an optional docstring.
	KindInitial

	// KindRuntime is the `__coconut__` runtime module header: defines the
	// reusable helpers every compiled module imports.
	KindRuntime

	// KindPackage is emitted for a package member at some import depth.
	KindPackage

	// KindSys re-exports helpers from an already-installed runtime package
	// instead of re-defining them inline.
	KindSys

	// KindCode is the minimal single-line-compatible header used when
	// compiled output must stay a single logical statement.
	KindCode

	// KindFile is the complete standalone-module header: KindInitial plus
	// the runtime import block.
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInitial:
		return "initial"
	case KindRuntime:
		return "__coconut__"
	case KindPackage:
		return "package"
	case KindSys:
		return "sys"
	case KindCode:
		return "code"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Version is a target interpreter version used by PyCondition and the
// runtime-import gate, e.g. {3, 8}.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// less reports whether v sorts before o.
func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// PyCondition chooses between ifLt and ifGe at generate time when target
// pins a single side of ver, or emits a runtime sys.version_info check
// when target is the empty string (universal mode). target holds a
// version string ("2", "3", "27", "35", ...) or "" for universal.
func PyCondition(target string, ver Version, ifLt, ifGe string) string {
	if pinned, ok := parsePinnedTarget(target); ok {
		if pinned.less(ver) {
			return ifLt
		}
		return ifGe
	}

	return fmt.Sprintf(
		"if sys.version_info < (%d, %d):\n    %s\nelse:\n    %s",
		ver.Major, ver.Minor, indentContinuation(ifLt), indentContinuation(ifGe),
	)
}

// parsePinnedTarget interprets a driver-facing target string as a pinned
// Version. "2"/"3" pin the major version only (Minor left at 0, which
// compares correctly against any ver with Major > the pinned major); "27",
// "35", etc. pin major.minor. "" is not pinned (universal mode).
func parsePinnedTarget(target string) (Version, bool) {
	switch target {
	case "":
		return Version{}, false
	case "2":
		return Version{Major: 2, Minor: 999}, true
	case "3":
		return Version{Major: 3, Minor: 999}, true
	}

	if len(target) >= 2 {
		major := int(target[0] - '0')
		var minor int
		for _, c := range target[1:] {
			if c < '0' || c > '9' {
				return Version{}, false
			}
			minor = minor*10 + int(c-'0')
		}
		return Version{Major: major, Minor: minor}, true
	}

	return Version{}, false
}

func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}

// FlagSet is the subset of driver-facing configuration folded into the
// content hash, per spec §4.6.
type FlagSet struct {
	Minify      bool
	NoTCO       bool
	NoWrapTypes bool
	Strict      bool
}

func (f FlagSet) String() string {
	return fmt.Sprintf("minify=%v,no_tco=%v,no_wrap_types=%v,strict=%v", f.Minify, f.NoTCO, f.NoWrapTypes, f.Strict)
}

// ContentHash computes the hex-encoded sha256 digest covering compiler
// version, target, normalized source text, and flag set, per spec §4.6.
// Re-compilation with an unchanged hash may be skipped by an out-of-scope
// driver.
func ContentHash(compilerVersion, target, normalizedSource string, flags FlagSet) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", compilerVersion, target, flags.String(), normalizedSource)
	return hex.EncodeToString(h.Sum(nil))
}

// Params carries the per-compilation values a header body needs.
type Params struct {
	// Target is the driver-facing target string ("" for universal).
	Target string

	// Interpreter is the shebang interpreter name, e.g. "python3".
	Interpreter string

	// Encoding is the source encoding declared on line 2, e.g. "utf-8".
	Encoding string

	// Docstring is the compiled module's own docstring, if any, reproduced
	// verbatim in an `initial`/`file` header.
	Docstring string

	// PackageDepth is used only for KindPackage: how many levels up the
	// runtime import must reach (a relative-import dot count).
	PackageDepth int

	// Flags folds into the content hash.
	Flags FlagSet

	// NormalizedSource is the S1-normalized source text folded into the
	// content hash (not reproduced in the emitted header itself, even
	// under keep_lines — keep_lines instead trails the compiled body with
	// the original text as a comment, a Polish-stage concern).
	NormalizedSource string
}

const sectionSeparator = "# -----------------------------------------------------------------"

// Generate produces the header text for kind given params. The returned
// text never includes the compiled body; callers prepend it.
func Generate(kind Kind, params Params) (string, error) {
	switch kind {
	case KindNone:
		return "", nil
	case KindCode:
		return generateCode(params), nil
	case KindInitial:
		return generateInitial(params), nil
	case KindFile:
		initial := generateInitial(params)
		runtime := generateRuntimeImportBlock(params)
		return initial + sectionSeparator + "\n" + runtime + sectionSeparator + "\n", nil
	case KindRuntime:
		return generateRuntimeModule(params), nil
	case KindPackage:
		return generatePackage(params), nil
	case KindSys:
		return generateSys(params), nil
	default:
		return "", fmt.Errorf("header: unknown Kind %v", kind)
	}
}

func generateCode(params Params) string {
	hash := ContentHash(version.Current, params.Target, params.NormalizedSource, params.Flags)
	return fmt.Sprintf("#!/usr/bin/env %s\n# -*- coding: %s -*-\n# __coconut_hash__ = %s\n", params.Interpreter, params.Encoding, hash)
}

func generateInitial(params Params) string {
	hash := ContentHash(version.Current, params.Target, params.NormalizedSource, params.Flags)

	var sb strings.Builder
	fmt.Fprintf(&sb, "#!/usr/bin/env %s\n", params.Interpreter)
	fmt.Fprintf(&sb, "# -*- coding: %s -*-\n", params.Encoding)
	fmt.Fprintf(&sb, "# __coconut_hash__ = %s\n", hash)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "# Compiled with cococ version %s\n", version.Current)
	if params.Docstring != "" {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%q\n", params.Docstring)
	}
	sb.WriteString("\n")

	future := PyCondition(params.Target, Version{Major: 3, Minor: 0},
		"from __future__ import print_function, absolute_import, unicode_literals, division",
		"")
	if strings.TrimSpace(future) != "" {
		sb.WriteString(future)
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateRuntimeImportBlock(params Params) string {
	cond := PyCondition(params.Target, Version{Major: 3, Minor: 0},
		"from __coconut__ import *\nfrom __coconut__ import _coconut, _coconut_MatchError, _coconut_sentinel",
		"from __coconut__ import *\nfrom __coconut__ import _coconut, _coconut_MatchError, _coconut_sentinel",
	)
	return cond + "\n"
}

func generateRuntimeModule(params Params) string {
	var sb strings.Builder
	sb.WriteString(generateInitial(params))
	sb.WriteString(sectionSeparator + "\n")
	sb.WriteString("import sys as _coconut_sys\n")
	sb.WriteString("_coconut_sentinel = object()\n\n")
	sb.WriteString("class _coconut_MatchError(Exception):\n")
	sb.WriteString("    def __init__(self, pattern, value):\n")
	sb.WriteString("        super(_coconut_MatchError, self).__init__(\"pattern %r did not match %r\" % (pattern, value))\n")
	sb.WriteString(sectionSeparator + "\n")
	return sb.String()
}

func generatePackage(params Params) string {
	dots := strings.Repeat(".", params.PackageDepth)
	var sb strings.Builder
	sb.WriteString(generateInitial(params))
	sb.WriteString(sectionSeparator + "\n")
	fmt.Fprintf(&sb, "from %s__coconut__ import *\n", dots)
	fmt.Fprintf(&sb, "from %s__coconut__ import _coconut, _coconut_MatchError, _coconut_sentinel\n", dots)
	sb.WriteString(sectionSeparator + "\n")
	return sb.String()
}

func generateSys(params Params) string {
	var sb strings.Builder
	sb.WriteString(generateInitial(params))
	sb.WriteString(sectionSeparator + "\n")
	sb.WriteString("from coconut.__coconut__ import *\n")
	sb.WriteString("from coconut.__coconut__ import _coconut, _coconut_MatchError, _coconut_sentinel\n")
	sb.WriteString(sectionSeparator + "\n")
	return sb.String()
}
