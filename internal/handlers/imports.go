package handlers

import "fmt"

// legacyModuleTable maps a target-version-3 module name to its target-
// version-2 equivalent and the version at which the new name was
// introduced, for the subset of the standard library the spec's universal-
// import handler must cover.
var legacyModuleTable = map[string]struct {
	legacyName   string
	introducedAt string
}{
	"queue":        {"Queue", "(3,)"},
	"configparser": {"ConfigParser", "(3,)"},
	"socketserver": {"SocketServer", "(3,)"},
	"tkinter":      {"Tkinter", "(3,)"},
	"winreg":       {"_winreg", "(3,)"},
	"builtins":     {"__builtin__", "(3,)"},
	"copyreg":      {"copy_reg", "(3,)"},
	"reprlib":      {"repr", "(3,)"},
	"pickle":       {"cPickle", "(3,)"},
}

// ForbiddenFutureImportError reports a `from __future__ import ...`
// statement, which the header already synthesizes and so may never appear
// directly in source per 4.5.4.
type ForbiddenFutureImportError struct {
	Module string
}

func (e *ForbiddenFutureImportError) Error() string {
	return fmt.Sprintf("explicit `from __future__ import ...` is forbidden (module %q); the compiler emits this itself", e.Module)
}

// UniversalImport lowers `import module [as alias]` per 4.5.4. target is
// "2", "3", or "" (universal, emitting a runtime version check).
func UniversalImport(module, alias, target string) (string, error) {
	if module == "__future__" {
		return "", &ForbiddenFutureImportError{Module: module}
	}

	asClause := ""
	if alias != "" && alias != module {
		asClause = " as " + alias
	}

	legacy, hasLegacy := legacyModuleTable[module]
	if !hasLegacy {
		return fmt.Sprintf("import %s%s", module, asClause), nil
	}

	bindName := alias
	if bindName == "" {
		bindName = module
	}

	switch target {
	case "2":
		return fmt.Sprintf("import %s as %s", legacy.legacyName, bindName), nil
	case "3":
		return fmt.Sprintf("import %s as %s", module, bindName), nil
	default:
		return fmt.Sprintf(
			"if _coconut_sys.version_info < %s:\n    import %s as %s\nelse:\n    import %s as %s",
			legacy.introducedAt, legacy.legacyName, bindName, module, bindName,
		), nil
	}
}
