package handlers

import "fmt"

// MathDef lowers `def f(params) = expr` to a normal function whose single
// statement returns expr, per 4.5.7.
func MathDef(name, params, expr string) string {
	return fmt.Sprintf("def %s(%s): return %s", name, params, expr)
}

// OperatorDef lowers the backtick-infix definition sugar
// `` def (a) `op` (b) = expr `` to `def op(a, b): return expr`.
func OperatorDef(op, a, b, expr string) string {
	return fmt.Sprintf("def %s(%s, %s): return %s", op, a, b, expr)
}
