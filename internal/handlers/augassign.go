package handlers

import "fmt"

// AugAssign lowers the extended augmented-assignment operators of 4.5.6.
// Every other augop (`+=`, `-=`, ...) is already valid target-language
// syntax and passes through verbatim.
func AugAssign(target, op, rhs string) string {
	switch op {
	case "|>=":
		return fmt.Sprintf("%s = (%s)(%s)", target, rhs, target)
	case "|*>=":
		return fmt.Sprintf("%s = (%s)(*%s)", target, rhs, target)
	case "<|=":
		return fmt.Sprintf("%s = (%s)(%s)", target, target, rhs)
	case "<*|=":
		return fmt.Sprintf("%s = (%s)(*%s)", target, target, rhs)
	case "..=":
		return fmt.Sprintf("%s = %s", target, Compose(target, rhs))
	case "::=":
		tmp := "_coconut_" + target + "_old"
		return fmt.Sprintf("%s = %s\n%s = %s", tmp, target, target, Chain(tmp, rhs))
	default:
		return fmt.Sprintf("%s %s %s", target, op, rhs)
	}
}
