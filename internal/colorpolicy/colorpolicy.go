// Package colorpolicy decides whether CLI output should be colorized. It
// is deliberately a pure function of its inputs so the policy itself is
// unit-testable without touching a real terminal or environment.
package colorpolicy

// Resolve decides whether color output should be enabled.
//
//   - mode == "never"  -> always false.
//   - mode == "always" -> always true.
//   - mode == "auto"   -> true iff isTTY and neither NO_COLOR nor EMACS is
//     set in the environment.
//
// Any other mode value is treated as "auto".
func Resolve(mode string, isTTY bool, env func(string) string) bool {
	switch mode {
	case "never":
		return false
	case "always":
		return true
	default:
		if env("NO_COLOR") != "" {
			return false
		}
		if env("EMACS") != "" {
			return false
		}
		return isTTY
	}
}
