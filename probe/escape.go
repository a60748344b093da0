package probe

import "strings"

// escaper runs a single pass, so an inserted backslash is never itself
// re-escaped by a later rule.
var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"$", "\\$",
)

// Escape escapes backslash, backtick and dollar so arbitrary text can be
// embedded inside a backtick-quoted script literal without terminating it
// or opening a ${...} substitution.
func Escape(s string) string {
	return escaper.Replace(s)
}
