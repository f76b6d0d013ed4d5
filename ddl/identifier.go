package ddl

import "strings"

// stripQuoting removes quoting characters a name may have picked up
// upstream: backticks, double quotes, and bracket characters left over from
// list serialization.
var stripQuoting = strings.NewReplacer("`", "", `"`, "", "[", "", "]", "")

// formatIdentifier wraps name in the given quote character exactly once.
// Applying it to an already-quoted name yields the same result, so the
// operation is idempotent.
func formatIdentifier(name, quote string) string {
	return quote + stripQuoting.Replace(strings.TrimSpace(name)) + quote
}
