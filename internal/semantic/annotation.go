package semantic

import "strings"

// splitTypeAnnotation splits an identifier written "name:Type" at its first
// colon, per the rule for parameter and return-position annotations.
// Returns ok=false if name contains no colon.
func splitTypeAnnotation(raw string) (name, typ string, ok bool) {
	i := strings.IndexByte(raw, ':')
	if i < 0 {
		return raw, "", false
	}
	return raw[:i], raw[i+1:], true
}
