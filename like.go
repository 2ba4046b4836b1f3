package dbadmin

import "strings"

// EscapeLike escapes a string for literal use inside a LIKE pattern: the
// escape character is doubled, then the wildcards % and _ are prefixed
// with it. The escape character defaults to '*'; pass the one named in
// the query's ESCAPE clause to override it.
//
//	WHERE name LIKE '%' || ? || '%' ESCAPE '*'
func EscapeLike(s string, escapeChar ...rune) string {
	esc := "*"
	if len(escapeChar) > 0 {
		esc = string(escapeChar[0])
	}
	return strings.NewReplacer(
		esc, esc+esc,
		"%", esc+"%",
		"_", esc+"_",
	).Replace(s)
}
