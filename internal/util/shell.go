// Package util provides small string helpers shared across sysdeck.
package util

import "strings"

// ShellQuote makes s a single literal word for a POSIX shell: it is wrapped
// in single quotes and each embedded quote becomes '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellJoin quotes every element of argv and joins them into one command
// line, for transports that can only send a string.
func ShellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = ShellQuote(a)
	}
	return strings.Join(quoted, " ")
}
