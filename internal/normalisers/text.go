package normalisers

import "strings"

// CleanText removes a leading byte order mark and converts CRLF and
// lone CR line endings to LF.
func CleanText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
