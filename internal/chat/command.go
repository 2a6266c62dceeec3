package chat

import "strings"

// splitTarget parses the argument rest of a /msg command. The target id is
// read atoll-style: leading whitespace, an optional sign, then digits, with
// anything else yielding 0 — and 0 never matches a live session, so a
// malformed id reads as "not found" rather than an error. The text is
// everything after the first space of rest, inner spaces preserved.
func splitTarget(rest string) (int64, string) {
	id := leadingInt(rest)
	text := ""
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		text = rest[i+1:]
	}
	return id, text
}

func leadingInt(s string) int64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var n int64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
