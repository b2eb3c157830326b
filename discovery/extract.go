package discovery

import (
	"net/netip"
	"regexp"
)

const (
	h16  = `[0-9a-fA-F]{1,4}`
	ipv4 = `(?:(?:25[0-5]|(?:2[0-4]|1?[0-9])?[0-9])\.){3}(?:25[0-5]|(?:2[0-4]|1?[0-9])?[0-9])`
)

// ipv6Pattern matches the textual forms of RFC 4291 section 2.2: full,
// compressed, embedded IPv4 and zoned link-local.
var ipv6Pattern = func() *regexp.Regexp {
	re := regexp.MustCompile(`(?:` +
		`(?:` + h16 + `:){7}` + h16 +
		`|(?:` + h16 + `:){1,7}:` +
		`|(?:` + h16 + `:){1,6}:` + h16 +
		`|(?:` + h16 + `:){1,5}(?::` + h16 + `){1,2}` +
		`|(?:` + h16 + `:){1,4}(?::` + h16 + `){1,3}` +
		`|(?:` + h16 + `:){1,3}(?::` + h16 + `){1,4}` +
		`|(?:` + h16 + `:){1,2}(?::` + h16 + `){1,5}` +
		`|` + h16 + `:(?::` + h16 + `){1,6}` +
		`|:(?:(?::` + h16 + `){1,7}|:)` +
		`|[fF][eE]80:(?::[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]+` +
		`|::(?:[fF]{4}(?::0{1,4})?:)?` + ipv4 +
		`|(?:` + h16 + `:){1,4}:` + ipv4 +
		`)`)
	// At one offset the longest alternative wins, otherwise "2001:db8::1"
	// would be cut to "2001:db8::".
	re.Longest()
	return re
}()

// Extract returns the first IPv6 literal in text, left to right, that is a
// valid address. The literal is returned exactly as written.
func Extract(text []byte) (string, bool) {
	return extract(text, false)
}

// ExtractString is Extract for string input.
func ExtractString(text string) (string, bool) {
	return Extract([]byte(text))
}

// extract scans text. With truncated set, text was cut short and a candidate
// running into its end is incomplete.
func extract(text []byte, truncated bool) (string, bool) {
	for pos := 0; pos < len(text); {
		loc := ipv6Pattern.FindIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		switch {
		case gluedAfter(text, end), truncated && end == len(text):
			// the whole token is too long, like "1:2:3:4:5:6:7:8:9"
			pos = skip(text, start, isToken)
		case gluedBefore(text, start):
			// starts inside a word: "6:2001:db8::1" of "IPv6:2001:db8::1"
			pos = skip(text, start, isWord)
		default:
			if literal := string(text[start:end]); valid(literal) {
				return literal, true
			}
			pos = start + 1
		}
	}
	return "", false
}

func valid(literal string) bool {
	addr, err := netip.ParseAddr(literal)
	if err != nil {
		return false
	}
	return addr.Is6() && !addr.IsUnspecified()
}

// gluedBefore reports whether the candidate at start continues a word, like
// "::1" in "gggg::1". A preceding ':' is a label separator and is fine.
func gluedBefore(text []byte, start int) bool {
	if start == 0 {
		return false
	}
	c := text[start-1]
	return isWord(c) || c == '.'
}

// gluedAfter reports whether the candidate ending at end is cut out of a
// longer token.
func gluedAfter(text []byte, end int) bool {
	if end >= len(text) {
		return false
	}
	switch c := text[end]; {
	case isWord(c), c == ':', c == '%':
		return true
	case c == '.':
		// "::ffff:1.2.3" is not "::ffff:1", a full stop is fine
		return end+1 < len(text) && isDigit(text[end+1])
	}
	return false
}

// skip returns the index after the run of in characters at i, at least i+1.
func skip(text []byte, i int, in func(byte) bool) int {
	j := i
	for j < len(text) && in(text[j]) {
		j++
	}
	if j == i {
		j++
	}
	return j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWord(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isToken(c byte) bool {
	return isWord(c) || c == ':' || c == '.' || c == '%'
}
