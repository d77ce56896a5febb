package media

import "regexp"

var bareURLPattern = regexp.MustCompile(`^(http|https)://[^ "]+$`)

// IsBareURL reports whether s, taken as a whole, is a single http(s) URL.
//
// This is a heuristic on the literal string: leading or trailing whitespace,
// an upper-case scheme, or a URL embedded in prose all return false, while
// malformed hosts such as "http://x" return true. Only spaces and double quotes
// end a URL, so a tab or newline inside the string still matches. Callers trim
// input first.
func IsBareURL(s string) bool {
	return bareURLPattern.MatchString(s)
}
