package tgui

import "unicode/utf8"

// Ellipsis marks text cut by TruncRunes.
const Ellipsis = "…"

// TruncRunes keeps the first n runes of s and appends Ellipsis when anything
// was cut. Invalid bytes count as one rune each.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n || utf8.RuneCountInString(s) <= n {
		return s
	}
	end := 0
	for i := 0; i < n; i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end] + Ellipsis
}
