package feed

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	canonicalScheme = "https"
	hostPrefix      = "www."
)

// Canonicalize normalizes a link into its comparable form:
// https scheme, lower-case host without "www.", no trailing slash,
// no query and no fragment.
//
// Input that does not parse as an absolute URL with a host is returned
// trimmed, with query, fragment and trailing slashes removed.
// Canonicalize(Canonicalize(s)) == Canonicalize(s) for any s.
func Canonicalize(raw string) string {
	c := canonicalize(raw)
	// Trimming on the fallback path can leave text that now parses
	// (e.g. "http://host /"), so settle on the fixed point.
	for i := 0; i < 3; i++ {
		n := canonicalize(c)
		if n == c {
			break
		}
		c = n
	}
	return c
}

func canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// Cut fragment and query before parsing so bad escapes in either
	// never push a URL onto the fallback path.
	s, _, _ = strings.Cut(s, "#")
	s, _, _ = strings.Cut(s, "?")
	s = strings.TrimSpace(s)

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimRightFunc(s, func(r rune) bool { return r == '/' || unicode.IsSpace(r) })
	}

	host := strings.ToLower(u.Host)
	for strings.HasPrefix(host, hostPrefix) && len(host) > len(hostPrefix) {
		host = host[len(hostPrefix):]
	}
	return canonicalScheme + "://" + host + strings.TrimRight(u.EscapedPath(), "/")
}
