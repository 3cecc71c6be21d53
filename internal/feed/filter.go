package feed

import (
	"strings"
	"time"
)

// DefaultWindow is the recency window used when none is configured.
const DefaultWindow = 12 * time.Hour

// IsRecent reports whether ts falls inside the trailing window ending at now.
// A missing timestamp is never recent. Future timestamps are recent.
func IsRecent(ts *time.Time, now time.Time, window time.Duration) bool {
	if ts == nil || ts.IsZero() {
		return false
	}
	return now.UTC().Sub(ts.UTC()) < window
}

// Matcher does case-insensitive substring matching of titles against a
// keyword list. It is immutable once built.
type Matcher struct {
	keywords []string
}

// NewMatcher lower-cases and trims keywords once; blank ones are dropped.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		m.keywords = append(m.keywords, k)
	}
	return m
}

// Match reports whether any keyword occurs in title.
// An empty keyword list matches nothing.
func (m *Matcher) Match(title string) bool {
	if m == nil || len(m.keywords) == 0 {
		return false
	}
	t := strings.ToLower(title)
	for _, k := range m.keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Len returns the number of usable keywords.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keywords)
}
