package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idSeparator joins title and link; it does not occur in either field.
const idSeparator = "\x1f"

// EntryID returns the deduplication key of an entry: the hex SHA-256 of the
// trimmed lower-case title and the canonical link, title first.
// Empty titles are accepted; callers skip them upstream.
func EntryID(title, link string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	sum := sha256.Sum256([]byte(t + idSeparator + Canonicalize(link)))
	return hex.EncodeToString(sum[:])
}
