// Package feed holds the entry model and the pure filtering primitives of the
// pipeline: link canonicalization, entry identity, the recency window and
// keyword matching. Fetcher is the gofeed-backed source of entries.
package feed
