package feed

import "time"

// Entry is one item of a feed, reduced to what the pipeline reads.
type Entry struct {
	Title     string
	Link      string
	Published *time.Time
	Updated   *time.Time
}

// Timestamp returns the publish time, falling back to the updated time.
// It returns nil when neither is set.
func (e Entry) Timestamp() *time.Time {
	if e.Published != nil && !e.Published.IsZero() {
		return e.Published
	}
	if e.Updated != nil && !e.Updated.IsZero() {
		return e.Updated
	}
	return nil
}
