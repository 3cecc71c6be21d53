package pipeline

import (
	"context"
	"time"

	"feedwatch/internal/feed"
	"feedwatch/internal/metrics"
)

// Source returns the entries of one feed in feed order.
type Source interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// Notifier formats and delivers one message per qualifying entry.
type Notifier interface {
	Format(e feed.Entry) string
	Deliver(ctx context.Context, text string) error
}

// Config is the immutable per-run configuration of the Driver.
type Config struct {
	Feeds   []string
	Matcher *feed.Matcher
	Window  time.Duration
}

// Report summarizes one run. Counts are keyed by metrics.Outcome* values.
type Report struct {
	RunID        string
	Started      time.Time
	Took         time.Duration
	Feeds        int
	FetchErrors  int
	Entries      int
	Outcomes     map[string]int
	SeenAfterRun int
}

func (r Report) Delivered() int { return r.Outcomes[metrics.OutcomeDelivered] }
func (r Report) Failed() int    { return r.Outcomes[metrics.OutcomeFailed] }
