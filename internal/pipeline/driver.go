package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"feedwatch/internal/feed"
	"feedwatch/internal/metrics"
	"feedwatch/internal/storage"
	logx "feedwatch/pkg/logx"
)

// Driver threads every entry of every configured feed through
// recency → keyword → identity → seen-set → delivery.
//
// A Driver is single-threaded: Run must not be called concurrently.
type Driver struct {
	cfg     *Config
	src     Source
	notif   Notifier
	seen    storage.Store
	log     logx.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// sent holds ids delivered during the current Run, including any the
	// seen-set failed to persist.
	sent map[string]struct{}
}

type Option func(*Driver)

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option { return func(d *Driver) { d.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Driver) { d.metrics = m } }

func New(cfg *Config, src Source, notif Notifier, seen storage.Store, log logx.Logger, opts ...Option) *Driver {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	d := &Driver{cfg: cfg, src: src, notif: notif, seen: seen, log: log, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Run makes one pass over all feeds. Per-source and per-entry failures are
// logged and counted; they never abort the run.
func (d *Driver) Run(ctx context.Context) Report {
	start := d.now()
	rep := Report{
		RunID:    uuid.NewString(),
		Started:  start,
		Feeds:    len(d.cfg.Feeds),
		Outcomes: map[string]int{},
	}
	d.sent = map[string]struct{}{}
	log := d.log.With(logx.String("run_id", rep.RunID))
	window := d.cfg.Window
	if window <= 0 {
		window = feed.DefaultWindow
	}
	log.Info("run started", logx.Int("feeds", rep.Feeds), logx.Int("keywords", d.cfg.Matcher.Len()), logx.Duration("window", window))

	for _, url := range d.cfg.Feeds {
		if ctx.Err() != nil {
			log.Warn("run interrupted", logx.Err(ctx.Err()))
			break
		}
		entries, err := d.src.Fetch(ctx, url)
		if err != nil {
			rep.FetchErrors++
			d.metrics.ObserveFetchError(url)
			log.Warn("feed fetch failed", logx.String("feed", url), logx.Err(err))
			continue
		}
		log.Debug("feed fetched", logx.String("feed", url), logx.Int("entries", len(entries)))

		for _, e := range entries {
			rep.Entries++
			outcome := d.process(ctx, log.With(logx.String("feed", url)), e, window)
			rep.Outcomes[outcome]++
			d.metrics.ObserveEntry(outcome)
		}
	}

	rep.Took = d.now().Sub(start)
	rep.SeenAfterRun = d.seen.Len()
	d.metrics.ObserveRun(rep.Took, rep.SeenAfterRun, d.now())
	log.Info("run finished",
		logx.Int("entries", rep.Entries),
		logx.Int("delivered", rep.Delivered()),
		logx.Int("failed", rep.Failed()),
		logx.Int("fetch_errors", rep.FetchErrors),
		logx.Duration("took", rep.Took),
	)
	return rep
}

func (d *Driver) process(ctx context.Context, log logx.Logger, e feed.Entry, window time.Duration) string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return metrics.OutcomeNoTitle
	}
	if !feed.IsRecent(e.Timestamp(), d.now(), window) {
		return metrics.OutcomeStale
	}
	if !d.cfg.Matcher.Match(title) {
		return metrics.OutcomeNoMatch
	}

	id := feed.EntryID(title, e.Link)
	_, sentThisRun := d.sent[id]
	if sentThisRun || d.seen.Contains(id) {
		log.Debug("duplicate entry", logx.String("id", id), logx.String("title", title))
		return metrics.OutcomeDuplicate
	}

	if err := d.notif.Deliver(ctx, d.notif.Format(e)); err != nil {
		log.Warn("entry not delivered; will retry next run", logx.String("id", id), logx.String("title", title), logx.Err(err))
		return metrics.OutcomeFailed
	}
	d.sent[id] = struct{}{}
	if err := d.seen.Record(ctx, id); err != nil {
		log.Error("delivered entry not recorded; it may be resent", logx.String("id", id), logx.String("title", title), logx.Err(err))
		return metrics.OutcomePersistFailed
	}
	log.Info("entry delivered", logx.String("id", id), logx.String("title", title))
	return metrics.OutcomeDelivered
}
