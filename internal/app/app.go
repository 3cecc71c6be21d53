package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"feedwatch/internal/config"
	"feedwatch/internal/feed"
	"feedwatch/internal/metrics"
	"feedwatch/internal/notifier"
	"feedwatch/internal/pipeline"
	"feedwatch/internal/storage"
	kit "feedwatch/internal/transport"
	telegram "feedwatch/internal/transport/telegram/adapter"
	logx "feedwatch/pkg/logx"
)

// Options are the command-line inputs.
type Options struct {
	ConfigPath string
	// Once forces a single pass even when a schedule is configured.
	Once bool
	// DryRun uses an in-memory seen-set and logs messages instead of sending them.
	DryRun bool
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

type App struct {
	opts Options
	cfg  *config.Config
	dur  config.Durations

	log  logx.Logger
	logs *logx.Service

	sender  kit.Sender
	target  kit.ChatTarget
	store   storage.Store
	notif   *notifier.Service
	source  pipeline.Source
	metrics *metrics.Metrics
	lists   *config.ListWatcher

	runMu  sync.Mutex
	lastMu sync.Mutex
	last   *pipeline.Report
}

// New performs all startup work that may fail fatally: config, secrets,
// list files and the seen-set. Nothing is sent before it returns.
func New(opts Options) (*App, error) {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	dur, err := cfg.ParseDurations()
	if err != nil {
		return nil, err
	}

	secrets, err := config.LoadSecrets(opts.LookupEnv)
	if err != nil && !opts.DryRun {
		return nil, err
	}
	target := kit.ChatTarget{ChatID: secrets.ChatID, ThreadID: cfg.Telegram.ThreadID}

	bootLog := logx.NewConsole(cfg.Logging.Level)

	var sender kit.Sender
	if opts.DryRun {
		sender = dryRunSender{log: bootLog.With(logx.String("comp", "dryrun"))}
		if target.IsZero() {
			target.ChatID = "dry-run"
		}
	} else {
		ad, err := telegram.New(telegram.Config{
			Token:   secrets.BotToken,
			APIURL:  cfg.Telegram.APIURL,
			Timeout: dur.SendTimeout,
		}, bootLog.With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, err
		}
		sender = ad
	}

	logs, log := logx.New(mapLogConfig(cfg, secrets.ChatID, opts.DryRun), sender)
	a := &App{
		opts:    opts,
		cfg:     cfg,
		dur:     dur,
		log:     log.With(logx.String("comp", "app")),
		logs:    logs,
		sender:  sender,
		target:  target,
		metrics: metrics.New(),
	}

	initial, err := config.LoadLists(cfg.FeedsFile, cfg.KeywordsFile)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	a.lists = config.NewListWatcher(cfg.FeedsFile, cfg.KeywordsFile, initial, log)

	sc := storage.Config{Driver: cfg.Storage.Driver, Path: cfg.Storage.Path}
	if opts.DryRun {
		sc.Driver = "memory"
	}
	if a.store, err = storage.Open(sc, log.With(logx.String("comp", "storage"))); err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open seen-set: %w", err)
	}

	a.notif = notifier.New(notifier.Config{
		Target:         target,
		DisablePreview: cfg.Telegram.DisablePreview,
	}, sender, log.With(logx.String("comp", "notifier")))
	a.source = feed.NewFetcher(feed.FetchConfig{Timeout: dur.FetchTimeout, UserAgent: cfg.Fetch.UserAgent})

	a.log.Info("ready",
		logx.Int("feeds", len(initial.Feeds)),
		logx.Int("keywords", len(initial.Keywords)),
		logx.Int("seen", a.store.Len()),
		logx.Duration("window", dur.Window),
		logx.Bool("dry_run", opts.DryRun),
	)
	return a, nil
}

func mapLogConfig(cfg *config.Config, chatID string, dryRun bool) logx.Config {
	lc := cfg.Logging
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled:    lc.File.Enabled,
			Path:       lc.File.Path,
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
			MaxAgeDays: lc.File.MaxAgeDays,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    lc.Telegram.Enabled && !dryRun && chatID != "",
			Target:     kit.ChatTarget{ChatID: chatID, ThreadID: lc.Telegram.ThreadID},
			MinLevel:   lc.Telegram.MinLevel,
			RatePerSec: lc.Telegram.RatePerSec,
		},
	}
}

// Daemon reports whether Run will keep running on a schedule.
func (a *App) Daemon() bool {
	return !a.opts.Once && strings.TrimSpace(a.cfg.Schedule) != ""
}

// Run executes one pass or, with a schedule, serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.Daemon() {
		return a.Serve(ctx)
	}
	a.sendStartupMessage(ctx)
	a.RunOnce(ctx)
	return nil
}

// RunOnce performs one full pass over the current lists.
// Calls are serialized.
func (a *App) RunOnce(ctx context.Context) pipeline.Report {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	lists := a.lists.Get()
	d := pipeline.New(&pipeline.Config{
		Feeds:   lists.Feeds,
		Matcher: feed.NewMatcher(lists.Keywords),
		Window:  a.dur.Window,
	}, a.source, a.notif, a.store, a.log.With(logx.String("comp", "pipeline")), pipeline.WithMetrics(a.metrics))

	rep := d.Run(ctx)
	a.lastMu.Lock()
	a.last = &rep
	a.lastMu.Unlock()
	return rep
}

// LastReport returns the most recent run report, or nil before the first run.
func (a *App) LastReport() *pipeline.Report {
	a.lastMu.Lock()
	defer a.lastMu.Unlock()
	return a.last
}

func (a *App) sendStartupMessage(ctx context.Context) {
	msg := strings.TrimSpace(a.cfg.Telegram.StartupMessage)
	if msg == "" {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, a.dur.SendTimeout)
	defer cancel()
	if _, err := a.sender.SendText(sctx, a.target, msg, &kit.SendOptions{DisablePreview: true}); err != nil {
		a.log.Warn("startup message failed", logx.Err(err))
	}
}

// Close releases the seen-set and flushes logs.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close seen-set: %w", err))
		}
	}
	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
