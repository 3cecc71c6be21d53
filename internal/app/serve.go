package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"feedwatch/internal/observability"
	"feedwatch/internal/runtime/supervisor"
	"feedwatch/internal/scheduler"
	logx "feedwatch/pkg/logx"
)

const stopTimeout = 30 * time.Second

// Serve runs the daemon: one pass immediately, then one per schedule tick.
// It returns after ctx is done and in-flight work has stopped.
func (a *App) Serve(ctx context.Context) error {
	sched, err := scheduler.New(scheduler.Config{Schedule: a.cfg.Schedule, Timezone: a.cfg.Timezone}, a.log)
	if err != nil {
		return err
	}

	sup := supervisor.New(ctx, a.log)
	sup.GoRestart("lists.watch", time.Second, 30*time.Second, a.lists.Watch)

	if a.cfg.Metrics.Enabled {
		srv := observability.New(observability.Config{
			Addr:         a.cfg.Metrics.Addr,
			Pprof:        a.cfg.Metrics.Pprof,
			ReadTimeout:  a.dur.MetricsRead,
			WriteTimeout: a.dur.MetricsWrite,
			IdleTimeout:  a.dur.MetricsIdle,
		}, a.metrics.Handler(), func() any { return a.status(sup, sched.Next) }, a.log)
		sup.GoRestart("observability.http", 500*time.Millisecond, 10*time.Second, srv.Run)
	}

	a.sendStartupMessage(ctx)
	if err := sched.Start(sup.Context(), func(ctx context.Context) { a.RunOnce(ctx) }); err != nil {
		_ = sup.Stop(context.Background())
		return err
	}
	notifySystemd(a.log, daemon.SdNotifyReady)

	// First pass runs right away. A tick that lands during it waits on runMu.
	a.RunOnce(sup.Context())

	<-ctx.Done()
	a.log.Info("stop requested")
	notifySystemd(a.log, daemon.SdNotifyStopping)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	sched.Stop(stopCtx)
	if err := sup.Stop(stopCtx); err != nil {
		a.log.Warn("background tasks did not stop in time", logx.Err(err))
	}
	return nil
}

// notifySystemd is a no-op outside a systemd unit (NOTIFY_SOCKET unset).
func notifySystemd(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify sent", logx.String("state", state))
	}
}
