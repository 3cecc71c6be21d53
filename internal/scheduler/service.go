package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "feedwatch/pkg/logx"
)

type Config struct {
	Schedule string
	// Timezone is an IANA name; empty means local time.
	Timezone string
}

// Service fires one job on a schedule. Overlapping triggers are skipped.
type Service struct {
	log      logx.Logger
	schedule Schedule
	loc      *time.Location
	parser   cron.Parser

	mu     sync.Mutex
	c      *cron.Cron
	cs     cron.Schedule
	cancel context.CancelFunc
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	sched, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("timezone %q: %w", tz, err)
		}
	}
	s := &Service{
		log:      log.With(logx.String("comp", "scheduler")),
		schedule: sched,
		loc:      loc,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	if _, err := s.cronSchedule(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Schedule() Schedule { return s.schedule }

func (s *Service) cronSchedule() (cron.Schedule, error) {
	if s.schedule.Kind == KindInterval {
		return cron.Every(s.schedule.Every), nil
	}
	cs, err := s.parser.Parse(s.schedule.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid cron %q: %w", s.schedule.Cron, err)
	}
	return cs, nil
}

// Start registers job and starts triggering. The job's context is canceled by
// Stop or when ctx is done.
func (s *Service) Start(ctx context.Context, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	cs, err := s.cronSchedule()
	if err != nil {
		return err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	cl := cronLogger{log: s.log}
	c := cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(cs, cron.FuncJob(func() {
		if jobCtx.Err() != nil {
			return
		}
		job(jobCtx)
	}))
	c.Start()

	s.c, s.cs = c, cs
	s.cancel = cancel
	s.log.Info("service started", logx.String("schedule", s.schedule.String()), logx.String("tz", s.loc.String()), logx.Time("next", s.nextLocked()))
	return nil
}

// Next returns the next trigger time, or zero if the service is not running.
func (s *Service) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

func (s *Service) nextLocked() time.Time {
	if s.c == nil {
		return time.Time{}
	}
	return s.cs.Next(time.Now().In(s.loc))
}

// Stop stops triggering and waits for a running job until ctx is done.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	c, cancel := s.c, s.cancel
	s.c, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("stop timed out waiting for running job")
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

// cronLogger adapts logx to cron.Logger. cron's Info lines are chatty, so
// they go to debug.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
