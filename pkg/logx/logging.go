package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	kit "feedwatch/internal/transport"
	"feedwatch/pkg/tgui"
)

type Config struct {
	Level    string
	Console  bool
	File     FileConfig
	Telegram TelegramConfig
}

type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int // default 64
	MaxBackups int // default 3
	MaxAgeDays int // 0 keeps rotated files forever
}

// TelegramConfig mirrors selected log lines into a chat, usually the one the
// entries go to. Lines below MinLevel (default warn) are never sent.
type TelegramConfig struct {
	Enabled    bool
	Target     kit.ChatTarget
	MinLevel   string
	RatePerSec int
}

const (
	consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"
	defaultLogFile    = "./feedwatch.log"

	sinkQueueSize   = 256
	sinkSendTimeout = 10 * time.Second
	// Close gives queued lines this long to reach Telegram.
	sinkDrainTimeout = 5 * time.Second
)

// Field sets one key on a log event. Later fields win on a repeated key.
type Field func(e *zerolog.Event)

func String(k, v string) Field  { return func(e *zerolog.Event) { e.Str(k, v) } }
func Int(k string, v int) Field { return func(e *zerolog.Event) { e.Int(k, v) } }
func Bool(k string, v bool) Field {
	return func(e *zerolog.Event) { e.Bool(k, v) }
}
func Duration(k string, v time.Duration) Field {
	return func(e *zerolog.Event) { e.Dur(k, v) }
}
func Time(k string, v time.Time) Field { return func(e *zerolog.Event) { e.Time(k, v) } }
func Any(k string, v any) Field        { return func(e *zerolog.Event) { e.Interface(k, v) } }

// Err logs err under "err"; a nil error adds nothing.
func Err(err error) Field {
	return func(e *zerolog.Event) {
		if err != nil {
			e.Err(err)
		}
	}
}

// Logger is a value type; pass it by value and derive component loggers
// with With. The zero value drops everything.
type Logger struct {
	zl     zerolog.Logger
	set    bool
	fields []Field
}

func Nop() Logger { return Logger{zl: zerolog.Nop(), set: true} }

// NewConsole is the pre-config logger used until New has run.
func NewConsole(level string) Logger {
	setGlobals()
	return Logger{zl: newZerolog(newConsoleWriter(os.Stdout), level), set: true}
}

// NewWriter logs JSON lines to w.
func NewWriter(w io.Writer, level string) Logger {
	zl := zerolog.New(w).Level(parseLevel(level, zerolog.DebugLevel)).With().Timestamp().Logger()
	return Logger{zl: zl, set: true}
}

func (l Logger) IsZero() bool { return !l.set && len(l.fields) == 0 }

func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	cp := l
	cp.fields = append(append([]Field(nil), l.fields...), fields...)
	return cp
}

func (l Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l Logger) log(level zerolog.Level, msg string, fields []Field) {
	if !l.set {
		return
	}
	e := l.zl.WithLevel(level)
	if e == nil {
		return
	}
	if caller := callerAt(3); caller != "" {
		e.Str(zerolog.CallerFieldName, caller)
	}
	for _, group := range [][]Field{l.fields, fields} {
		for _, f := range group {
			if f != nil {
				f(e)
			}
		}
	}
	e.Msg(msg)
}

// callerAt returns "file.go:line" for the frame skip levels up.
func callerAt(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok || file == "" {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// Service owns the process-wide sinks: console, rotating file and Telegram.
// Sinks are fixed at construction; Close flushes and releases them.
type Service struct {
	file io.Closer
	sink *telegramSink

	closeOnce sync.Once
	closeErr  error
}

// New builds the sinks described by cfg. sender may be nil, in which case the
// Telegram sink is not installed.
func New(cfg Config, sender kit.Sender) (*Service, Logger) {
	setGlobals()
	s := &Service{}

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}
	if cfg.File.Enabled {
		lj := newRotatingFile(cfg.File)
		s.file = lj
		writers = append(writers, zerolog.SyncWriter(lj))
	}
	if cfg.Telegram.Enabled && sender != nil {
		if cfg.Telegram.Target.IsZero() {
			fmt.Fprintln(os.Stderr, "logx: telegram logging enabled but no chat target is set")
		} else {
			s.sink = newTelegramSink(cfg.Telegram, sender)
			writers = append(writers, s.sink)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}

	zl := newZerolog(zerolog.MultiLevelWriter(writers...), cfg.Level)
	return s, Logger{zl: zl, set: true}
}

// Dropped reports Telegram log lines lost to a full queue.
func (s *Service) Dropped() int64 {
	if s == nil || s.sink == nil {
		return 0
	}
	return s.sink.dropped.Load()
}

// Close sends what is queued for Telegram (bounded by a timeout) and closes
// the log file. It is idempotent.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.sink != nil {
			s.sink.close()
		}
		if s.file != nil {
			s.closeErr = s.file.Close()
		}
	})
	return s.closeErr
}

func setGlobals() {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = consoleTimeFormat
}

func newZerolog(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
}

func newRotatingFile(cfg FileConfig) *lumberjack.Logger {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultLogFile
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     max(0, cfg.MaxAgeDays),
	}
	if lj.MaxSize <= 0 {
		lj.MaxSize = 64
	}
	if lj.MaxBackups <= 0 {
		lj.MaxBackups = 3
	}
	return lj
}

func newConsoleWriter(w io.Writer) io.Writer {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	cw.FormatCaller = func(i any) string {
		s, _ := i.(string)
		return s
	}
	return cw
}

// telegramSink is a zerolog.LevelWriter that rate-limits, renders and queues
// lines for a background sender. Writes never block the caller.
type telegramSink struct {
	sender   kit.Sender
	target   kit.ChatTarget
	minLevel zerolog.Level
	limiter  *rate.Limiter

	queue   chan string
	dropped atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
}

func newTelegramSink(cfg TelegramConfig, sender kit.Sender) *telegramSink {
	rps := max(1, cfg.RatePerSec)
	ctx, cancel := context.WithCancel(context.Background())
	t := &telegramSink{
		sender:   sender,
		target:   cfg.Target,
		minLevel: parseLevel(cfg.MinLevel, zerolog.WarnLevel),
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		queue:    make(chan string, sinkQueueSize),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

func (t *telegramSink) Write(p []byte) (int, error) {
	return t.WriteLevel(zerolog.InfoLevel, p)
}

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < t.minLevel || !t.limiter.Allow() {
		return len(p), nil
	}
	msg := formatTelegramJSON(p)
	if msg == "" {
		return len(p), nil
	}
	select {
	case t.queue <- msg:
	default:
		t.dropped.Add(1)
	}
	return len(p), nil
}

func (t *telegramSink) run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			t.drain()
			return
		case msg := <-t.queue:
			t.send(context.Background(), msg)
		}
	}
}

// drain sends whatever is still queued at Close.
func (t *telegramSink) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), sinkDrainTimeout)
	defer cancel()
	for ctx.Err() == nil {
		select {
		case msg := <-t.queue:
			t.send(ctx, msg)
		default:
			return
		}
	}
}

func (t *telegramSink) send(parent context.Context, msg string) {
	ctx, cancel := context.WithTimeout(parent, sinkSendTimeout)
	defer cancel()
	if _, err := t.sender.SendText(ctx, t.target, msg, &kit.SendOptions{ParseMode: kit.ParseModeHTML, DisablePreview: true}); err != nil {
		// Logging here would feed the sink again.
		fmt.Fprintln(os.Stderr, "logx: telegram log line not sent:", err)
	}
}

func (t *telegramSink) close() {
	t.cancel()
	<-t.done
}

// formatTelegramJSON renders one zerolog JSON line as Telegram HTML: the
// level and message, then one "- key=value" line per field in key order.
func formatTelegramJSON(p []byte) string {
	raw := strings.TrimSpace(string(p))
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return tgui.Esc(tgui.TruncRunes(raw, 3500)).String()
	}

	lvl, _ := m["level"].(string)
	msg, _ := m["message"].(string)
	head := tgui.Esc(tgui.TruncRunes(msg, 1000))
	if lvl != "" {
		head = tgui.JoinH(" ", tgui.B("["+strings.ToUpper(lvl)+"]"), head)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]tgui.H, 0, len(keys)+1)
	lines = append(lines, head)
	for _, k := range keys {
		v := tgui.Esc(tgui.TruncRunes(fmt.Sprint(m[k]), 600))
		lines = append(lines, tgui.H("- "+tgui.I(k).String()+"="+v.String()))
	}
	return tgui.JoinH("\n", lines...).String()
}

// parseLevel accepts zerolog level names plus "warning"; anything else,
// including the empty string, yields def.
func parseLevel(s string, def zerolog.Level) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	if s == "" {
		return def
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return def
	}
	return lvl
}
