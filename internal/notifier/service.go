package notifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"feedwatch/internal/feed"
	kit "feedwatch/internal/transport"
	logx "feedwatch/pkg/logx"
	"feedwatch/pkg/tgui"
)

var ErrNoTarget = errors.New("notifier: chat target is empty")

// Service formats entries and sends them to one chat.
// It is safe for concurrent use.
type Service struct {
	log    logx.Logger
	sender kit.Sender
	cfg    Config

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.MaxTitleRunes <= 0 {
		cfg.MaxTitleRunes = 512
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	return &Service{log: log, sender: sender, cfg: cfg}
}

// Format renders an entry: the title wrapped in a link to the canonical URL,
// or the bare title when the entry has no usable link.
func (s *Service) Format(e feed.Entry) string {
	title := tgui.TruncRunes(strings.TrimSpace(e.Title), s.cfg.MaxTitleRunes)
	if link := feed.Canonicalize(e.Link); link != "" {
		return tgui.Link(title, link).String()
	}
	return tgui.Esc(title).String()
}

// Deliver sends text once. A non-nil error means the message was not delivered.
func (s *Service) Deliver(ctx context.Context, text string) error {
	if s.cfg.Target.IsZero() {
		return ErrNoTarget
	}
	if s.sender == nil {
		return errors.New("notifier: no sender configured")
	}

	start := time.Now()
	ref, err := s.sender.SendText(ctx, s.cfg.Target, text, &kit.SendOptions{
		ParseMode:      kit.ParseModeHTML,
		DisablePreview: s.cfg.DisablePreview,
	})
	s.appendHistory(text, err)
	if err != nil {
		s.log.Warn("delivery failed",
			logx.String("chat", s.cfg.Target.ChatID),
			logx.Duration("took", time.Since(start)),
			logx.Err(err),
		)
		return err
	}
	s.log.Debug("delivered",
		logx.String("chat", s.cfg.Target.ChatID),
		logx.Int("message_id", ref.MessageID),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}

// Snapshot returns the recent delivery attempts, oldest first.
func (s *Service) Snapshot() []HistoryItem {
	s.hmu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return out
}

func (s *Service) appendHistory(text string, err error) {
	it := HistoryItem{At: time.Now(), Text: text}
	if err != nil {
		it.Error = err.Error()
	}
	s.hmu.Lock()
	s.history = append(s.history, it)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}
