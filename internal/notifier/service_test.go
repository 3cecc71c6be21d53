package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"feedwatch/internal/feed"
	kit "feedwatch/internal/transport"
	logx "feedwatch/pkg/logx"
)

type recordingSender struct {
	to   []kit.ChatTarget
	text []string
	opts []kit.SendOptions
	err  error
}

func (r *recordingSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	r.to = append(r.to, to)
	r.text = append(r.text, text)
	if opt != nil {
		r.opts = append(r.opts, *opt)
	}
	if r.err != nil {
		return kit.MessageRef{}, r.err
	}
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(r.text)}, nil
}

func TestFormat(t *testing.T) {
	t.Parallel()
	s := New(Config{}, nil, logx.Nop())

	got := s.Format(feed.Entry{Title: "Market Rally Continues", Link: "https://www.Example.com/news/1/"})
	want := `<a href="https://example.com/news/1">Market Rally Continues</a>`
	if got != want {
		t.Fatalf("Format with link = %q, want %q", got, want)
	}

	if got := s.Format(feed.Entry{Title: "Fed & ECB <update>"}); got != "Fed &amp; ECB &lt;update&gt;" {
		t.Fatalf("Format without link = %q", got)
	}
}

func TestFormatTruncatesTitle(t *testing.T) {
	t.Parallel()
	s := New(Config{MaxTitleRunes: 5}, nil, logx.Nop())
	if got := s.Format(feed.Entry{Title: "abcdefgh"}); got != "abcde…" {
		t.Fatalf("Format = %q", got)
	}
}

func TestDeliver(t *testing.T) {
	t.Parallel()
	rs := &recordingSender{}
	s := New(Config{Target: kit.ChatTarget{ChatID: "-1001", ThreadID: 3}}, rs, logx.Nop())

	if err := s.Deliver(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(rs.text) != 1 || rs.to[0].ChatID != "-1001" || rs.to[0].ThreadID != 3 {
		t.Fatalf("unexpected sends: %+v", rs.to)
	}
	if rs.opts[0].ParseMode != kit.ParseModeHTML || rs.opts[0].DisablePreview {
		t.Fatalf("unexpected options: %+v", rs.opts[0])
	}
	if h := s.Snapshot(); len(h) != 1 || h[0].Error != "" {
		t.Fatalf("unexpected history: %+v", h)
	}
}

func TestDeliverFailureIsReturnedNotRetried(t *testing.T) {
	t.Parallel()
	rs := &recordingSender{err: errors.New("Bad Request: chat not found")}
	s := New(Config{Target: kit.ChatTarget{ChatID: "42"}}, rs, logx.Nop())

	err := s.Deliver(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("Deliver error = %v", err)
	}
	if len(rs.text) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(rs.text))
	}
	if h := s.Snapshot(); len(h) != 1 || h[0].Error == "" {
		t.Fatalf("failure not in history: %+v", h)
	}
}

func TestDeliverWithoutTarget(t *testing.T) {
	t.Parallel()
	s := New(Config{}, &recordingSender{}, logx.Nop())
	if err := s.Deliver(context.Background(), "x"); !errors.Is(err, ErrNoTarget) {
		t.Fatalf("Deliver = %v, want ErrNoTarget", err)
	}
}

func TestHistoryBounded(t *testing.T) {
	t.Parallel()
	s := New(Config{Target: kit.ChatTarget{ChatID: "1"}, HistorySize: 2}, &recordingSender{}, logx.Nop())
	for _, m := range []string{"a", "b", "c"} {
		_ = s.Deliver(context.Background(), m)
	}
	h := s.Snapshot()
	if len(h) != 2 || h[0].Text != "b" || h[1].Text != "c" {
		t.Fatalf("unexpected history: %+v", h)
	}
}
