package app

import (
	"context"
	"sync/atomic"

	kit "feedwatch/internal/transport"
	logx "feedwatch/pkg/logx"
)

// dryRunSender logs messages instead of sending them.
type dryRunSender struct {
	log logx.Logger
}

var dryRunSeq atomic.Int64

func (s dryRunSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return kit.MessageRef{}, err
	}
	s.log.Info("would send", logx.String("chat", to.ChatID), logx.Int("thread", to.ThreadID), logx.String("text", text))
	return kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: int(dryRunSeq.Add(1))}, nil
}
