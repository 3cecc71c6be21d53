package notifier

import (
	"time"

	kit "feedwatch/internal/transport"
)

// Config controls message formatting and the delivery target.
type Config struct {
	Target         kit.ChatTarget
	DisablePreview bool
	// MaxTitleRunes caps the rendered title (default 512).
	MaxTitleRunes int
	// HistorySize bounds the in-memory history (default 100).
	HistorySize int
}

type HistoryItem struct {
	At    time.Time
	Text  string
	Error string `json:",omitempty"`
}
