package storage

import (
	"errors"
	"strings"

	logx "feedwatch/pkg/logx"
)

const DefaultPath = "./seen.txt"

// Open initializes the configured store, loading any persisted state.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "memory", "none":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
