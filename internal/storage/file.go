package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "feedwatch/pkg/logx"
)

// fileStore is the append-only seen-set log.
//
// File format: one identifier per line, UTF-8. Lines are only ever appended;
// blank lines are ignored on load. A missing file is an empty set.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	path string
	f    *os.File
	seen map[string]struct{}
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	seen := map[string]struct{}{}
	lines, err := loadLog(path, seen)
	if err != nil {
		return nil, fmt.Errorf("load seen-set %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	// A torn or hand-written last line must not fuse with the next append.
	if err := terminateLastLine(path, f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("repair seen-set %s: %w", path, err)
	}
	log.Debug("seen-set loaded", logx.String("path", path), logx.Int("ids", len(seen)), logx.Int("lines", lines))

	return &fileStore{log: log, path: path, f: f, seen: seen}, nil
}

func (s *fileStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

func (s *fileStore) Record(ctx context.Context, id string) error {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	if _, ok := s.seen[id]; ok {
		return nil
	}
	if _, err := s.f.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	// The id only counts as seen once it is on disk.
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	s.seen[id] = struct{}{}
	return nil
}

func (s *fileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// maxLineBytes bounds a single log line; identifiers are 64 hex chars.
const maxLineBytes = 1 << 20

// terminateLastLine appends '\n' to w when the file at path is non-empty and
// does not already end with one.
func terminateLastLine(path string, w *os.File) error {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	fi, err := r.Stat()
	if err != nil || fi.Size() == 0 {
		return err
	}
	last := make([]byte, 1)
	if _, err := r.ReadAt(last, fi.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}
	return w.Sync()
}

// loadLog reads the log into out and returns the number of non-empty lines.
func loadLog(path string, out map[string]struct{}) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" {
			continue
		}
		n++
		out[id] = struct{}{}
	}
	return n, sc.Err()
}
