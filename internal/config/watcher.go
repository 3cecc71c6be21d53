package config

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "feedwatch/pkg/logx"
)

// ListWatcher keeps the feed and keyword lists current while the daemon runs.
// Get always returns a complete snapshot; a reload that fails to parse keeps
// the previous lists.
type ListWatcher struct {
	feedsPath    string
	keywordsPath string
	log          logx.Logger

	// Debounce is the quiet period after the last file event before reloading.
	Debounce time.Duration

	mu       sync.RWMutex
	cur      *Lists
	lastHash uint64
	reloads  int
}

func NewListWatcher(feedsPath, keywordsPath string, initial *Lists, log logx.Logger) *ListWatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if initial == nil {
		initial = &Lists{}
	}
	return &ListWatcher{
		feedsPath:    feedsPath,
		keywordsPath: keywordsPath,
		log:          log.With(logx.String("comp", "config.lists")),
		Debounce:     250 * time.Millisecond,
		cur:          initial,
		lastHash:     initial.hash(),
	}
}

func (w *ListWatcher) Get() *Lists {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Reloads returns how many changed snapshots have been committed.
func (w *ListWatcher) Reloads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// Reload reads both files and commits them if their content changed.
func (w *ListWatcher) Reload() error {
	next, err := LoadLists(w.feedsPath, w.keywordsPath)
	if err != nil {
		return err
	}
	h := next.hash()

	w.mu.Lock()
	if h == w.lastHash {
		w.mu.Unlock()
		w.log.Debug("lists unchanged; skipping")
		return nil
	}
	prev := w.cur
	w.cur = next
	w.lastHash = h
	w.reloads++
	w.mu.Unlock()

	changed, attrs := SummarizeListChange(prev, next)
	attrs = append(attrs, logx.Any("changed", changed))
	w.log.Info("lists reloaded", attrs...)
	return nil
}

func (w *ListWatcher) watched() (dirs []string, names map[string]struct{}) {
	names = map[string]struct{}{}
	seen := map[string]struct{}{}
	for _, p := range []string{w.feedsPath, w.keywordsPath} {
		d := filepath.Dir(p)
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			dirs = append(dirs, d)
		}
		names[strings.ToLower(filepath.Base(p))] = struct{}{}
	}
	return dirs, names
}

// Watch blocks until ctx is done. Directories are watched rather than files so
// editors that replace files atomically are followed. If fsnotify breaks, the
// watcher is recreated with a jittered exponential backoff.
func (w *ListWatcher) Watch(ctx context.Context) error {
	dirs, names := w.watched()

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nextWait := func() time.Duration {
		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		backoff = min(backoff*2, restartBackoffMax)
		return wait
	}
	sleep := func(d time.Duration) bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(d):
			return true
		}
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.Debounce, func() {
			if ctx.Err() != nil {
				return
			}
			if err := w.Reload(); err != nil {
				w.log.Warn("lists reload failed; keeping previous", logx.Err(err))
			}
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.log.Warn("lists watch init failed", logx.Err(err))
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}

		var addErr error
		for _, d := range dirs {
			if addErr = fw.Add(d); addErr != nil {
				break
			}
		}
		if addErr != nil {
			_ = fw.Close()
			w.log.Warn("lists watch add failed", logx.Err(addErr), logx.Any("dirs", dirs))
			if !sleep(nextWait()) {
				return nil
			}
			continue
		}

		backoff = restartBackoffBase
		w.log.Debug("lists watcher started", logx.Any("dirs", dirs))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				if _, ok := names[strings.ToLower(filepath.Base(ev.Name))]; !ok {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					debounce()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				if err == nil {
					continue
				}
				// Overflow means events were missed; reload once and keep going.
				if strings.Contains(strings.ToLower(err.Error()), "overflow") {
					w.log.Warn("lists watch overflow; forcing reload", logx.Err(err))
					debounce()
					continue
				}
				w.log.Warn("lists watch error", logx.Err(err))
				if strings.Contains(strings.ToLower(err.Error()), "closed") {
					broken = true
				}
			}
		}

		_ = fw.Close()
		wait := nextWait()
		w.log.Warn("lists watcher stopped; restarting", logx.Duration("backoff", wait))
		if !sleep(wait) {
			return nil
		}
	}
}
