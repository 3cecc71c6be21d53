package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeedsFile != DefaultFeedsFile || cfg.KeywordsFile != DefaultKeywordsFile {
		t.Fatalf("unexpected list paths: %q %q", cfg.FeedsFile, cfg.KeywordsFile)
	}
	d, err := cfg.ParseDurations()
	if err != nil {
		t.Fatal(err)
	}
	if d.Window != 12*time.Hour || d.FetchTimeout != 20*time.Second || d.MetricsWrite != 0 {
		t.Fatalf("unexpected durations: %+v", d)
	}
	if !cfg.Logging.Console || cfg.Storage.Driver != "file" || cfg.Telegram.DisablePreview {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseJSONKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := Parse("c.json", []byte(`{"window":"1h","telegram":{"thread_id":7},"storage":{"path":"/var/lib/feedwatch/seen.txt"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Window != "1h" || cfg.Telegram.ThreadID != 7 {
		t.Fatalf("explicit values lost: %+v", cfg)
	}
	if cfg.Telegram.Timeout != "15s" || cfg.Storage.Driver != "file" || cfg.Storage.Path != "/var/lib/feedwatch/seen.txt" {
		t.Fatalf("defaults not preserved: %+v %+v", cfg.Telegram, cfg.Storage)
	}
}

func TestParseYAML(t *testing.T) {
	src := `
feeds_file: /etc/feedwatch/feeds.txt
schedule: "*/15 * * * *"
fetch:
  user_agent: test-agent
metrics:
  enabled: true
  pprof: true
`
	cfg, err := Parse("config.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.FeedsFile != "/etc/feedwatch/feeds.txt" || cfg.Schedule != "*/15 * * * *" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Fetch.UserAgent != "test-agent" || cfg.Fetch.Timeout != "20s" || !cfg.Metrics.Enabled || !cfg.Metrics.Pprof {
		t.Fatalf("unexpected nested config: %+v %+v", cfg.Fetch, cfg.Metrics)
	}
	if cfg.KeywordsFile != DefaultKeywordsFile {
		t.Fatalf("keywords_file default lost: %q", cfg.KeywordsFile)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name, path, data string
	}{
		{"unknown field", "c.json", `{"feeds":"x"}`},
		{"unknown nested yaml", "c.yml", "telegram:\n  token: abc\n"},
		{"trailing data", "c.json", `{} {}`},
		{"bad yaml", "c.yaml", "window: [1h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.path, []byte(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	p := writeFile(t, t.TempDir(), "c.json", `{"window":"soon"}`)
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "window") {
		t.Fatalf("Load error = %v", err)
	}
	p = writeFile(t, t.TempDir(), "c.json", `{"fetch":{"timeout":"-1s"}}`)
	if _, err := Load(p); err == nil {
		t.Fatal("negative duration accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadSecrets(t *testing.T) {
	env := func(m map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		}
	}

	s, err := LoadSecrets(env(map[string]string{"BOT_TOKEN": " 123:abc ", "CHAT_ID": "-1001"}))
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.BotToken != "123:abc" || s.ChatID != "-1001" {
		t.Fatalf("unexpected secrets: %+v", s)
	}

	_, err = LoadSecrets(env(map[string]string{"BOT_TOKEN": "x", "CHAT_ID": "  "}))
	if !errors.Is(err, ErrMissingSecret) || !strings.Contains(err.Error(), "CHAT_ID") {
		t.Fatalf("blank CHAT_ID: err = %v", err)
	}
	_, err = LoadSecrets(env(nil))
	if !errors.Is(err, ErrMissingSecret) || !strings.Contains(err.Error(), "BOT_TOKEN, CHAT_ID") {
		t.Fatalf("none set: err = %v", err)
	}
}

func TestLoadLines(t *testing.T) {
	p := writeFile(t, t.TempDir(), "feeds.txt", "  https://a.example/rss  \n\n\t\nhttps://b.example/atom\r\n")
	got, err := LoadLines(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://a.example/rss", "https://b.example/atom"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadLines = %q, want %q", got, want)
	}

	if _, err := LoadLines(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadListsLowercasesKeywords(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "feeds.txt", "https://a.example/rss\n")
	k := writeFile(t, dir, "keywords.txt", "Market\n  FED \n")
	l, err := LoadLists(f, k)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l.Keywords, []string{"market", "fed"}) || len(l.Feeds) != 1 {
		t.Fatalf("unexpected lists: %+v", l)
	}

	if _, err := LoadLists(f, filepath.Join(dir, "missing.txt")); err == nil || !strings.Contains(err.Error(), "keywords") {
		t.Fatalf("missing keywords file: err = %v", err)
	}
}

func TestSummarizeListChange(t *testing.T) {
	oldL := &Lists{Feeds: []string{"a", "b"}, Keywords: []string{"x"}}
	newL := &Lists{Feeds: []string{"b", "c", "c"}, Keywords: []string{"x"}}
	changed, attrs := SummarizeListChange(oldL, newL)
	if !reflect.DeepEqual(changed, []string{"feeds"}) || len(attrs) != 3 {
		t.Fatalf("changed=%v attrs=%d", changed, len(attrs))
	}

	added, removed := diffLines(oldL.Feeds, newL.Feeds)
	if !reflect.DeepEqual(added, []string{"c"}) || !reflect.DeepEqual(removed, []string{"a"}) {
		t.Fatalf("added=%v removed=%v", added, removed)
	}
	if changed, _ := SummarizeListChange(oldL, oldL); len(changed) != 0 {
		t.Fatalf("identical lists reported as changed: %v", changed)
	}
}

func TestLoadLinesLongLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	long := "https://feeds.example.com/rss?q=" + strings.Repeat("a", 100<<10)

	ok := filepath.Join(dir, "long.txt")
	if err := os.WriteFile(ok, []byte("short\n"+long+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	lines, err := LoadLines(ok)
	if err != nil {
		t.Fatalf("LoadLines: %v", err)
	}
	if len(lines) != 2 || lines[1] != long {
		t.Fatalf("long line not read intact: %d lines", len(lines))
	}

	huge := filepath.Join(dir, "huge.txt")
	if err := os.WriteFile(huge, []byte(strings.Repeat("b", maxListLine+1)), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLines(huge); err == nil {
		t.Fatal("expected error for a line over the limit")
	}
}
