package feed

import (
	"testing"
	"time"
)

func ts(s string) *time.Time {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &v
}

func TestIsRecent(t *testing.T) {
	t.Parallel()
	now := *ts("2024-01-01T12:00:00Z")
	window := 12 * time.Hour
	tests := []struct {
		name string
		ts   *time.Time
		want bool
	}{
		{name: "inside window", ts: ts("2024-01-01T01:00:00Z"), want: true},
		{name: "outside window", ts: ts("2023-12-31T23:00:00Z"), want: false},
		{name: "exact boundary", ts: ts("2024-01-01T00:00:00Z"), want: false},
		{name: "absent", ts: nil, want: false},
		{name: "zero", ts: &time.Time{}, want: false},
		{name: "future dated", ts: ts("2024-01-02T12:00:00Z"), want: true},
		{name: "other zone", ts: ts("2024-01-01T10:00:00+08:00"), want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRecent(tt.ts, now, window); got != tt.want {
				t.Fatalf("IsRecent(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestEntryTimestampFallback(t *testing.T) {
	t.Parallel()
	pub := ts("2024-01-01T10:00:00Z")
	upd := ts("2024-01-01T11:00:00Z")

	if got := (Entry{Published: pub, Updated: upd}).Timestamp(); got != pub {
		t.Fatalf("expected published timestamp, got %v", got)
	}
	if got := (Entry{Updated: upd}).Timestamp(); got != upd {
		t.Fatalf("expected updated fallback, got %v", got)
	}
	if got := (Entry{Published: &time.Time{}, Updated: upd}).Timestamp(); got != upd {
		t.Fatalf("zero published should fall back, got %v", got)
	}
	if got := (Entry{}).Timestamp(); got != nil {
		t.Fatalf("expected nil timestamp, got %v", got)
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]string{"market"})
	if !m.Match("Breaking: Market Rally") {
		t.Fatal("expected match")
	}
	if m.Match("Weather update") {
		t.Fatal("unexpected match")
	}

	empty := NewMatcher(nil)
	if empty.Match("Breaking: Market Rally") || empty.Match("") {
		t.Fatal("empty keyword list must never match")
	}

	blank := NewMatcher([]string{"", "   "})
	if blank.Len() != 0 || blank.Match("anything") {
		t.Fatal("blank keywords must be dropped")
	}

	mixed := NewMatcher([]string{"  ECB ", "rate cut"})
	if !mixed.Match("ecb signals Rate Cut") || mixed.Len() != 2 {
		t.Fatal("keywords should be trimmed and lower-cased")
	}

	var nilMatcher *Matcher
	if nilMatcher.Match("x") {
		t.Fatal("nil matcher must not match")
	}
}
