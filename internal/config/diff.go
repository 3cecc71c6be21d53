package config

import (
	"sort"

	logx "feedwatch/pkg/logx"
)

// SummarizeListChange returns the changed list names and log fields
// describing what was added and removed.
func SummarizeListChange(oldL, newL *Lists) ([]string, []logx.Field) {
	if oldL == nil {
		oldL = &Lists{}
	}
	if newL == nil {
		newL = &Lists{}
	}

	changed := make([]string, 0, 2)
	attrs := make([]logx.Field, 0, 6)

	if added, removed := diffLines(oldL.Feeds, newL.Feeds); len(added)+len(removed) > 0 {
		changed = append(changed, "feeds")
		attrs = append(attrs,
			logx.Int("feeds.count", len(newL.Feeds)),
			logx.Any("feeds.added", added),
			logx.Any("feeds.removed", removed),
		)
	}
	if added, removed := diffLines(oldL.Keywords, newL.Keywords); len(added)+len(removed) > 0 {
		changed = append(changed, "keywords")
		attrs = append(attrs,
			logx.Int("keywords.count", len(newL.Keywords)),
			logx.Any("keywords.added", added),
			logx.Any("keywords.removed", removed),
		)
	}
	return changed, attrs
}

// diffLines compares two lists as sets. Results are sorted.
func diffLines(oldS, newS []string) (added, removed []string) {
	oldSet := make(map[string]struct{}, len(oldS))
	for _, s := range oldS {
		oldSet[s] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newS))
	for _, s := range newS {
		if _, dup := newSet[s]; dup {
			continue
		}
		newSet[s] = struct{}{}
		if _, ok := oldSet[s]; !ok {
			added = append(added, s)
		}
	}
	for s := range oldSet {
		if _, ok := newSet[s]; !ok {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
