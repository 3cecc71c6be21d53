package config

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
)

// Lists holds the feed URLs and keywords for one run. Treat as immutable.
type Lists struct {
	Feeds    []string
	Keywords []string
}

// maxListLine bounds one line of a list file; longer lines are an error.
const maxListLine = 1 << 20

// LoadLines returns the trimmed, non-empty lines of a text file in order.
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), maxListLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// LoadLists reads both list files. Keywords are lower-cased once here.
func LoadLists(feedsPath, keywordsPath string) (*Lists, error) {
	feeds, err := LoadLines(feedsPath)
	if err != nil {
		return nil, fmt.Errorf("feeds list: %w", err)
	}
	keywords, err := LoadLines(keywordsPath)
	if err != nil {
		return nil, fmt.Errorf("keywords list: %w", err)
	}
	for i, k := range keywords {
		keywords[i] = strings.ToLower(k)
	}
	return &Lists{Feeds: feeds, Keywords: keywords}, nil
}

func (l *Lists) hash() uint64 {
	if l == nil {
		return 0
	}
	h := fnv.New64a()
	for _, s := range l.Feeds {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{'\n'})
	}
	_, _ = h.Write([]byte{0})
	for _, s := range l.Keywords {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
