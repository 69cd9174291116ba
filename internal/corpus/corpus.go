// Package corpus reads tag frequencies from a training corpus and exposes the
// per-word tag posterior used to annotate comparison reports.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Mode selects which column of a corpus line carries the tag.
type Mode int

const (
	// ModeAuto uses the last column of four-column lines and the second column otherwise.
	ModeAuto Mode = iota
	// ModePOS always uses the second column.
	ModePOS
	// ModeNER always uses the fourth column and skips shorter lines.
	ModeNER
)

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "pos":
		return ModePOS, nil
	case "ner":
		return ModeNER, nil
	default:
		return ModeAuto, fmt.Errorf("unknown corpus mode %q (want auto, pos or ner)", s)
	}
}

// TagCounts maps word to tag to occurrence count.
type TagCounts map[string]map[string]int

// LoadTagCounts reads space-separated "word tag" or "word pos chunk ner" lines.
// Lines with fewer than two fields, such as sentence separators, are skipped.
func LoadTagCounts(r io.Reader, mode Mode) (TagCounts, error) {
	counts := TagCounts{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), " ")
		if len(fields) < 2 {
			continue
		}
		var tag string
		switch {
		case mode == ModePOS:
			tag = fields[1]
		case len(fields) >= 4:
			tag = fields[3]
		case mode == ModeNER:
			continue
		default:
			tag = fields[1]
		}
		word := fields[0]
		if counts[word] == nil {
			counts[word] = map[string]int{}
		}
		counts[word][tag]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return counts, nil
}

// Posterior is the normalised per-word tag distribution.
type Posterior map[string]map[string]float64

// NewPosterior normalises counts per word, rounding to four decimals.
func NewPosterior(counts TagCounts) Posterior {
	p := make(Posterior, len(counts))
	for word, tags := range counts {
		total := 0
		for _, c := range tags {
			total += c
		}
		dist := make(map[string]float64, len(tags))
		for tag, c := range tags {
			dist[tag] = math.Round(float64(c)/float64(total)*1e4) / 1e4
		}
		p[word] = dist
	}
	return p
}

// Lookup returns the tag distribution of word, if the corpus saw it.
func (p Posterior) Lookup(word string) (map[string]float64, bool) {
	tags, ok := p[word]
	return tags, ok
}

// LoadPosterior reads the corpus at path and returns its tag posterior.
func LoadPosterior(path string, mode Mode) (Posterior, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()
	counts, err := LoadTagCounts(f, mode)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return NewPosterior(counts), nil
}
