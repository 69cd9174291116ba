package schema

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/strin/HeteroSampler/internal/record"
)

var (
	// ErrMalformedNumber reports a leaf that should hold a number but does not.
	ErrMalformedNumber = errors.New("malformed number")
	// ErrMalformedEntry reports an entry line that is not <entry name=".." value=".."/>.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrMalformedMask reports a mask value other than 0 or 1.
	ErrMalformedMask = errors.New("malformed mask")
)

// extractor is the scilog.Handler that fills one RunRecord.
type extractor struct {
	run      *record.RunRecord
	mode     FeatureMode
	cur      *pendingExample
	warnings []string
}

// pendingExample is the example under construction between its first field
// and its dist leaf.
type pendingExample struct {
	record.ExampleRecord
	hasTruth bool
	blocks   []map[string]float64
}

func newExtractor(name string, mode FeatureMode) *extractor {
	return &extractor{run: &record.RunRecord{Name: name}, mode: mode}
}

func (x *extractor) Open(path []string, line int) error {
	r := Lookup(path)
	if r == nil || r.OnOpen == nil {
		return nil
	}
	return r.OnOpen(x, path)
}

func (x *extractor) Leaf(path []string, raw string, line int) error {
	r := Lookup(path)
	if r == nil || r.OnLeaf == nil {
		return nil
	}
	return r.OnLeaf(x, path, raw)
}

func (x *extractor) warnf(format string, args ...any) {
	x.warnings = append(x.warnings, fmt.Sprintf(format, args...))
}

// text decodes the character references the log writer emits for anything
// outside its plain-ASCII set.
func (x *extractor) text(raw string) string {
	return html.UnescapeString(raw)
}

func (x *extractor) pending() *pendingExample {
	if x.cur == nil {
		x.cur = &pendingExample{}
	}
	return x.cur
}

func (x *extractor) startExample(key, truth string) error {
	p := x.pending()
	if p.hasTruth {
		x.warnf("example %s dropped: truth without dist", p.Key)
		p = &pendingExample{}
		x.cur = p
	}
	p.Key = key
	p.Truth = truth
	p.hasTruth = true
	return nil
}

func (x *extractor) startFeatureBlock() {
	p := x.pending()
	p.blocks = append(p.blocks, map[string]float64{})
}

// commit seals the pending example with its distance and appends it to the run.
func (x *extractor) commit(dist float64) error {
	p := x.cur
	x.cur = nil
	if p == nil || !p.hasTruth {
		x.warnf("dist %v without truth ignored", dist)
		return nil
	}
	ex := p.ExampleRecord
	ex.Distance = dist
	x.resolveFeatures(&ex, p.blocks)
	if err := ex.Validate(); err != nil {
		return fmt.Errorf("example %s: %w", ex.Key, err)
	}
	x.run.Examples = append(x.run.Examples, ex)
	return nil
}

func (x *extractor) resolveFeatures(ex *record.ExampleRecord, blocks []map[string]float64) {
	if len(blocks) == 0 {
		return
	}
	switch x.mode {
	case FeatureToken:
		ex.TokenFeatures = blocks
	case FeatureExample:
		merged := map[string]float64{}
		for _, b := range blocks {
			for k, v := range b {
				merged[k] = v
			}
		}
		ex.Features = merged
	default:
		if len(blocks) == 1 {
			ex.Features = blocks[0]
		} else {
			ex.TokenFeatures = blocks
		}
	}
}

// finish reports an example left open at the end of the stream.
func (x *extractor) finish() {
	if x.cur != nil && x.cur.hasTruth {
		x.warnf("example %s dropped: no dist before end of log", x.cur.Key)
	}
	x.cur = nil
}

func parseNumber(path []string, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w at %s: %q", ErrMalformedNumber, strings.Join(path, "/"), s)
	}
	return v, nil
}

// parseEntry reads <entry name="NAME" value="VALUE"/>. Quotes inside the name
// are written as &quot; so the first `" value="` is the separator.
func parseEntry(path []string, raw string) (string, float64, error) {
	line := strings.TrimSpace(raw)
	rest, ok := strings.CutPrefix(line, `<entry name="`)
	if !ok {
		return "", 0, fmt.Errorf("%w at %s: %q", ErrMalformedEntry, strings.Join(path, "/"), line)
	}
	name, rest, ok := strings.Cut(rest, `" value="`)
	if !ok {
		return "", 0, fmt.Errorf("%w at %s: %q", ErrMalformedEntry, strings.Join(path, "/"), line)
	}
	value, ok := strings.CutSuffix(rest, `"/>`)
	if !ok {
		return "", 0, fmt.Errorf("%w at %s: %q", ErrMalformedEntry, strings.Join(path, "/"), line)
	}
	v, err := parseNumber(path, html.UnescapeString(value))
	if err != nil {
		return "", 0, err
	}
	return html.UnescapeString(name), v, nil
}

func parseList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, "\t") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func setEmissionInterval(x *extractor, path []string, raw string) error {
	v, err := parseNumber(path, x.text(raw))
	if err != nil {
		return err
	}
	x.run.EmissionInterval = &v
	return nil
}

func setAccuracy(x *extractor, path []string, raw string) error {
	v, err := parseNumber(path, x.text(raw))
	if err != nil {
		return err
	}
	x.run.Accuracy = &v
	return nil
}

func addParameter(x *extractor, path []string, raw string) error {
	name, v, err := parseEntry(path, raw)
	if err != nil {
		return err
	}
	if x.run.Parameters == nil {
		x.run.Parameters = map[string]float64{}
	}
	x.run.Parameters[name] = v
	return nil
}

func setCorpus(x *extractor, path []string, raw string) error {
	x.run.CorpusReference = strings.TrimSpace(x.text(raw))
	return nil
}

func setArg(x *extractor, path []string, raw string) error {
	if x.run.Args == nil {
		x.run.Args = map[string]string{}
	}
	x.run.Args[path[2]] = strings.TrimSpace(x.text(raw))
	return nil
}

// addScore keeps the overall line of a score block: "test accuracy = 91.2 %".
func addScore(x *extractor, path []string, raw string) error {
	text := x.text(raw)
	if !strings.HasPrefix(text, "test accuracy") {
		return nil
	}
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return fmt.Errorf("%w at %s: %q", ErrMalformedNumber, strings.Join(path, "/"), text)
	}
	v, err := parseNumber(path, fields[3])
	if err != nil {
		return err
	}
	x.run.ScoreTrace = append(x.run.ScoreTrace, v)
	return nil
}

// setResponse stores a tab-separated response as one value per token and a
// bare number as the example's scalar response.
func setResponse(x *extractor, path []string, raw string) error {
	text := x.text(raw)
	p := x.pending()
	if !strings.Contains(text, "\t") {
		v, err := parseNumber(path, text)
		if err != nil {
			return err
		}
		p.Response = &v
		return nil
	}
	fields := parseList(text)
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseNumber(path, f)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	p.TokenResponses = values
	return nil
}

func setMask(x *extractor, path []string, raw string) error {
	fields := parseList(x.text(raw))
	mask := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || (v != 0 && v != 1) {
			return fmt.Errorf("%w at %s: %q", ErrMalformedMask, strings.Join(path, "/"), f)
		}
		mask = append(mask, int(v))
	}
	x.pending().Mask = mask
	return nil
}

func addFeature(x *extractor, path []string, raw string) error {
	name, v, err := parseEntry(path, raw)
	if err != nil {
		return err
	}
	p := x.pending()
	if len(p.blocks) == 0 {
		p.blocks = append(p.blocks, map[string]float64{})
	}
	p.blocks[len(p.blocks)-1][name] = v
	return nil
}
