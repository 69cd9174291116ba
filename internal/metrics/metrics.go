// Package metrics derives scalar measures from parsed runs.
package metrics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/strin/HeteroSampler/internal/record"
)

var (
	ErrNoAccuracy           = errors.New("run has no accuracy")
	ErrNoExamples           = errors.New("run has no examples")
	ErrMissingTime          = errors.New("example has no elapsed time")
	ErrFeatureSetMismatch   = errors.New("feature sets differ between examples")
	ErrWeightingRequired    = errors.New("time weighting must be set (raw or length)")
	ErrExampleCountMismatch = errors.New("runs have different example counts")
)

// TimeWeighting selects how per-example times are averaged. Run kinds log
// time differently, so callers must always choose one.
type TimeWeighting int

const (
	WeightUnset TimeWeighting = iota
	// WeightRaw is the plain mean of elapsed times.
	WeightRaw
	// WeightLength multiplies each time by the example's token count first.
	WeightLength
)

func (w TimeWeighting) String() string {
	switch w {
	case WeightRaw:
		return "raw"
	case WeightLength:
		return "length"
	default:
		return ""
	}
}

// ParseTimeWeighting maps a flag or config value to a TimeWeighting.
func ParseTimeWeighting(s string) (TimeWeighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw":
		return WeightRaw, nil
	case "length":
		return WeightLength, nil
	case "":
		return WeightUnset, ErrWeightingRequired
	default:
		return WeightUnset, fmt.Errorf("unknown time weighting %q (want raw or length)", s)
	}
}

// lengthWeight is the number of truth tokens. A trailing tab adds no token.
func lengthWeight(ex record.ExampleRecord) float64 {
	return float64(ex.TokenCount())
}

// MeanTime averages the elapsed time of every example under the given weighting.
func MeanTime(run *record.RunRecord, w TimeWeighting) (float64, error) {
	if w == WeightUnset {
		return 0, ErrWeightingRequired
	}
	if len(run.Examples) == 0 {
		return 0, ErrNoExamples
	}
	values := make([]float64, 0, len(run.Examples))
	for i, ex := range run.Examples {
		if ex.ElapsedTime == nil {
			return 0, fmt.Errorf("%w: example %d (%s)", ErrMissingTime, i, ex.Key)
		}
		v := *ex.ElapsedTime
		if w == WeightLength {
			v *= lengthWeight(ex)
		}
		values = append(values, v)
	}
	return mean(values), nil
}

// Accuracy returns the accuracy scalar exactly as logged.
func Accuracy(run *record.RunRecord) (float64, error) {
	if !run.HasAccuracy() {
		return 0, ErrNoAccuracy
	}
	return *run.Accuracy, nil
}

// exampleFeatures returns an example's feature vector, averaging per-token
// blocks over the tokens.
func exampleFeatures(ex record.ExampleRecord) (map[string]float64, error) {
	if ex.Features != nil {
		return ex.Features, nil
	}
	if len(ex.TokenFeatures) == 0 {
		return nil, nil
	}
	keys := sortedKeys(ex.TokenFeatures[0])
	out := make(map[string]float64, len(keys))
	for pos, block := range ex.TokenFeatures {
		if !sameKeys(keys, block) {
			return nil, fmt.Errorf("%w: token %d of example %s", ErrFeatureSetMismatch, pos, ex.Key)
		}
		for k, v := range block {
			out[k] += v
		}
	}
	for k := range out {
		out[k] /= float64(len(ex.TokenFeatures))
	}
	return out, nil
}

// MeanFeatureVector averages each feature across examples. Every example must
// carry the same feature names; a missing feature is an error, not a zero.
func MeanFeatureVector(run *record.RunRecord) (map[string]float64, error) {
	if len(run.Examples) == 0 {
		return nil, ErrNoExamples
	}
	var keys []string
	sums := map[string]float64{}
	for i, ex := range run.Examples {
		feats, err := exampleFeatures(ex)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			keys = sortedKeys(feats)
		}
		if !sameKeys(keys, feats) {
			return nil, fmt.Errorf("%w: example %d (%s) has [%s], want [%s]",
				ErrFeatureSetMismatch, i, ex.Key, strings.Join(sortedKeys(feats), " "), strings.Join(keys, " "))
		}
		for k, v := range feats {
			sums[k] += v
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	for k := range sums {
		sums[k] /= float64(len(run.Examples))
	}
	return sums, nil
}

// OracleAccuracy is the token accuracy of picking, per example, whichever of
// the two runs has the smaller distance.
func OracleAccuracy(a, b *record.RunRecord) (float64, error) {
	if len(a.Examples) != len(b.Examples) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrExampleCountMismatch, len(a.Examples), len(b.Examples))
	}
	var hit, total float64
	for i, ex := range a.Examples {
		n := lengthWeight(ex)
		total += n
		dist := ex.Distance
		if other := b.Examples[i].Distance; other < dist {
			dist = other
		}
		hit += n - dist
	}
	if total == 0 {
		return 0, ErrNoExamples
	}
	return hit / total, nil
}

// Sweep places each run on the time/accuracy plane, ordered by mean time.
func Sweep(runs []*record.RunRecord, w TimeWeighting) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(runs))
	for _, run := range runs {
		mt, err := MeanTime(run, w)
		if err != nil {
			return nil, fmt.Errorf("sweep %s: %w", run.Name, err)
		}
		p := SweepPoint{Name: run.Name, MeanTime: mt}
		if acc, err := Accuracy(run); err == nil {
			p.Accuracy = acc
		} else {
			p.Accuracy = Summarize(run, WeightUnset).TokenAccuracy
			p.Recomputed = true
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].MeanTime < points[j].MeanTime })
	for i := range points {
		points[i].Frontier = isFrontier(points, i)
	}
	return points, nil
}

func isFrontier(points []SweepPoint, idx int) bool {
	for i := range points {
		if i != idx && dominates(points[i], points[idx]) {
			return false
		}
	}
	return true
}

// dominates reports whether a is at least as fast and as accurate as b, and strictly better on one.
func dominates(a, b SweepPoint) bool {
	if a.MeanTime > b.MeanTime || a.Accuracy < b.Accuracy {
		return false
	}
	return a.MeanTime < b.MeanTime || a.Accuracy > b.Accuracy
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameKeys(keys []string, m map[string]float64) bool {
	if len(keys) != len(m) {
		return false
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
