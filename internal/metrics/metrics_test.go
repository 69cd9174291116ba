package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/strin/HeteroSampler/internal/record"
)

func f(v float64) *float64 { return &v }

func example(truth string, dist float64, elapsed *float64) record.ExampleRecord {
	return record.ExampleRecord{Truth: truth, Predicted: truth, Distance: dist, ElapsedTime: elapsed}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMeanTimeWeightings(t *testing.T) {
	run := &record.RunRecord{Examples: []record.ExampleRecord{
		example("a/X\tb/Y\t", 0, f(1)),
		example("a/X\tb/Y\tc/Z\td/W\t", 0, f(2)),
	}}

	raw, err := MeanTime(run, WeightRaw)
	if err != nil {
		t.Fatalf("MeanTime raw error: %v", err)
	}
	if !almostEqual(raw, 1.5) {
		t.Fatalf("raw mean = %v, want 1.5", raw)
	}

	weighted, err := MeanTime(run, WeightLength)
	if err != nil {
		t.Fatalf("MeanTime length error: %v", err)
	}
	if !almostEqual(weighted, (1*2+2*4)/2.0) {
		t.Fatalf("length mean = %v, want 5", weighted)
	}

	if _, err := MeanTime(run, WeightUnset); !errors.Is(err, ErrWeightingRequired) {
		t.Fatalf("expected ErrWeightingRequired, got %v", err)
	}
}

func TestMeanTimeSingleExample(t *testing.T) {
	run := &record.RunRecord{Examples: []record.ExampleRecord{example("cat/NN\tdog/NN\t", 1, f(0.5))}}
	got, err := MeanTime(run, WeightRaw)
	if err != nil || got != 0.5 {
		t.Fatalf("MeanTime = %v, %v; want 0.5", got, err)
	}
}

func TestMeanTimeMonotonic(t *testing.T) {
	truths := []string{"a/X\t", "a/X\tb/Y\t", "a/X\tb/Y\tc/Z\t"}
	base := []float64{0.3, 1.2, 2.5}
	build := func(bump float64) *record.RunRecord {
		run := &record.RunRecord{}
		for i, tr := range truths {
			run.Examples = append(run.Examples, example(tr, 0, f(base[i]+bump*float64(i+1))))
		}
		return run
	}
	for _, w := range []TimeWeighting{WeightRaw, WeightLength} {
		before, err := MeanTime(build(0), w)
		if err != nil {
			t.Fatalf("%s: %v", w, err)
		}
		after, err := MeanTime(build(0.01), w)
		if err != nil {
			t.Fatalf("%s: %v", w, err)
		}
		if !(after > before) {
			t.Fatalf("%s: mean did not increase: %v -> %v", w, before, after)
		}
	}
}

func TestMeanTimeMissing(t *testing.T) {
	run := &record.RunRecord{Examples: []record.ExampleRecord{example("a/X\t", 0, nil)}}
	if _, err := MeanTime(run, WeightRaw); !errors.Is(err, ErrMissingTime) {
		t.Fatalf("expected ErrMissingTime, got %v", err)
	}
	if _, err := MeanTime(&record.RunRecord{}, WeightRaw); !errors.Is(err, ErrNoExamples) {
		t.Fatalf("expected ErrNoExamples, got %v", err)
	}
}

func TestParseTimeWeighting(t *testing.T) {
	if w, err := ParseTimeWeighting("Length"); err != nil || w != WeightLength {
		t.Fatalf("ParseTimeWeighting(Length) = %v, %v", w, err)
	}
	if _, err := ParseTimeWeighting(""); !errors.Is(err, ErrWeightingRequired) {
		t.Fatalf("expected ErrWeightingRequired for empty value, got %v", err)
	}
	if _, err := ParseTimeWeighting("auto"); err == nil {
		t.Fatalf("expected error for auto")
	}
}

func TestAccuracyPassThrough(t *testing.T) {
	run := &record.RunRecord{Accuracy: f(0.912345)}
	got, err := Accuracy(run)
	if err != nil || got != 0.912345 {
		t.Fatalf("Accuracy = %v, %v", got, err)
	}
	if _, err := Accuracy(&record.RunRecord{}); !errors.Is(err, ErrNoAccuracy) {
		t.Fatalf("expected ErrNoAccuracy, got %v", err)
	}
}

func TestMeanFeatureVector(t *testing.T) {
	run := &record.RunRecord{Examples: []record.ExampleRecord{
		{Truth: "a/X\t", Features: map[string]float64{"b": 1, "ent": 0.2}},
		{Truth: "a/X\tb/Y\t", TokenFeatures: []map[string]float64{{"b": 1, "ent": 0.4}, {"b": 1, "ent": 0.8}}},
	}}
	got, err := MeanFeatureVector(run)
	if err != nil {
		t.Fatalf("MeanFeatureVector error: %v", err)
	}
	if !almostEqual(got["b"], 1) || !almostEqual(got["ent"], 0.4) {
		t.Fatalf("unexpected means %v", got)
	}

	run.Examples = append(run.Examples, record.ExampleRecord{Features: map[string]float64{"b": 1}})
	if _, err := MeanFeatureVector(run); !errors.Is(err, ErrFeatureSetMismatch) {
		t.Fatalf("expected ErrFeatureSetMismatch, got %v", err)
	}
}

func TestMeanTimeLengthIgnoresTrailingTab(t *testing.T) {
	tests := []struct {
		name  string
		truth string
		want  float64
	}{
		{name: "trailing tab", truth: "cat/NN\tdog/NN\t", want: 3},
		{name: "no trailing tab", truth: "cat/NN\tdog/NN", want: 3},
		{name: "single token", truth: "cat/NN", want: 1.5},
		{name: "single token with tab", truth: "cat/NN\t", want: 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &record.RunRecord{Examples: []record.ExampleRecord{example(tt.truth, 0, f(1.5))}}
			got, err := MeanTime(run, WeightLength)
			if err != nil {
				t.Fatalf("MeanTime error: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Fatalf("length mean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanTimeLengthSingleTokenIncreases(t *testing.T) {
	slow := &record.RunRecord{Examples: []record.ExampleRecord{example("cat/NN", 0, f(0.5))}}
	fast := &record.RunRecord{Examples: []record.ExampleRecord{example("cat/NN", 0, f(5))}}
	lo, err := MeanTime(slow, WeightLength)
	if err != nil {
		t.Fatalf("MeanTime error: %v", err)
	}
	hi, err := MeanTime(fast, WeightLength)
	if err != nil {
		t.Fatalf("MeanTime error: %v", err)
	}
	if !(hi > lo) {
		t.Fatalf("expected %v > %v", hi, lo)
	}
}

func TestOracleAccuracyWithoutTrailingTab(t *testing.T) {
	a := &record.RunRecord{Examples: []record.ExampleRecord{example("a/X\tb/Y", 1, nil)}}
	b := &record.RunRecord{Examples: []record.ExampleRecord{example("a/X\tb/Y", 2, nil)}}
	got, err := OracleAccuracy(a, b)
	if err != nil {
		t.Fatalf("OracleAccuracy error: %v", err)
	}
	if !almostEqual(got, 0.5) {
		t.Fatalf("oracle = %v, want 0.5", got)
	}
}

func TestOracleAccuracy(t *testing.T) {
	a := &record.RunRecord{Examples: []record.ExampleRecord{
		example("a/X\tb/Y\t", 2, nil),
		example("a/X\tb/Y\t", 0, nil),
	}}
	b := &record.RunRecord{Examples: []record.ExampleRecord{
		example("a/X\tb/Y\t", 1, nil),
		example("a/X\tb/Y\t", 1, nil),
	}}
	got, err := OracleAccuracy(a, b)
	if err != nil {
		t.Fatalf("OracleAccuracy error: %v", err)
	}
	if !almostEqual(got, 0.75) {
		t.Fatalf("oracle = %v, want 0.75", got)
	}
	if _, err := OracleAccuracy(a, &record.RunRecord{}); !errors.Is(err, ErrExampleCountMismatch) {
		t.Fatalf("expected ErrExampleCountMismatch, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	run := &record.RunRecord{
		Name:     "gibbs",
		Accuracy: f(0.75),
		Examples: []record.ExampleRecord{
			{Truth: "a/X\tb/Y\t", Distance: 1, ElapsedTime: f(1), Mask: []int{1, 0}},
			{Truth: "a/X\tb/Y\t", Distance: 0, ElapsedTime: f(3), Mask: []int{1, 1}},
		},
		Warnings: []string{"w"},
	}
	s := Summarize(run, WeightRaw)
	if s.Examples != 2 || s.Tokens != 4 || s.Warnings != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if !almostEqual(s.TokenAccuracy, 0.75) || !almostEqual(s.MeanDistance, 0.5) {
		t.Fatalf("unexpected accuracy/distance %+v", s)
	}
	if s.MeanTime == nil || !almostEqual(*s.MeanTime, 2) {
		t.Fatalf("unexpected mean time %v", s.MeanTime)
	}
	if s.Time.Min != 1 || s.Time.Max != 3 || !almostEqual(s.Time.StdDev, 1) {
		t.Fatalf("unexpected time stats %+v", s.Time)
	}
	if s.SelectionRate == nil || !almostEqual(*s.SelectionRate, 0.75) {
		t.Fatalf("unexpected selection rate %v", s.SelectionRate)
	}

	if s := Summarize(run, WeightUnset); s.MeanTime != nil || s.Weighting != "" {
		t.Fatalf("mean time reported without weighting: %+v", s)
	}
}

func TestSweepOrdersAndMarksFrontier(t *testing.T) {
	fast := &record.RunRecord{Name: "fast", Accuracy: f(0.8), Examples: []record.ExampleRecord{example("a/X\t", 0, f(1))}}
	slow := &record.RunRecord{Name: "slow", Accuracy: f(0.9), Examples: []record.ExampleRecord{example("a/X\t", 0, f(3))}}
	bad := &record.RunRecord{Name: "bad", Examples: []record.ExampleRecord{
		{Truth: "a/X\tb/Y\t", Distance: 1, ElapsedTime: f(2)},
	}}

	points, err := Sweep([]*record.RunRecord{slow, bad, fast}, WeightRaw)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	order := []string{points[0].Name, points[1].Name, points[2].Name}
	if order[0] != "fast" || order[1] != "bad" || order[2] != "slow" {
		t.Fatalf("unexpected order %v", order)
	}
	if !points[0].Frontier || points[1].Frontier || !points[2].Frontier {
		t.Fatalf("unexpected frontier %+v", points)
	}
	if !points[1].Recomputed || !almostEqual(points[1].Accuracy, 0.5) {
		t.Fatalf("expected recomputed accuracy 0.5, got %+v", points[1])
	}
}
