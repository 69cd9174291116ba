package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/record"
)

func f(v float64) *float64 { return &v }

func TestPutAndList(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "index", "runs.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	run := &record.RunRecord{
		Name:            "stop",
		Accuracy:        f(0.5),
		CorpusReference: "data/eng_ner/train",
		Parameters:      map[string]float64{"bias": 0.25, "ent": -1},
		Examples: []record.ExampleRecord{
			{Truth: "a/X\tb/Y\t", Predicted: "a/X\tb/Z\t", Distance: 1, ElapsedTime: f(2)},
		},
	}
	batch := uuid.New()
	id, err := s.Put(ctx, batch, "runs/stop.xml", run, metrics.Summarize(run, metrics.WeightRaw))
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	bare := &record.RunRecord{Name: "gibbs", Examples: []record.ExampleRecord{{Truth: "a/X\t", Predicted: "a/X\t"}}}
	if _, err := s.Put(ctx, batch, "runs/gibbs.xml", bare, metrics.Summarize(bare, metrics.WeightRaw)); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []Entry{
		{
			ID:             id,
			BatchID:        batch.String(),
			Name:           "stop",
			Path:           "runs/stop.xml",
			Accuracy:       f(0.5),
			TokenAccuracy:  0.5,
			MeanTimeRaw:    f(2),
			MeanTimeLength: f(4),
			Examples:       1,
			Tokens:         2,
			Corpus:         "data/eng_ner/train",
			Parameters:     map[string]float64{"bias": 0.25, "ent": -1},
		},
		{
			ID:            id + 1,
			BatchID:       batch.String(),
			Name:          "gibbs",
			Path:          "runs/gibbs.xml",
			TokenAccuracy: 1,
			Examples:      1,
			Tokens:        1,
		},
	}
	if diff := cmp.Diff(want, entries, cmpopts.IgnoreFields(Entry{}, "ParsedAt")); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	for _, e := range entries {
		if e.ParsedAt.IsZero() {
			t.Fatalf("expected parsed_at on %s", e.Name)
		}
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	run := &record.RunRecord{Name: "x", Examples: []record.ExampleRecord{{Truth: "a/X\t", Predicted: "a/X\t"}}}
	if _, err := s.Put(ctx, uuid.New(), "x.xml", run, metrics.Summarize(run, metrics.WeightRaw)); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "x" {
		t.Fatalf("unexpected entries after reopen: %+v", entries)
	}
}
