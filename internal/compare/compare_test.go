package compare

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strin/HeteroSampler/internal/record"
)

func run(name string, examples ...record.ExampleRecord) *record.RunRecord {
	return &record.RunRecord{Name: name, Examples: examples}
}

func ex(truth, predicted string) record.ExampleRecord {
	return record.ExampleRecord{Truth: truth, Predicted: predicted}
}

type posteriors map[string]map[string]float64

func (p posteriors) Lookup(word string) (map[string]float64, bool) {
	tags, ok := p[word]
	return tags, ok
}

func colors(rr RunRow) []Color { return rr.Colors }

func TestCompareFullDisagreement(t *testing.T) {
	truth := "the/DT\tcat/NN\truns/VBZ\t"
	good := run("good", ex(truth, truth), ex(truth, truth))
	bad := run("bad", ex(truth, "the/NN\tcat/VB\truns/NNS\t"), ex(truth, "the/NN\tcat/VB\truns/NNS\t"))

	rep, err := Compare([]*record.RunRecord{good, bad}, nil, Options{})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	for _, row := range rep.Rows {
		assert.Equal(t, []Color{ColorCorrect, ColorCorrect, ColorCorrect}, colors(row.Runs[0]))
		assert.Equal(t, []Color{ColorIncorrect, ColorIncorrect, ColorIncorrect}, colors(row.Runs[1]))
		assert.Equal(t, 3, row.Disagreements)
		assert.Equal(t, []string{"the", "cat", "runs"}, row.Words)
	}
	assert.Equal(t, RunSummary{Name: "good", Tokens: 6, Correct: 6, Wins: 6}, rep.Summary[0])
	assert.Equal(t, RunSummary{Name: "bad", Tokens: 6, Losses: 6}, rep.Summary[1])
}

func TestCompareAgreementIsNeutral(t *testing.T) {
	truth := "cat/NN\tdog/NN\t"
	pred := "cat/NN\tdog/VB\t"
	a := run("a", ex(truth, pred), ex(truth, truth))
	b := run("b", ex(truth, pred), ex(truth, truth))

	rep, err := Compare([]*record.RunRecord{a, b}, []string{"Pass 1", "Pass 2"}, Options{})
	require.NoError(t, err)
	for _, row := range rep.Rows {
		for _, rr := range row.Runs {
			for j, c := range rr.Colors {
				assert.Equal(t, ColorNeutral, c, "row %d run %s pos %d", row.Index, rr.Name, j)
			}
		}
		assert.Zero(t, row.Disagreements)
	}
	assert.False(t, rep.Rows[0].Runs[0].Correct[1])
	assert.Equal(t, []string{"Pass 1", "Pass 2"}, rep.RunNames)
}

func TestCompareMixedPosition(t *testing.T) {
	truth := "a/X\tb/Y\t"
	r1 := run("r1", ex(truth, "a/X\tb/Z\t"))
	r2 := run("r2", ex(truth, "a/X\tb/Y\t"))
	r3 := run("r3", ex(truth, "a/X\tb/W\t"))

	rep, err := Compare([]*record.RunRecord{r1, r2, r3}, nil, Options{})
	require.NoError(t, err)
	row := rep.Rows[0]
	want := [][]Color{
		{ColorNeutral, ColorIncorrect},
		{ColorNeutral, ColorCorrect},
		{ColorNeutral, ColorIncorrect},
	}
	for r := range row.Runs {
		if diff := cmp.Diff(want[r], row.Runs[r].Colors); diff != "" {
			t.Fatalf("run %d colours (-want +got):\n%s", r, diff)
		}
	}
}

func TestCompareRecordCountMismatch(t *testing.T) {
	a := run("a", ex("a/X\t", "a/X\t"), ex("a/X\t", "a/X\t"))
	b := run("b", ex("a/X\t", "a/X\t"))
	rep, err := Compare([]*record.RunRecord{a, b}, nil, Options{})
	assert.True(t, errors.Is(err, ErrRecordCountMismatch), "got %v", err)
	assert.Nil(t, rep)

	_, err = Compare(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestCompareLengthMismatchIsFatal(t *testing.T) {
	short := run("short", ex("a/X\tb/Y\tc/Z\t", "a/X\tb/Y\t"))
	ok := run("ok", ex("a/X\tb/Y\tc/Z\t", "a/X\tb/Y\tc/Z\t"))
	for _, runs := range [][]*record.RunRecord{{short, ok}, {ok, short}} {
		rep, err := Compare(runs, nil, Options{})
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrLengthMismatch)
		assert.Contains(t, err.Error(), "short example 0")
		assert.Nil(t, rep)
	}

	masked := run("masked", record.ExampleRecord{Truth: "a/X\t", Predicted: "a/X\t", Mask: []int{0, 1}})
	_, err := Compare([]*record.RunRecord{masked}, nil, Options{})
	assert.ErrorIs(t, err, record.ErrLengthMismatch)
}

func TestCompareSelectionAndFeatures(t *testing.T) {
	truth := "a/X\tb/Y\t"
	withMask := run("policy", record.ExampleRecord{
		Truth:         truth,
		Predicted:     "a/X\tb/Z\t",
		Mask:          []int{0, 1},
		TokenFeatures: []map[string]float64{{"ent": 0.1}, {"ent": 0.9}},
	})
	noMask := run("gibbs", record.ExampleRecord{
		Truth:     truth,
		Predicted: truth,
		Features:  map[string]float64{"b": 1},
	})
	oracle := posteriors{"a": {"X": 0.75, "Y": 0.25}}

	rep, err := Compare([]*record.RunRecord{withMask, noMask}, nil, Options{Posterior: oracle})
	require.NoError(t, err)
	row := rep.Rows[0]

	assert.True(t, row.Runs[0].HasMask)
	assert.Equal(t, []bool{false, true}, row.Runs[0].Selected)
	assert.False(t, row.Runs[1].HasMask)
	assert.Equal(t, []bool{false, false}, row.Runs[1].Selected)

	assert.Equal(t, 0.9, row.Runs[0].Features[1]["ent"])
	assert.Equal(t, 1.0, row.Runs[1].Features[1]["b"])

	require.Len(t, row.Posteriors, 2)
	assert.True(t, row.Posteriors[0].Seen)
	assert.False(t, row.Posteriors[1].Seen)
	assert.Equal(t, "{ent: 0.9} prob: not seen", row.Tooltip(0, 1))
	assert.Equal(t, "{b: 1} prob: {X: 0.75, Y: 0.25}", row.Tooltip(1, 0))

	// snapshots are copies
	row.Runs[0].Features[1]["ent"] = 5
	assert.Equal(t, 0.9, withMask.Examples[0].TokenFeatures[1]["ent"])
	assert.Equal(t, 1, rep.Summary[0].Selected)
}

func TestCompareOnlyDisagreements(t *testing.T) {
	truth := "a/X\t"
	a := run("a", ex(truth, truth), ex(truth, "a/Y\t"), ex(truth, truth))
	b := run("b", ex(truth, truth), ex(truth, truth), ex(truth, truth))

	rep, err := Compare([]*record.RunRecord{a, b}, nil, Options{OnlyDisagreements: true})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, 1, rep.Rows[0].Index)
	assert.Equal(t, 3, rep.Examples)
	assert.Equal(t, 3, rep.Summary[1].Tokens)
}

func TestCompareDoesNotMutateInputs(t *testing.T) {
	truth := "a/X\tb/Y\t"
	a := run("a", ex(truth, "a/X\tb/Z\t"))
	b := run("b", ex(truth, truth))
	before := []*record.RunRecord{cloneRun(a), cloneRun(b)}

	_, err := Compare([]*record.RunRecord{a, b}, nil, Options{})
	require.NoError(t, err)
	if diff := cmp.Diff(before, []*record.RunRecord{a, b}); diff != "" {
		t.Fatalf("inputs changed (-before +after):\n%s", diff)
	}
}

func cloneRun(r *record.RunRecord) *record.RunRecord {
	c := *r
	c.Examples = append([]record.ExampleRecord(nil), r.Examples...)
	return &c
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#000000", ColorNeutral.Hex())
	assert.Equal(t, "#11B502", ColorCorrect.Hex())
	assert.Equal(t, "#ED2143", ColorIncorrect.Hex())
	text, err := ColorIncorrect.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "incorrect", string(text))
}
