package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strin/HeteroSampler/internal/compare"
	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/record"
)

type oracle map[string]map[string]float64

func (o oracle) Lookup(word string) (map[string]float64, bool) {
	t, ok := o[word]
	return t, ok
}

func sampleReport(t *testing.T) *compare.Report {
	t.Helper()
	truth := "the/DT\tcat/NN\t"
	policy := &record.RunRecord{Name: "policy", Examples: []record.ExampleRecord{{
		Key:           "example_0",
		Truth:         truth,
		Predicted:     "the/DT\tcat/VB\t",
		Mask:          []int{0, 1},
		TokenFeatures: []map[string]float64{{"ent": 0.1}, {"ent": 0.9}},
	}}}
	gibbs := &record.RunRecord{Name: "gibbs", Examples: []record.ExampleRecord{{
		Key:       "example_0",
		Truth:     truth,
		Predicted: truth,
	}}}
	rep, err := compare.Compare([]*record.RunRecord{policy, gibbs}, nil, compare.Options{
		Posterior: oracle{"cat": {"NN": 0.9, "VB": 0.1}},
	})
	require.NoError(t, err)
	return rep
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleReport(t), "policy <vs> gibbs")
	require.NoError(t, err)

	assert.Contains(t, html, "<title>policy &lt;vs&gt; gibbs</title>")
	assert.Contains(t, html, "color: #ED2143; background-color: #D4E6FA")
	assert.Contains(t, html, "color: #11B502")
	assert.Contains(t, html, "color: #000000")
	assert.Contains(t, html, `title="{ent: 0.9} prob: {NN: 0.9, VB: 0.1}"`)
	assert.Contains(t, html, "<b>cat</b>")
	assert.Contains(t, html, "<br>policy<br>gibbs")
}

func TestRenderTerminalPlain(t *testing.T) {
	out := RenderTerminal(sampleReport(t), TerminalOptions{})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "#0 example_0, 1 disagreement(s)", lines[0])
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	assert.Equal(t, "Words   the  cat", lines[1])
	assert.Equal(t, "Truth   DT   NN", lines[2])
	assert.Equal(t, "policy  DT   VB*", lines[3])
	assert.Equal(t, "gibbs   DT   NN", lines[4])
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderTerminalColor(t *testing.T) {
	out := RenderTerminal(sampleReport(t), TerminalOptions{Color: true})
	assert.Contains(t, out, "\x1b[")
	assert.NotContains(t, out, "VB*")
}

func TestWriteJSONValidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t)))
	assert.Contains(t, buf.String(), `"incorrect"`)
	require.NoError(t, ValidateJSON(buf.Bytes()))

	err := ValidateJSON([]byte(`{"run_names": [], "examples": -1, "rows": [], "summary": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report failed validation")
	assert.NotEmpty(t, Schema())
}

func TestWriteJSONRejectsInvalidReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, &compare.Report{Examples: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report failed validation")
	assert.Zero(t, buf.Len())
}

func TestWriteSummaryTable(t *testing.T) {
	acc := 0.5
	mt := 1.25
	var buf bytes.Buffer
	err := WriteSummaryTable(&buf, []metrics.Summary{
		{Name: "stop", Examples: 2, Tokens: 4, Accuracy: &acc, TokenAccuracy: 0.5, MeanTime: &mt, Weighting: "raw"},
		{Name: "gibbs_long_name", Examples: 2, Tokens: 4},
	}, TableOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RUN              EXAMPLES"))
	assert.Contains(t, lines[1], "0.5000")
	assert.Contains(t, lines[1], "1.2500")
	assert.Contains(t, lines[2], " - ")
}

func TestWriteSweepAndFeatureTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSweepTable(&buf, []metrics.SweepPoint{
		{Name: "fast", MeanTime: 1, Accuracy: 0.8, Frontier: true},
		{Name: "odd", MeanTime: 2, Accuracy: 0.7, Recomputed: true},
	}, TableOptions{}))
	assert.Contains(t, buf.String(), "0.7000 (from dist)")

	buf.Reset()
	require.NoError(t, WriteFeatureTable(&buf, map[string]float64{"ent": 0.5, "b": 1}, TableOptions{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "b "))

	buf.Reset()
	require.NoError(t, WriteComparisonSummary(&buf, sampleReport(t), TableOptions{}))
	assert.Contains(t, buf.String(), "LOSSES")
}
