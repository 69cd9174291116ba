// internal/compare/report.go
package compare

// Color is the tie-break class of one rendered token.
type Color int

const (
	// ColorNeutral marks a position where every run predicted the same tag.
	ColorNeutral Color = iota
	ColorCorrect
	ColorIncorrect
)

func (c Color) String() string {
	switch c {
	case ColorCorrect:
		return "correct"
	case ColorIncorrect:
		return "incorrect"
	default:
		return "neutral"
	}
}

// Hex is the foreground colour used by the HTML report.
func (c Color) Hex() string {
	switch c {
	case ColorCorrect:
		return "#11B502"
	case ColorIncorrect:
		return "#ED2143"
	default:
		return "#000000"
	}
}

// MarshalText lets reports serialise colours by name.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SelectedHex is the background of tokens the policy selected for inference.
const SelectedHex = "#D4E6FA"

// Posterior is the corpus tag distribution of one word.
type Posterior struct {
	Seen bool               `json:"seen"`
	Tags map[string]float64 `json:"tags,omitempty"`
}

func (p Posterior) String() string {
	if !p.Seen {
		return "not seen"
	}
	return formatFeatures(p.Tags)
}

// Report is the aligned comparison of several runs.
type Report struct {
	RunNames []string     `json:"run_names"`
	Examples int          `json:"examples"`
	Rows     []Row        `json:"rows"`
	Summary  []RunSummary `json:"summary"`
}

// Row is one example across all runs.
type Row struct {
	Index         int         `json:"index"`
	Key           string      `json:"key,omitempty"`
	Words         []string    `json:"words"`
	TruthTags     []string    `json:"truth_tags"`
	Posteriors    []Posterior `json:"posteriors,omitempty"`
	Disagreements int         `json:"disagreements"`
	Runs          []RunRow    `json:"runs"`
}

// RunRow is one run's predictions for a Row.
type RunRow struct {
	Name     string               `json:"name"`
	Tags     []string             `json:"tags"`
	Colors   []Color              `json:"colors"`
	Correct  []bool               `json:"correct"`
	HasMask  bool                 `json:"has_mask"`
	Selected []bool               `json:"selected"`
	Features []map[string]float64 `json:"features,omitempty"`
}

// RunSummary counts a run's outcomes over the compared rows.
type RunSummary struct {
	Name     string `json:"name"`
	Tokens   int    `json:"tokens"`
	Correct  int    `json:"correct"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Selected int    `json:"selected"`
}

// Tooltip is the feature text shown for run r at position pos.
func (row Row) Tooltip(r, pos int) string {
	var feats map[string]float64
	if fs := row.Runs[r].Features; pos < len(fs) {
		feats = fs[pos]
	}
	text := formatFeatures(feats)
	if pos < len(row.Posteriors) {
		if text != "" {
			text += " "
		}
		text += "prob: " + row.Posteriors[pos].String()
	}
	return text
}
