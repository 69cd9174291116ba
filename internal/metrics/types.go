// internal/metrics/types.go
package metrics

// RunningStat holds the values for online calculation of mean, variance and stddev.
type RunningStat struct {
	Count  int64   `json:"count"`
	Mean   float64 `json:"mean"`
	M2     float64 `json:"-"` // Sum of squares of differences from the current mean
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// Summary is the per-run digest printed by inspect and metrics and stored in the run index.
type Summary struct {
	Name          string      `json:"name"`
	Examples      int         `json:"examples"`
	Tokens        int         `json:"tokens"`
	Accuracy      *float64    `json:"accuracy,omitempty"`
	TokenAccuracy float64     `json:"token_accuracy"`
	MeanDistance  float64     `json:"mean_distance"`
	Weighting     string      `json:"weighting,omitempty"`
	MeanTime      *float64    `json:"mean_time,omitempty"`
	Time          RunningStat `json:"time"`
	Distance      RunningStat `json:"distance"`
	MaskedTokens  int         `json:"masked_tokens"`
	SelectionRate *float64    `json:"selection_rate,omitempty"`
	Parameters    int         `json:"parameters"`
	Warnings      int         `json:"warnings"`
}

// SweepPoint is one run on the time/accuracy trade-off curve.
type SweepPoint struct {
	Name     string  `json:"name"`
	MeanTime float64 `json:"mean_time"`
	Accuracy float64 `json:"accuracy"`
	// Recomputed is set when the run logged no accuracy and the value was
	// derived from example distances.
	Recomputed bool `json:"recomputed,omitempty"`
	// Frontier marks runs no other run beats on both time and accuracy.
	Frontier bool `json:"frontier"`
}
