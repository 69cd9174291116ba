// internal/metrics/aggregator.go
package metrics

import (
	"math"

	"github.com/strin/HeteroSampler/internal/record"
)

// Summarize folds a run into a Summary in one pass over its examples. Mean
// time is only reported when weighting is set and every example carries a time.
func Summarize(run *record.RunRecord, weighting TimeWeighting) Summary {
	s := Summary{
		Name:       run.Name,
		Examples:   len(run.Examples),
		Accuracy:   run.Accuracy,
		Parameters: len(run.Parameters),
		Warnings:   len(run.Warnings),
	}
	if weighting != WeightUnset {
		s.Weighting = weighting.String()
	}

	var distSum float64
	maskTokens := 0
	for _, ex := range run.Examples {
		n := ex.TokenCount()
		s.Tokens += n
		distSum += ex.Distance
		updateRunningStat(&s.Distance, ex.Distance)
		if ex.ElapsedTime != nil {
			updateRunningStat(&s.Time, *ex.ElapsedTime)
		}
		if ex.HasMask() {
			maskTokens += len(ex.Mask)
			for _, m := range ex.Mask {
				s.MaskedTokens += m
			}
		}
	}
	if s.Examples > 0 {
		s.MeanDistance = distSum / float64(s.Examples)
	}
	if s.Tokens > 0 {
		s.TokenAccuracy = 1 - distSum/float64(s.Tokens)
	}
	if maskTokens > 0 {
		rate := float64(s.MaskedTokens) / float64(maskTokens)
		s.SelectionRate = &rate
	}
	if weighting != WeightUnset {
		if mt, err := MeanTime(run, weighting); err == nil {
			s.MeanTime = &mt
		}
	}
	return s
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
	rs.StdDev = math.Sqrt(rs.M2 / float64(rs.Count))
}
