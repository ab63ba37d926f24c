package domain

import (
	"github.com/montanaflynn/stats"
)

func round2(v float64) float64 {
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return rounded
}

// summarizeActivity describes the change volume of days with at least one
// commit, and the lead time of merged pull requests.
func summarizeActivity(perDay Timeline, leadTimeHours []float64) ActivitySummary {
	var changes stats.Float64Data
	for _, key := range perDay.Dates() {
		d := perDay[key]
		if d.Commits == 0 {
			continue
		}
		changes = append(changes, float64(d.Additions+d.Deletions))
	}

	summary := ActivitySummary{ActiveDays: len(changes)}
	summary.MeanChangesPerActiveDay = describe(changes, stats.Mean)
	summary.MedianChangesPerActiveDay = describe(changes, stats.Median)
	summary.P90ChangesPerActiveDay = describe(changes, func(in stats.Float64Data) (float64, error) {
		return stats.Percentile(in, 90)
	})
	summary.MedianPRLeadTimeHours = describe(leadTimeHours, stats.Median)
	return summary
}

// describe applies fn and rounds the result. Empty input yields nil.
func describe(data stats.Float64Data, fn func(stats.Float64Data) (float64, error)) *float64 {
	if len(data) == 0 {
		return nil
	}
	v, err := fn(data)
	if err != nil {
		return nil
	}
	v = round2(v)
	return &v
}
