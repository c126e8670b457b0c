package pipeline

import (
	"math"
	"sort"
)

// CompletionRate derives completed/(steps*learners), clamped to 0 when the
// denominator is 0 and rounded to 4 decimal places.
func CompletionRate(completed, steps, learners int64) float64 {
	denom := steps * learners
	if denom <= 0 {
		return 0
	}
	return roundTo(float64(completed)/float64(denom), 4)
}

// DeriveEngagement fills in completion rates, orders the summary by rate
// descending with module name ascending as the tie-break, and computes the
// grand totals. Both output views come from the same input rows.
func DeriveEngagement(rows []ModuleEngagement) EngagementReport {
	summary := make([]ModuleEngagement, len(rows))
	copy(summary, rows)

	var totals EngagementTotals
	for i := range summary {
		summary[i].CompletionRate = CompletionRate(
			summary[i].CompletedStepsCount, summary[i].StepsCount, summary[i].UniqueLearnersCount)

		totals.Modules++
		totals.TotalLessons += summary[i].LessonsCount
		totals.TotalSteps += summary[i].StepsCount
		totals.TotalUniqueLearners += summary[i].UniqueLearnersCount
		totals.TotalCompletedEvents += summary[i].CompletedStepsCount
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if summary[i].CompletionRate != summary[j].CompletionRate {
			return summary[i].CompletionRate > summary[j].CompletionRate
		}
		return summary[i].ModuleName < summary[j].ModuleName
	})

	return EngagementReport{ModuleSummary: summary, Totals: totals}
}

// DeriveTimeline computes the running cumulative total and the trailing
// 3-bucket moving average over date-ascending daily counts. The average
// window is row-based: the current bucket plus up to two preceding buckets
// that exist in the result, so calendar gaps are not zero-filled.
func DeriveTimeline(daily []DailyCount) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(daily))

	var cumulative int64
	for i, d := range daily {
		cumulative += d.DailyCompleted

		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		var windowSum int64
		for _, w := range daily[lo : i+1] {
			windowSum += w.DailyCompleted
		}
		ma3 := roundTo(float64(windowSum)/float64(i+1-lo), 3)

		points = append(points, TimelinePoint{
			Date:                d.Date,
			DailyCompleted:      d.DailyCompleted,
			CumulativeCompleted: cumulative,
			MA3Completed:        ma3,
		})
	}
	return points
}

func roundTo(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}
