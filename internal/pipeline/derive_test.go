package pipeline

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
}

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		completed, steps, learners int64
		expected                   float64
	}{
		{4, 4, 1, 1},
		{2, 4, 2, 0.25},
		{1, 3, 3, 0.1111}, // rounded to 4dp
		{0, 4, 2, 0},
		{5, 0, 2, 0}, // zero denominator clamps
		{5, 4, 0, 0},
	}
	for _, c := range cases {
		got := CompletionRate(c.completed, c.steps, c.learners)
		if got != c.expected {
			t.Errorf("CompletionRate(%d,%d,%d) = %v, expected %v",
				c.completed, c.steps, c.learners, got, c.expected)
		}
	}
}

func TestDeriveEngagementSortAndTotals(t *testing.T) {
	rows := []ModuleEngagement{
		{ModuleName: "Basic Phrases", LessonsCount: 2, StepsCount: 6, UniqueLearnersCount: 1, CompletedStepsCount: 3},
		{ModuleName: "Alphabet Basics", LessonsCount: 3, StepsCount: 8, UniqueLearnersCount: 2, CompletedStepsCount: 8},
		{ModuleName: "Conversational Skills", LessonsCount: 2, StepsCount: 5, UniqueLearnersCount: 0, CompletedStepsCount: 0},
		{ModuleName: "Advanced Dialogues", LessonsCount: 2, StepsCount: 6, UniqueLearnersCount: 2, CompletedStepsCount: 6},
	}

	report := DeriveEngagement(rows)

	// Rates: Alphabet 8/16=0.5, Basic 3/6=0.5, Advanced 6/12=0.5, Conversational 0.
	// All three 0.5s tie-break on name ascending.
	expectedOrder := []string{"Advanced Dialogues", "Alphabet Basics", "Basic Phrases", "Conversational Skills"}
	for i, name := range expectedOrder {
		if report.ModuleSummary[i].ModuleName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, report.ModuleSummary[i].ModuleName)
		}
	}

	if report.ModuleSummary[3].CompletionRate != 0 {
		t.Errorf("idle module rate should be 0, got %v", report.ModuleSummary[3].CompletionRate)
	}

	tot := report.Totals
	if tot.Modules != 4 || tot.TotalLessons != 9 || tot.TotalSteps != 25 ||
		tot.TotalUniqueLearners != 5 || tot.TotalCompletedEvents != 17 {
		t.Errorf("unexpected totals: %+v", tot)
	}

	// Input order untouched
	if rows[0].ModuleName != "Basic Phrases" || rows[0].CompletionRate != 0 {
		t.Error("DeriveEngagement mutated its input")
	}
}

func TestDeriveEngagementRounding(t *testing.T) {
	report := DeriveEngagement([]ModuleEngagement{
		{ModuleName: "M", StepsCount: 3, UniqueLearnersCount: 1, CompletedStepsCount: 1},
	})
	if got := report.ModuleSummary[0].CompletionRate; got != 0.3333 {
		t.Errorf("expected 0.3333, got %v", got)
	}
}

func TestDeriveTimelineCumulative(t *testing.T) {
	daily := []DailyCount{
		{Date: day(1), DailyCompleted: 2},
		{Date: day(2), DailyCompleted: 1},
		{Date: day(3), DailyCompleted: 3},
		{Date: day(4), DailyCompleted: 1},
	}

	points := DeriveTimeline(daily)
	if len(points) != len(daily) {
		t.Fatalf("expected %d points, got %d", len(daily), len(points))
	}

	var sum int64
	prev := int64(0)
	for i, p := range points {
		sum += daily[i].DailyCompleted
		if p.CumulativeCompleted != sum {
			t.Errorf("point %d: cumulative %d, expected %d", i, p.CumulativeCompleted, sum)
		}
		if p.CumulativeCompleted < prev {
			t.Errorf("point %d: cumulative decreased", i)
		}
		prev = p.CumulativeCompleted
	}
	if points[len(points)-1].CumulativeCompleted != 7 {
		t.Errorf("final cumulative %d, expected total 7", points[len(points)-1].CumulativeCompleted)
	}
}

func TestDeriveTimelineMovingAverage(t *testing.T) {
	daily := []DailyCount{
		{Date: day(1), DailyCompleted: 3},
		{Date: day(2), DailyCompleted: 1},
		{Date: day(3), DailyCompleted: 2},
		{Date: day(4), DailyCompleted: 4},
	}

	points := DeriveTimeline(daily)

	// First rows average over the rows that exist, not a zero-filled window
	expected := []float64{3, 2, 2, 2.333}
	for i, e := range expected {
		if points[i].MA3Completed != e {
			t.Errorf("point %d: ma3 %v, expected %v", i, points[i].MA3Completed, e)
		}
	}
}

func TestDeriveTimelineGapDays(t *testing.T) {
	// Day 2 has no bucket at all. The window is row-based: day 5's average
	// uses days 3 and 5, not a zero for the missing day 4.
	daily := []DailyCount{
		{Date: day(1), DailyCompleted: 2},
		{Date: day(3), DailyCompleted: 4},
		{Date: day(5), DailyCompleted: 3},
	}

	points := DeriveTimeline(daily)

	if points[1].MA3Completed != 3 { // (2+4)/2
		t.Errorf("gap row 1: ma3 %v, expected 3", points[1].MA3Completed)
	}
	if points[2].MA3Completed != 3 { // (2+4+3)/3
		t.Errorf("gap row 2: ma3 %v, expected 3", points[2].MA3Completed)
	}
	if points[2].CumulativeCompleted != 9 {
		t.Errorf("gap cumulative %d, expected 9", points[2].CumulativeCompleted)
	}
}

func TestDeriveTimelineEmpty(t *testing.T) {
	if points := DeriveTimeline(nil); len(points) != 0 {
		t.Errorf("expected no points for empty input, got %d", len(points))
	}
}
