package main

import (
	"context"
	"log"

	"github.com/localnerve/lp-docdb/internal/pipeline"
	"go.mongodb.org/mongo-driver/mongo"
)

// runReports prints both aggregation reports: the per-module engagement
// summary and the per-learner completion timeline with engine-side window
// functions.
func runReports(ctx context.Context, db *mongo.Database) error {
	log.Println("[PIPELINE] module engagement report")

	report, err := pipeline.ModuleEngagementReport(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range report.ModuleSummary {
		log.Printf("  %-22s lessons=%-2d steps=%-2d learners=%-2d completed=%-2d rate=%.4f",
			m.ModuleName, m.LessonsCount, m.StepsCount, m.UniqueLearnersCount,
			m.CompletedStepsCount, m.CompletionRate)
	}
	log.Printf("  totals: modules=%d lessons=%d steps=%d learners=%d completed=%d",
		report.Totals.Modules, report.Totals.TotalLessons, report.Totals.TotalSteps,
		report.Totals.TotalUniqueLearners, report.Totals.TotalCompletedEvents)

	log.Println("[PIPELINE] completion timeline for alice@example.com")

	points, err := pipeline.PersonTimelineWindowed(ctx, db, "alice@example.com")
	if err != nil {
		return err
	}
	for _, p := range points {
		log.Printf("  %s daily=%-2d cumulative=%-2d ma3=%.3f",
			p.Date.Format("2006-01-02"), p.DailyCompleted, p.CumulativeCompleted, p.MA3Completed)
	}

	log.Println("[PIPELINE] reports complete")
	return nil
}
