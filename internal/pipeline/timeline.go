package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DailyCount is one calendar-day bucket of completed steps for a person.
// Buckets use the stored timestamp's date component (UTC), no timezone
// conversion.
type DailyCount struct {
	Date           time.Time `bson:"date" json:"date"`
	DailyCompleted int64     `bson:"daily_completed" json:"daily_completed"`
}

// TimelinePoint is one row of the derived learning timeline
type TimelinePoint struct {
	Date                time.Time `bson:"date" json:"date"`
	DailyCompleted      int64     `bson:"daily_completed" json:"daily_completed"`
	CumulativeCompleted int64     `bson:"cumulative_completed" json:"cumulative_completed"`
	MA3Completed        float64   `bson:"ma3_completed" json:"ma3_completed"`
}

// dailyBucketStages builds the shared head of both timeline variants:
// completed facts for the person, truncated to day, grouped to daily counts,
// sorted ascending.
func dailyBucketStages(personID, completedStatusID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"person_id": personID, "status_id": completedStatusID}}},
		{{Key: "$set", Value: bson.M{
			"date": bson.M{"$dateTrunc": bson.M{"date": "$updated_at", "unit": "day"}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":             bson.M{"person_id": "$person_id", "date": "$date"},
			"daily_completed": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"person_id":       "$_id.person_id",
			"date":            "$_id.date",
			"daily_completed": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
	}
}

// windowStages appends the engine-side window functions: cumulative sum from
// the first bucket through the current one, and the trailing 3-document
// moving average. The average window counts result rows, not calendar days.
func windowStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$setWindowFields", Value: bson.M{
			"partitionBy": "$person_id",
			"sortBy":      bson.D{{Key: "date", Value: 1}},
			"output": bson.M{
				"cumulative_completed": bson.M{
					"$sum":   "$daily_completed",
					"window": bson.M{"documents": bson.A{"unbounded", "current"}},
				},
				"ma3_completed": bson.M{
					"$avg":   "$daily_completed",
					"window": bson.M{"documents": bson.A{-2, 0}},
				},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"date":                 1,
			"daily_completed":      1,
			"cumulative_completed": 1,
			"ma3_completed":        bson.M{"$round": bson.A{"$ma3_completed", 3}},
		}}},
	}
}

// PersonTimeline computes the learning timeline for a person identified by
// email. Daily buckets come from the engine; the cumulative total and moving
// average are derived over the decoded buckets.
func PersonTimeline(ctx context.Context, db *mongo.Database, email string) ([]TimelinePoint, error) {
	daily, err := personDailyCounts(ctx, db, email)
	if err != nil {
		return nil, err
	}
	return DeriveTimeline(daily), nil
}

// PersonTimelineWindowed computes the same timeline entirely engine-side via
// $setWindowFields. Used by the pipeline demos to exercise the window
// functions; results match PersonTimeline.
func PersonTimelineWindowed(ctx context.Context, db *mongo.Database, email string) ([]TimelinePoint, error) {
	person, completedID, err := timelineRefs(ctx, db, email)
	if err != nil {
		return nil, err
	}

	stages := dailyBucketStages(person.ID, completedID)
	stages = append(stages, windowStages()...)

	cur, err := db.Collection(models.PersonStepProgress{}.CollectionName()).Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("timeline aggregation: %w", err)
	}
	var points []TimelinePoint
	if err := cur.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("decode timeline points: %w", err)
	}
	return points, nil
}

func personDailyCounts(ctx context.Context, db *mongo.Database, email string) ([]DailyCount, error) {
	person, completedID, err := timelineRefs(ctx, db, email)
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(models.PersonStepProgress{}.CollectionName()).
		Aggregate(ctx, dailyBucketStages(person.ID, completedID))
	if err != nil {
		return nil, fmt.Errorf("daily bucket aggregation: %w", err)
	}
	var daily []DailyCount
	if err := cur.All(ctx, &daily); err != nil {
		return nil, fmt.Errorf("decode daily buckets: %w", err)
	}
	return daily, nil
}

func timelineRefs(ctx context.Context, db *mongo.Database, email string) (models.Person, primitive.ObjectID, error) {
	person, err := store.PersonByEmail(ctx, db, email)
	if err != nil {
		return models.Person{}, primitive.NilObjectID, err
	}
	completed, err := store.StatusByName(ctx, db, models.StatusCompleted)
	if err != nil {
		return models.Person{}, primitive.NilObjectID, err
	}
	return person, completed.ID, nil
}
