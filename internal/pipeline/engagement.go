// engagement.go
//
// Document database setup, seed, and analytics kit for the learning platform schemas
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lp-docdb.
// lp-docdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lp-docdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lp-docdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package pipeline

import (
	"context"
	"fmt"

	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ModuleEngagement is one row of the per-module summary
type ModuleEngagement struct {
	ModuleID            primitive.ObjectID `bson:"_id" json:"-"`
	ModuleName          string             `bson:"module_name" json:"module_name"`
	LessonsCount        int64              `bson:"lessons_count" json:"lessons_count"`
	StepsCount          int64              `bson:"steps_count" json:"steps_count"`
	UniqueLearnersCount int64              `bson:"unique_learners_count" json:"unique_learners_count"`
	CompletedStepsCount int64              `bson:"completed_steps_count" json:"completed_steps_count"`
	CompletionRate      float64            `bson:"-" json:"completion_rate"`
}

// EngagementTotals are the grand totals across the summary
type EngagementTotals struct {
	Modules              int64 `json:"modules"`
	TotalLessons         int64 `json:"total_lessons"`
	TotalSteps           int64 `json:"total_steps"`
	TotalUniqueLearners  int64 `json:"total_unique_learners"`
	TotalCompletedEvents int64 `json:"total_completed_events"`
}

// EngagementReport carries both views derived from one computation
type EngagementReport struct {
	ModuleSummary []ModuleEngagement `json:"module_summary"`
	Totals        EngagementTotals   `json:"totals"`
}

// engagementPipeline builds the fact-table aggregation: step-level progress
// filtered to engaged statuses, joined step→lesson→module, grouped per
// module with the distinct learner set and completed count, then enriched
// with total lesson/step counts via side lookups so the totals are
// independent of the filtered facts.
func engagementPipeline(engagedStatusIDs, completedStatusIDs []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status_id": bson.M{"$in": engagedStatusIDs}}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "step", "localField": "step_id", "foreignField": "_id", "as": "step",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$step", "preserveNullAndEmptyArrays": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "lesson", "localField": "step.lesson_id", "foreignField": "_id", "as": "lesson",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$lesson", "preserveNullAndEmptyArrays": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "module", "localField": "lesson.module_id", "foreignField": "_id", "as": "module",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$module", "preserveNullAndEmptyArrays": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$module._id",
			"module_name":     bson.M{"$first": "$module.name"},
			"unique_learners": bson.M{"$addToSet": "$person_id"},
			"completed_events": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$status_id", completedStatusIDs}}, 1, 0,
			}}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "lesson", "localField": "_id", "foreignField": "module_id", "as": "module_lessons",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "step",
			"let":  bson.M{"lessonIds": "$module_lessons._id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$lesson_id", "$$lessonIds"}}}},
				bson.M{"$project": bson.M{"_id": 1}},
			},
			"as": "module_steps",
		}}},
		{{Key: "$project", Value: bson.M{
			"module_name":           1,
			"lessons_count":         bson.M{"$size": "$module_lessons"},
			"steps_count":           bson.M{"$size": "$module_steps"},
			"unique_learners_count": bson.M{"$size": "$unique_learners"},
			"completed_steps_count": "$completed_events",
		}}},
	}
}

// ModuleEngagementReport computes the engagement summary and grand totals.
// Modules with no engaged facts still appear with their catalog totals and
// zero engagement numbers.
func ModuleEngagementReport(ctx context.Context, db *mongo.Database) (EngagementReport, error) {
	engagedIDs, err := store.StatusIDs(ctx, db, models.StatusInProgress, models.StatusCompleted)
	if err != nil {
		return EngagementReport{}, fmt.Errorf("resolve engaged statuses: %w", err)
	}
	completedIDs, err := store.StatusIDs(ctx, db, models.StatusCompleted)
	if err != nil {
		return EngagementReport{}, fmt.Errorf("resolve completed status: %w", err)
	}

	facts := db.Collection(models.PersonStepProgress{}.CollectionName())
	cur, err := facts.Aggregate(ctx, engagementPipeline(engagedIDs, completedIDs))
	if err != nil {
		return EngagementReport{}, fmt.Errorf("engagement aggregation: %w", err)
	}
	var rows []ModuleEngagement
	if err := cur.All(ctx, &rows); err != nil {
		return EngagementReport{}, fmt.Errorf("decode engagement rows: %w", err)
	}

	rows, err = appendIdleModules(ctx, db, rows)
	if err != nil {
		return EngagementReport{}, err
	}

	return DeriveEngagement(rows), nil
}

// appendIdleModules adds catalog modules absent from the fact-derived rows
// with correct lesson/step totals and zero engagement.
func appendIdleModules(ctx context.Context, db *mongo.Database, rows []ModuleEngagement) ([]ModuleEngagement, error) {
	seen := make(map[primitive.ObjectID]bool, len(rows))
	for _, r := range rows {
		seen[r.ModuleID] = true
	}

	modules, err := store.Modules(ctx, db, nil, store.QueryOptions{})
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}

	for _, m := range modules {
		if seen[m.ID] {
			continue
		}
		lessons, err := store.LessonsForModule(ctx, db, m.ID, store.QueryOptions{Projection: bson.M{"_id": 1}})
		if err != nil {
			return nil, err
		}
		lessonIDs := make([]primitive.ObjectID, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
		}
		stepCount, err := store.CountExact(ctx, db, models.Step{}.CollectionName(),
			bson.M{"lesson_id": bson.M{"$in": lessonIDs}})
		if err != nil {
			return nil, err
		}
		rows = append(rows, ModuleEngagement{
			ModuleID:     m.ID,
			ModuleName:   m.Name,
			LessonsCount: int64(len(lessons)),
			StepsCount:   stepCount,
		})
	}
	return rows, nil
}
