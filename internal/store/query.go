package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/localnerve/lp-docdb/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QueryOptions carries the read-side knobs of a catalog query
type QueryOptions struct {
	Sort       bson.D
	Skip       int64
	Limit      int64
	Projection bson.M
}

// Page converts 1-based page/size into skip+limit
func Page(page, size int64) QueryOptions {
	if page < 1 {
		page = 1
	}
	return QueryOptions{Skip: (page - 1) * size, Limit: size}
}

func (q QueryOptions) findOptions() *options.FindOptions {
	opts := options.Find()
	if q.Sort != nil {
		opts.SetSort(q.Sort)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Projection != nil {
		opts.SetProjection(q.Projection)
	}
	return opts
}

// Comparison operator builders. Thin wrappers so call sites read like the
// query language they produce.

// Lt builds {field: {$lt: v}}
func Lt(field string, v interface{}) bson.M { return bson.M{field: bson.M{"$lt": v}} }

// Lte builds {field: {$lte: v}}
func Lte(field string, v interface{}) bson.M { return bson.M{field: bson.M{"$lte": v}} }

// Gt builds {field: {$gt: v}}
func Gt(field string, v interface{}) bson.M { return bson.M{field: bson.M{"$gt": v}} }

// Gte builds {field: {$gte: v}}
func Gte(field string, v interface{}) bson.M { return bson.M{field: bson.M{"$gte": v}} }

// Ne builds {field: {$ne: v}}
func Ne(field string, v interface{}) bson.M { return bson.M{field: bson.M{"$ne": v}} }

// In builds {field: {$in: vals}}
func In(field string, vals ...interface{}) bson.M { return bson.M{field: bson.M{"$in": vals}} }

// Nin builds {field: {$nin: vals}}
func Nin(field string, vals ...interface{}) bson.M { return bson.M{field: bson.M{"$nin": vals}} }

// Logical operator builders compose the comparison filters above.

// And builds {$and: [filters...]}
func And(filters ...bson.M) bson.M { return bson.M{"$and": filters} }

// Or builds {$or: [filters...]}
func Or(filters ...bson.M) bson.M { return bson.M{"$or": filters} }

// Nor builds {$nor: [filters...]}
func Nor(filters ...bson.M) bson.M { return bson.M{"$nor": filters} }

// PrefixRegex builds a left-anchored, case-insensitive name pattern.
// Left-anchored patterns can ride a btree index on the field (IXSCAN).
func PrefixRegex(field, prefix string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}}
}

// ContainsRegex builds an unanchored, case-insensitive substring pattern.
// Unanchored patterns force a full collection scan (COLLSCAN).
func ContainsRegex(field, substring string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(substring), Options: "i"}}
}

// PatternRegex builds a raw pattern filter for complex templates
// (alternation, groups, classes).
func PatternRegex(field, pattern, opts string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: pattern, Options: opts}}
}

// NotRegex builds {field: {$not: pattern}}. Negated patterns cannot use an
// index and may scan.
func NotRegex(field, pattern, opts string) bson.M {
	return bson.M{field: bson.M{"$not": primitive.Regex{Pattern: pattern, Options: opts}}}
}

// Modules returns modules matching filter with the given query options
func Modules(ctx context.Context, db *mongo.Database, filter bson.M, q QueryOptions) ([]models.Module, error) {
	return findAll[models.Module](ctx, db.Collection(models.Module{}.CollectionName()), filter, q)
}

// Lessons returns lessons matching an arbitrary engine-side filter
func Lessons(ctx context.Context, db *mongo.Database, filter bson.M, q QueryOptions) ([]models.Lesson, error) {
	return findAll[models.Lesson](ctx, db.Collection(models.Lesson{}.CollectionName()), filter, q)
}

// Steps returns steps matching an arbitrary engine-side filter
func Steps(ctx context.Context, db *mongo.Database, filter bson.M, q QueryOptions) ([]models.Step, error) {
	return findAll[models.Step](ctx, db.Collection(models.Step{}.CollectionName()), filter, q)
}

// LessonsForModule returns the lessons owned by a module
func LessonsForModule(ctx context.Context, db *mongo.Database, moduleID primitive.ObjectID, q QueryOptions) ([]models.Lesson, error) {
	return findAll[models.Lesson](ctx, db.Collection(models.Lesson{}.CollectionName()),
		bson.M{"module_id": moduleID}, q)
}

// StepsForLesson returns the steps owned by a lesson
func StepsForLesson(ctx context.Context, db *mongo.Database, lessonID primitive.ObjectID, q QueryOptions) ([]models.Step, error) {
	return findAll[models.Step](ctx, db.Collection(models.Step{}.CollectionName()),
		bson.M{"lesson_id": lessonID}, q)
}

// StepsForModule walks the catalog tree one level deeper: lessons of the
// module, then steps with lesson_id IN those lessons.
func StepsForModule(ctx context.Context, db *mongo.Database, moduleID primitive.ObjectID, q QueryOptions) ([]models.Step, error) {
	lessons, err := LessonsForModule(ctx, db, moduleID, QueryOptions{Projection: bson.M{"_id": 1}})
	if err != nil {
		return nil, err
	}
	lessonIDs := make([]primitive.ObjectID, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	return findAll[models.Step](ctx, db.Collection(models.Step{}.CollectionName()),
		bson.M{"lesson_id": bson.M{"$in": lessonIDs}}, q)
}

// CountExact returns an exact filtered count (countDocuments)
func CountExact(ctx context.Context, db *mongo.Database, collection string, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// CountEstimate returns the fast metadata-based approximation
// (estimatedDocumentCount); no filter is possible.
func CountEstimate(ctx context.Context, db *mongo.Database, collection string) (int64, error) {
	n, err := db.Collection(collection).EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("estimate count %s: %w", collection, err)
	}
	return n, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, q QueryOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := coll.Find(ctx, filter, q.findOptions())
	if err != nil {
		return nil, fmt.Errorf("find on %s: %w", coll.Name(), err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode from %s: %w", coll.Name(), err)
	}
	return out, nil
}
