package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Array update operations on a single document, keyed by _id. Each call is
// one atomic single-document write.

// UpdateResult reports matched/modified counts for the demo banners
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

func wrapUpdate(coll *mongo.Collection, res *mongo.UpdateResult, err error) (UpdateResult, error) {
	if err != nil {
		return UpdateResult{}, fmt.Errorf("array update on %s: %w", coll.Name(), err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// PushValue appends a value to an array field ($push)
func PushValue(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, value interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id, bson.M{"$push": bson.M{field: value}})
	return wrapUpdate(coll, res, err)
}

// AddToSet adds values without duplicating existing ones ($addToSet + $each)
func AddToSet(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, values ...interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id,
		bson.M{"$addToSet": bson.M{field: bson.M{"$each": values}}})
	return wrapUpdate(coll, res, err)
}

// PushAtPosition inserts values at an index ($push + $each + $position)
func PushAtPosition(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, position int, values ...interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id,
		bson.M{"$push": bson.M{field: bson.M{"$each": values, "$position": position}}})
	return wrapUpdate(coll, res, err)
}

// SetByIndex overwrites the element at a position ($set on "field.N")
func SetByIndex(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, index int, value interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id,
		bson.M{"$set": bson.M{fmt.Sprintf("%s.%d", field, index): value}})
	return wrapUpdate(coll, res, err)
}

// SetByValue replaces matching elements via arrayFilters
func SetByValue(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, oldValue, newValue interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id,
		bson.M{"$set": bson.M{field + ".$[elem]": newValue}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"elem": oldValue}},
		}))
	return wrapUpdate(coll, res, err)
}

// Pull removes all elements equal to value ($pull)
func Pull(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, value interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id, bson.M{"$pull": bson.M{field: value}})
	return wrapUpdate(coll, res, err)
}

// PullAll removes every listed value ($pullAll)
func PullAll(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, values ...interface{}) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id, bson.M{"$pullAll": bson.M{field: values}})
	return wrapUpdate(coll, res, err)
}

// PopLast removes the last element ($pop: 1)
func PopLast(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id, bson.M{"$pop": bson.M{field: 1}})
	return wrapUpdate(coll, res, err)
}

// PopFirst removes the first element ($pop: -1)
func PopFirst(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string) (UpdateResult, error) {
	res, err := coll.UpdateByID(ctx, id, bson.M{"$pop": bson.M{field: -1}})
	return wrapUpdate(coll, res, err)
}

// RemoveAtIndex deletes a mid-array element: $unset leaves a null hole at the
// position, the follow-up $pull of null compacts the array. Two writes.
func RemoveAtIndex(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field string, index int) (UpdateResult, error) {
	if _, err := coll.UpdateByID(ctx, id,
		bson.M{"$unset": bson.M{fmt.Sprintf("%s.%d", field, index): 1}}); err != nil {
		return UpdateResult{}, fmt.Errorf("unset %s.%d on %s: %w", field, index, coll.Name(), err)
	}
	res, err := coll.UpdateByID(ctx, id, bson.M{"$pull": bson.M{field: nil}})
	return wrapUpdate(coll, res, err)
}
