package store

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/lp-docdb/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReplaceDimension replaces the whole dimension document matched by its
// unique key. Fields absent from replacement are removed; _id is preserved by
// the engine. Use targeted $set updates when existing fields must survive.
func ReplaceDimension(ctx context.Context, db *mongo.Database, dimensionKey string, replacement models.PreferenceDimension) (UpdateResult, error) {
	if err := models.Validate(replacement); err != nil {
		return UpdateResult{}, fmt.Errorf("invalid dimension replacement: %w", err)
	}
	coll := db.Collection(replacement.CollectionName())
	res, err := coll.ReplaceOne(ctx, bson.M{"dimension_key": dimensionKey}, replacement)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("replace dimension %q: %w", dimensionKey, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// UpdatePreferenceFields applies a targeted $set to the current
// (user, pref_key) record, refreshing updated_at.
func UpdatePreferenceFields(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, prefKey string, set bson.M, at time.Time) (UpdateResult, error) {
	coll := db.Collection(models.UserPreference{}.CollectionName())
	fields := bson.M{"updated_at": at.UTC()}
	for k, v := range set {
		fields[k] = v
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "pref_key": prefKey},
		bson.M{"$set": fields})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update preference %q: %w", prefKey, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// UpsertMaintenanceMarker writes a synthetic marker event if an equivalent
// one is not already present ($set + $setOnInsert upsert).
func UpsertMaintenanceMarker(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, at time.Time) (*mongo.UpdateResult, error) {
	coll := db.Collection(models.UserPreferenceEvent{}.CollectionName())
	res, err := coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "pref_key": "maintenance_marker", "performed_at": bson.M{"$gte": at.UTC()}},
		bson.M{
			"$set": bson.M{
				"metadata":     bson.M{"channel": "web", "campaign": "spring"},
				"source":       models.SourceImport,
				"confidence":   1.0,
				"event_type":   "migrate",
				"new_value":    "noop",
				"performed_at": at.UTC(),
			},
			"$setOnInsert": bson.M{"old_value": nil},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("upsert maintenance marker: %w", err)
	}
	return res, nil
}
