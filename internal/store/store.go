// store.go
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

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/lp-docdb/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Callers must handle it; no read path dereferences a missing document.
var ErrNotFound = errors.New("not found")

// idOnly decodes just the _id of a matched document
type idOnly struct {
	ID primitive.ObjectID `bson:"_id"`
}

// GetOrCreate looks up by uniqueFilter; if found, returns the existing id
// unchanged; if absent, inserts doc and returns the new id. Idempotent:
// re-running seeding never creates duplicates or perturbs existing ids.
// Concurrent callers are backstopped by the collection's unique index, not by
// application-level locking.
func GetOrCreate(ctx context.Context, coll *mongo.Collection, uniqueFilter bson.M, doc interface{}) (primitive.ObjectID, error) {
	res, err := coll.UpdateOne(ctx, uniqueFilter,
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("get-or-create upsert on %s: %w", coll.Name(), err)
	}

	if res.UpsertedID != nil {
		if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
			return id, nil
		}
		return primitive.NilObjectID, fmt.Errorf("get-or-create on %s: unexpected upserted id type %T", coll.Name(), res.UpsertedID)
	}

	var existing idOnly
	if err := coll.FindOne(ctx, uniqueFilter, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, ErrNotFound
		}
		return primitive.NilObjectID, fmt.Errorf("get-or-create lookup on %s: %w", coll.Name(), err)
	}
	return existing.ID, nil
}

// PersonByEmail resolves a learner by unique email
func PersonByEmail(ctx context.Context, db *mongo.Database, email string) (models.Person, error) {
	var p models.Person
	err := db.Collection(p.CollectionName()).FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Person{}, fmt.Errorf("person %q: %w", email, ErrNotFound)
	}
	return p, err
}

// ModuleByName resolves a module by unique name
func ModuleByName(ctx context.Context, db *mongo.Database, name string) (models.Module, error) {
	var m models.Module
	err := db.Collection(m.CollectionName()).FindOne(ctx, bson.M{"name": name}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Module{}, fmt.Errorf("module %q: %w", name, ErrNotFound)
	}
	return m, err
}

// LessonByName resolves a lesson by its (module_id, name) pair
func LessonByName(ctx context.Context, db *mongo.Database, moduleID primitive.ObjectID, name string) (models.Lesson, error) {
	var l models.Lesson
	err := db.Collection(l.CollectionName()).FindOne(ctx, bson.M{"module_id": moduleID, "name": name}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Lesson{}, fmt.Errorf("lesson %q: %w", name, ErrNotFound)
	}
	return l, err
}

// StepByName resolves a step by its (lesson_id, name) pair
func StepByName(ctx context.Context, db *mongo.Database, lessonID primitive.ObjectID, name string) (models.Step, error) {
	var s models.Step
	err := db.Collection(s.CollectionName()).FindOne(ctx, bson.M{"lesson_id": lessonID, "name": name}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Step{}, fmt.Errorf("step %q: %w", name, ErrNotFound)
	}
	return s, err
}

// StatusByName resolves one of the canonical status documents
func StatusByName(ctx context.Context, db *mongo.Database, name string) (models.Status, error) {
	var s models.Status
	err := db.Collection(s.CollectionName()).FindOne(ctx, bson.M{"name": name}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Status{}, fmt.Errorf("status %q: %w", name, ErrNotFound)
	}
	return s, err
}

// StatusIDs maps the requested status names to their ids
func StatusIDs(ctx context.Context, db *mongo.Database, names ...string) ([]primitive.ObjectID, error) {
	cur, err := db.Collection(models.Status{}.CollectionName()).Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	var statuses []models.Status
	if err := cur.All(ctx, &statuses); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(statuses))
	for _, s := range statuses {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// UpsertModuleProgress writes the current module status for a person.
// Last-write-wins: an existing (person, module) record is overwritten.
func UpsertModuleProgress(ctx context.Context, db *mongo.Database, personID, moduleID, statusID primitive.ObjectID, at time.Time) error {
	return upsertProgress(ctx, db.Collection(models.PersonModuleProgress{}.CollectionName()),
		bson.M{"person_id": personID, "module_id": moduleID}, statusID, at)
}

// UpsertLessonProgress writes the current lesson status for a person
func UpsertLessonProgress(ctx context.Context, db *mongo.Database, personID, lessonID, statusID primitive.ObjectID, at time.Time) error {
	return upsertProgress(ctx, db.Collection(models.PersonLessonProgress{}.CollectionName()),
		bson.M{"person_id": personID, "lesson_id": lessonID}, statusID, at)
}

// UpsertStepProgress writes the current step status for a person
func UpsertStepProgress(ctx context.Context, db *mongo.Database, personID, stepID, statusID primitive.ObjectID, at time.Time) error {
	return upsertProgress(ctx, db.Collection(models.PersonStepProgress{}.CollectionName()),
		bson.M{"person_id": personID, "step_id": stepID}, statusID, at)
}

func upsertProgress(ctx context.Context, coll *mongo.Collection, key bson.M, statusID primitive.ObjectID, at time.Time) error {
	_, err := coll.UpdateOne(ctx, key,
		bson.M{"$set": bson.M{"status_id": statusID, "updated_at": at.UTC()}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert progress on %s: %w", coll.Name(), err)
	}
	return nil
}

// UserByEmail resolves a subscriber by unique email
func UserByEmail(ctx context.Context, db *mongo.Database, email string) (models.User, error) {
	var u models.User
	err := db.Collection(u.CollectionName()).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	return u, err
}

// DimensionByKey resolves a preference dimension by its unique key
func DimensionByKey(ctx context.Context, db *mongo.Database, key string) (models.PreferenceDimension, error) {
	var d models.PreferenceDimension
	err := db.Collection(d.CollectionName()).FindOne(ctx, bson.M{"dimension_key": key}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PreferenceDimension{}, fmt.Errorf("preference dimension %q: %w", key, ErrNotFound)
	}
	return d, err
}

// CurrentPreference returns the single current value for (user, pref_key)
func CurrentPreference(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, prefKey string) (models.UserPreference, error) {
	var p models.UserPreference
	err := db.Collection(p.CollectionName()).FindOne(ctx, bson.M{"user_id": userID, "pref_key": prefKey}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.UserPreference{}, fmt.Errorf("preference %q: %w", prefKey, ErrNotFound)
	}
	return p, err
}

// PreferencesForUser returns all current values held by a user, sorted by key
func PreferencesForUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]models.UserPreference, error) {
	return findAll[models.UserPreference](ctx,
		db.Collection(models.UserPreference{}.CollectionName()),
		bson.M{"user_id": userID},
		QueryOptions{Sort: bson.D{{Key: "pref_key", Value: 1}}})
}

// SetPreference overwrites the current (user, pref_key) value in place and
// appends a transition event carrying the pre-overwrite value. The two writes
// are separate single-document operations: the engine guarantees each is
// atomic, not the pair. Overwrite happens first, then the event append.
func SetPreference(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, prefKey string, value interface{}, source string, confidence float64, at time.Time) error {
	record := models.UserPreference{
		UserID:     userID,
		PrefKey:    prefKey,
		Value:      value,
		Source:     source,
		Confidence: confidence,
		UpdatedAt:  at.UTC(),
	}
	if err := models.Validate(record); err != nil {
		return fmt.Errorf("invalid preference record: %w", err)
	}

	var oldValue interface{}
	current, err := CurrentPreference(ctx, db, userID, prefKey)
	switch {
	case err == nil:
		oldValue = current.Value
	case errors.Is(err, ErrNotFound):
		oldValue = nil
	default:
		return err
	}

	_, err = db.Collection(record.CollectionName()).UpdateOne(ctx,
		bson.M{"user_id": userID, "pref_key": prefKey},
		bson.M{"$set": bson.M{
			"value":      value,
			"source":     source,
			"confidence": confidence,
			"updated_at": at.UTC(),
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert preference %q: %w", prefKey, err)
	}

	return AppendPreferenceEvent(ctx, db, models.UserPreferenceEvent{
		UserID:      userID,
		PrefKey:     prefKey,
		OldValue:    oldValue,
		NewValue:    value,
		Source:      source,
		Confidence:  confidence,
		PerformedAt: at.UTC(),
		EventType:   "set",
	})
}

// AppendPreferenceEvent appends to the immutable transition log
func AppendPreferenceEvent(ctx context.Context, db *mongo.Database, ev models.UserPreferenceEvent) error {
	if err := models.Validate(ev); err != nil {
		return fmt.Errorf("invalid preference event: %w", err)
	}
	if _, err := db.Collection(ev.CollectionName()).InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("append preference event %q: %w", ev.PrefKey, err)
	}
	return nil
}

// PreferenceHistory returns the most recent transitions for (user, pref_key),
// newest first.
func PreferenceHistory(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, prefKey string, limit int64) ([]models.UserPreferenceEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "performed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := db.Collection(models.UserPreferenceEvent{}.CollectionName()).
		Find(ctx, bson.M{"user_id": userID, "pref_key": prefKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("preference history %q: %w", prefKey, err)
	}
	var events []models.UserPreferenceEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
