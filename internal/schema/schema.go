// schema.go
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

package schema

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec declares one named index
type IndexSpec struct {
	Name   string
	Keys   bson.D
	Unique bool
}

// CollectionSpec declares a collection shape: a $jsonSchema validator plus its indexes
type CollectionSpec struct {
	Name            string
	Validator       bson.M
	ValidationLevel string
	Indexes         []IndexSpec
}

// EnsureCollection creates the collection with its validator if absent, or
// updates the validator in place via collMod if present. A collMod conflict
// with existing documents is logged as a warning, not returned.
func EnsureCollection(ctx context.Context, db *mongo.Database, spec CollectionSpec) error {
	level := spec.ValidationLevel
	if level == "" {
		level = "moderate"
	}

	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: spec.Name}})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(names) == 0 {
		opts := options.CreateCollection().
			SetValidator(bson.M{"$jsonSchema": spec.Validator}).
			SetValidationLevel(level).
			SetValidationAction("error")
		if err := db.CreateCollection(ctx, spec.Name, opts); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", spec.Name, err)
		}
		log.Printf("[CREATE] collection '%s' created with validator", spec.Name)
		return nil
	}

	cmd := bson.D{
		{Key: "collMod", Value: spec.Name},
		{Key: "validator", Value: bson.M{"$jsonSchema": spec.Validator}},
		{Key: "validationLevel", Value: level},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		// Existing non-conforming documents make collMod fail; setup proceeds.
		log.Printf("[WARN] collMod failed for '%s': %v", spec.Name, err)
		return nil
	}
	log.Printf("[UPDATE] collection '%s' validator updated", spec.Name)
	return nil
}

// EnsureIndexes creates the declared indexes. Creating an already-existing
// equivalent index is a no-op on the engine side.
func EnsureIndexes(ctx context.Context, db *mongo.Database, spec CollectionSpec) error {
	if len(spec.Indexes) == 0 {
		return nil
	}

	indexModels := make([]mongo.IndexModel, 0, len(spec.Indexes))
	for _, ix := range spec.Indexes {
		opts := options.Index().SetName(ix.Name)
		if ix.Unique {
			opts.SetUnique(true)
		}
		indexModels = append(indexModels, mongo.IndexModel{Keys: ix.Keys, Options: opts})
	}

	if _, err := db.Collection(spec.Name).Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes for %s: %w", spec.Name, err)
	}
	log.Printf("[OK] %d index(es) ensured on '%s'", len(spec.Indexes), spec.Name)
	return nil
}

// EnsureAll applies every spec best-effort: a failing collection or index set
// is logged and the remaining specs are still applied.
func EnsureAll(ctx context.Context, db *mongo.Database, specs []CollectionSpec) error {
	var errs []error
	for _, spec := range specs {
		if err := EnsureCollection(ctx, db, spec); err != nil {
			log.Printf("[WARN] ensure collection '%s': %v", spec.Name, err)
			errs = append(errs, err)
			continue
		}
		if err := EnsureIndexes(ctx, db, spec); err != nil {
			log.Printf("[WARN] ensure indexes '%s': %v", spec.Name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
