package schema

import (
	"go.mongodb.org/mongo-driver/bson"
)

// EmailPattern is the store-side email shape shared by both schemas.
const EmailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

// HTTPURLPattern constrains step and resource links.
const HTTPURLPattern = `^https?://`

// LearningCollections returns the collection specs for the learning-platform
// schema: catalog tree, person identity, status vocabulary, and the three
// progress fact collections.
func LearningCollections() []CollectionSpec {
	return []CollectionSpec{
		{
			Name: "person",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"email", "password_hash", "created_at"},
				"properties": bson.M{
					"email":         bson.M{"bsonType": "string", "pattern": EmailPattern, "description": "Valid email string."},
					"password_hash": bson.M{"bsonType": "string", "description": "Required password hash string."},
					"created_at":    bson.M{"bsonType": "date", "description": "Creation timestamp."},
					"name":          bson.M{"bsonType": "string", "description": "Optional display name."},
				},
				"additionalProperties": true,
			},
			Indexes: []IndexSpec{
				{Name: "uniq_email", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true},
			},
		},
		{
			Name: "module",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"name"},
				"properties": bson.M{
					"name":        bson.M{"bsonType": "string", "maxLength": 50, "description": "Module name (<=50 chars)."},
					"description": bson.M{"bsonType": "string", "description": "Optional description."},
					"tags":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
				"additionalProperties": true,
			},
			Indexes: []IndexSpec{
				{Name: "uniq_module_name", Keys: bson.D{{Key: "name", Value: 1}}, Unique: true},
			},
		},
		{
			Name: "lesson",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"module_id", "name"},
				"properties": bson.M{
					"module_id":   bson.M{"bsonType": "objectId", "description": "Ref to module._id"},
					"name":        bson.M{"bsonType": "string", "maxLength": 60, "description": "Lesson name (<=60 chars)."},
					"description": bson.M{"bsonType": "string", "description": "Optional description."},
					"tags":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
				"additionalProperties": true,
			},
			Indexes: []IndexSpec{
				{Name: "idx_lesson_module_id", Keys: bson.D{{Key: "module_id", Value: 1}}},
				{Name: "uniq_lesson_module_name", Keys: bson.D{{Key: "module_id", Value: 1}, {Key: "name", Value: 1}}, Unique: true},
				{Name: "idx_lesson_name", Keys: bson.D{{Key: "name", Value: 1}}},
			},
		},
		{
			Name: "step",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"lesson_id", "name"},
				"properties": bson.M{
					"lesson_id":   bson.M{"bsonType": "objectId", "description": "Ref to lesson._id"},
					"name":        bson.M{"bsonType": "string", "maxLength": 60, "description": "Step name (<=60 chars)."},
					"url":         bson.M{"bsonType": "string", "pattern": HTTPURLPattern, "description": "Optional URL."},
					"notes":       bson.M{"bsonType": "string", "description": "Optional notes."},
					"tags":        bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
					"order_index": bson.M{"bsonType": "int", "minimum": 0},
				},
				"additionalProperties": true,
			},
			Indexes: []IndexSpec{
				{Name: "idx_step_lesson_id", Keys: bson.D{{Key: "lesson_id", Value: 1}}},
				{Name: "uniq_step_lesson_name", Keys: bson.D{{Key: "lesson_id", Value: 1}, {Key: "name", Value: 1}}, Unique: true},
			},
		},
		{
			Name: "status",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"name"},
				"properties": bson.M{
					"name": bson.M{"bsonType": "string", "enum": bson.A{"available", "in_progress", "completed"}},
				},
				"additionalProperties": false,
			},
			Indexes: []IndexSpec{
				{Name: "uniq_status_name", Keys: bson.D{{Key: "name", Value: 1}}, Unique: true},
			},
		},
		{
			Name:      "person_module_progress",
			Validator: progressValidator("module_id"),
			Indexes: []IndexSpec{
				{Name: "uniq_person_module", Keys: bson.D{{Key: "person_id", Value: 1}, {Key: "module_id", Value: 1}}, Unique: true},
				{Name: "idx_pmp_person", Keys: bson.D{{Key: "person_id", Value: 1}}},
				{Name: "idx_pmp_module", Keys: bson.D{{Key: "module_id", Value: 1}}},
				{Name: "idx_pmp_status", Keys: bson.D{{Key: "status_id", Value: 1}}},
			},
		},
		{
			Name:      "person_lesson_progress",
			Validator: progressValidator("lesson_id"),
			Indexes: []IndexSpec{
				{Name: "uniq_person_lesson", Keys: bson.D{{Key: "person_id", Value: 1}, {Key: "lesson_id", Value: 1}}, Unique: true},
				{Name: "idx_plp_person", Keys: bson.D{{Key: "person_id", Value: 1}}},
				{Name: "idx_plp_lesson", Keys: bson.D{{Key: "lesson_id", Value: 1}}},
				{Name: "idx_plp_status", Keys: bson.D{{Key: "status_id", Value: 1}}},
			},
		},
		{
			Name:      "person_step_progress",
			Validator: progressValidator("step_id"),
			Indexes: []IndexSpec{
				{Name: "uniq_person_step", Keys: bson.D{{Key: "person_id", Value: 1}, {Key: "step_id", Value: 1}}, Unique: true},
				{Name: "idx_psp_person", Keys: bson.D{{Key: "person_id", Value: 1}}},
				{Name: "idx_psp_step", Keys: bson.D{{Key: "step_id", Value: 1}}},
				{Name: "idx_psp_status", Keys: bson.D{{Key: "status_id", Value: 1}}},
				// Compound index for window functions over time per person
				{Name: "idx_psp_person_updated_at", Keys: bson.D{{Key: "person_id", Value: 1}, {Key: "updated_at", Value: 1}}},
			},
		},
	}
}

// progressValidator builds the shared shape of the three progress fact
// collections, parameterized on the catalog reference field.
func progressValidator(targetField string) bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"person_id", targetField, "status_id", "updated_at"},
		"properties": bson.M{
			"person_id":  bson.M{"bsonType": "objectId"},
			targetField:  bson.M{"bsonType": "objectId"},
			"status_id":  bson.M{"bsonType": "objectId"},
			"updated_at": bson.M{"bsonType": "date"},
		},
		"additionalProperties": true,
	}
}
