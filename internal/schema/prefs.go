package schema

import (
	"go.mongodb.org/mongo-driver/bson"
)

// SnakeKeyPattern constrains dimension, option, and preference keys.
const SnakeKeyPattern = `^[a-z0-9_]+$`

// scalarOrStringArray is the allowed shape of preference values: a scalar or
// an array of strings.
func scalarOrStringArray(nullable bool) bson.M {
	variants := bson.A{
		bson.M{"bsonType": bson.A{"string", "int", "long", "double", "bool"}},
		bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
	}
	if nullable {
		variants = append(variants, bson.M{"bsonType": "null"})
	}
	return bson.M{"oneOf": variants}
}

// PrefsCollections returns the collection specs for the user-preference
// schema: user identity, the dimension/option catalog, current preference
// records, and the append-only event log.
func PrefsCollections() []CollectionSpec {
	sourceEnum := bson.A{"manual", "import", "inferred", "default"}

	return []CollectionSpec{
		{
			Name: "user",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"email", "created_at"},
				"properties": bson.M{
					"email":                 bson.M{"bsonType": "string", "pattern": EmailPattern},
					"created_at":            bson.M{"bsonType": "date"},
					"display_name":          bson.M{"bsonType": "string"},
					"favorite_cuisines":     bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
					"notification_channels": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
				"additionalProperties": true,
			},
			Indexes: []IndexSpec{
				{Name: "ux_user_email", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true},
			},
		},
		{
			Name: "preference_dimension",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"name", "dimension_key"},
				"properties": bson.M{
					"name":          bson.M{"bsonType": "string", "maxLength": 80},
					"dimension_key": bson.M{"bsonType": "string", "pattern": SnakeKeyPattern},
					"description":   bson.M{"bsonType": "string"},
					"created_at":    bson.M{"bsonType": "date"},
				},
			},
			Indexes: []IndexSpec{
				{Name: "ux_dimension_key", Keys: bson.D{{Key: "dimension_key", Value: 1}}, Unique: true},
			},
		},
		{
			Name: "preference_option",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"dimension_id", "option_key", "label"},
				"properties": bson.M{
					"dimension_id": bson.M{"bsonType": "objectId"},
					"option_key":   bson.M{"bsonType": "string", "pattern": SnakeKeyPattern},
					"label":        bson.M{"bsonType": "string", "maxLength": 80},
					"description":  bson.M{"bsonType": "string"},
					"created_at":   bson.M{"bsonType": "date"},
				},
			},
			Indexes: []IndexSpec{
				{Name: "ux_option_dim_key", Keys: bson.D{{Key: "dimension_id", Value: 1}, {Key: "option_key", Value: 1}}, Unique: true},
				{Name: "ix_option_dim", Keys: bson.D{{Key: "dimension_id", Value: 1}}},
			},
		},
		{
			Name: "user_preferences",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"user_id", "pref_key", "value", "source", "confidence", "updated_at"},
				"properties": bson.M{
					"user_id":    bson.M{"bsonType": "objectId"},
					"pref_key":   bson.M{"bsonType": "string", "pattern": SnakeKeyPattern},
					"value":      scalarOrStringArray(false),
					"source":     bson.M{"enum": sourceEnum},
					"confidence": bson.M{"bsonType": bson.A{"double", "decimal"}, "minimum": 0, "maximum": 1},
					"updated_at": bson.M{"bsonType": "date"},
				},
			},
			Indexes: []IndexSpec{
				{Name: "ux_user_pref_key", Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pref_key", Value: 1}}, Unique: true},
				{Name: "ix_userpref_user", Keys: bson.D{{Key: "user_id", Value: 1}}},
				{Name: "ix_userpref_key", Keys: bson.D{{Key: "pref_key", Value: 1}}},
			},
		},
		{
			Name: "user_preference_events",
			Validator: bson.M{
				"bsonType": "object",
				"required": bson.A{"user_id", "pref_key", "new_value", "source", "confidence", "performed_at"},
				"properties": bson.M{
					"user_id":      bson.M{"bsonType": "objectId"},
					"pref_key":     bson.M{"bsonType": "string", "pattern": SnakeKeyPattern},
					"old_value":    scalarOrStringArray(true),
					"new_value":    scalarOrStringArray(false),
					"source":       bson.M{"enum": sourceEnum},
					"confidence":   bson.M{"bsonType": bson.A{"double", "decimal"}, "minimum": 0, "maximum": 1},
					"performed_at": bson.M{"bsonType": "date"},
					"event_type":   bson.M{"bsonType": "string", "description": "e.g., set|unset|migrate"},
					"tags":         bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				},
			},
			Indexes: []IndexSpec{
				{Name: "ix_events_user_key_time", Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pref_key", Value: 1}, {Key: "performed_at", Value: -1}}},
				{Name: "ix_events_key_time", Keys: bson.D{{Key: "pref_key", Value: 1}, {Key: "performed_at", Value: -1}}},
				{Name: "ix_events_user", Keys: bson.D{{Key: "user_id", Value: 1}}},
			},
		},
	}
}
