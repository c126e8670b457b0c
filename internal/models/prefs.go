package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preference value sources
const (
	SourceManual   = "manual"
	SourceImport   = "import"
	SourceInferred = "inferred"
	SourceDefault  = "default"
)

// User represents a subscriber identity in the preference schema
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email                string             `bson:"email" json:"email" validate:"required,email"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	DisplayName          string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	FavoriteCuisines     []string           `bson:"favorite_cuisines,omitempty" json:"favorite_cuisines,omitempty"`
	NotificationChannels []string           `bson:"notification_channels,omitempty" json:"notification_channels,omitempty"`
}

// PreferenceDimension is a typed preference axis (catalog)
type PreferenceDimension struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DimensionKey string             `bson:"dimension_key" json:"dimension_key" validate:"required,snakekey"`
	Name         string             `bson:"name" json:"name" validate:"required,max=80"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt    time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// PreferenceOption is an allowed value of a dimension, unique per (dimension_id, option_key)
type PreferenceOption struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DimensionID primitive.ObjectID `bson:"dimension_id" json:"dimension_id" validate:"required"`
	OptionKey   string             `bson:"option_key" json:"option_key" validate:"required,snakekey"`
	Label       string             `bson:"label" json:"label" validate:"required,max=80"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// UserPreference is the single current value per (user_id, pref_key).
// Overwritten in place on change; the event log keeps the history.
type UserPreference struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id" validate:"required"`
	PrefKey    string             `bson:"pref_key" json:"pref_key" validate:"required,snakekey"`
	Value      interface{}        `bson:"value" json:"value" validate:"required"`
	Source     string             `bson:"source" json:"source" validate:"required,oneof=manual import inferred default"`
	Confidence float64            `bson:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserPreferenceEvent is an append-only audit record of a value transition.
// Never updated or deleted; ordered by performed_at.
type UserPreferenceEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id" validate:"required"`
	PrefKey     string             `bson:"pref_key" json:"pref_key" validate:"required,snakekey"`
	OldValue    interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue    interface{}        `bson:"new_value" json:"new_value" validate:"required"`
	Source      string             `bson:"source" json:"source" validate:"required,oneof=manual import inferred default"`
	Confidence  float64            `bson:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	PerformedAt time.Time          `bson:"performed_at" json:"performed_at"`
	EventType   string             `bson:"event_type,omitempty" json:"event_type,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
}

// CollectionName returns the collection name for User
func (User) CollectionName() string { return "user" }

// CollectionName returns the collection name for PreferenceDimension
func (PreferenceDimension) CollectionName() string { return "preference_dimension" }

// CollectionName returns the collection name for PreferenceOption
func (PreferenceOption) CollectionName() string { return "preference_option" }

// CollectionName returns the collection name for UserPreference
func (UserPreference) CollectionName() string { return "user_preferences" }

// CollectionName returns the collection name for UserPreferenceEvent
func (UserPreferenceEvent) CollectionName() string { return "user_preference_events" }
