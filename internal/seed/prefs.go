package seed

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

// prefsEpoch anchors seeded preference timestamps. Event documents are keyed
// by (user_id, pref_key, performed_at), so a moving clock would duplicate the
// append-only log on every rerun.
var prefsEpoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

type userSeed struct {
	Email, DisplayName   string
	FavoriteCuisines     []string
	NotificationChannels []string
}

type dimensionSeed struct {
	Key, Name, Description string
	Tags                   []string
	Options                []optionSeed
}

type optionSeed struct {
	Key, Label string
}

type prefSeed struct {
	Email, Key string
	Value      interface{}
	Source     string
	Confidence float64
	DaysAgo    int
}

type eventSeed struct {
	Email, Key string
	OldValue   interface{}
	NewValue   interface{}
	Source     string
	Confidence float64
	DaysAgo    int
}

// PrefsUsers seeds eight deterministic subscribers. Alice carries array
// fields sized for the positional and pull demos.
var PrefsUsers = []userSeed{
	{Email: "alice@example.com", DisplayName: "Alice",
		FavoriteCuisines:     []string{"italian", "mexican"},
		NotificationChannels: []string{"email", "sms", "whatsapp"}},
	{Email: "bob@example.com", DisplayName: "Bob"},
	{Email: "carol@example.com", DisplayName: "Carol"},
	{Email: "dave@example.com", DisplayName: "Dave"},
	{Email: "erin@example.com", DisplayName: "Erin"},
	{Email: "frank@example.com", DisplayName: "Frank"},
	{Email: "grace@example.com", DisplayName: "Grace"},
	{Email: "heidi@example.com", DisplayName: "Heidi"},
}

// PrefsDimensions is the preference catalog with its allowed options
var PrefsDimensions = []dimensionSeed{
	{Key: "theme", Name: "UI Theme", Description: "Rendering theme for the client.", Tags: []string{"ui"},
		Options: []optionSeed{{"light", "Light"}, {"dark", "Dark"}, {"system", "System"}}},
	{Key: "cuisine_favorite", Name: "Favorite Cuisines", Description: "Cuisines the user wants surfaced first.", Tags: []string{"food"},
		Options: []optionSeed{{"italian", "Italian"}, {"mexican", "Mexican"}, {"indian", "Indian"}, {"georgian", "Georgian"}, {"japanese", "Japanese"}}},
	{Key: "spice_level", Name: "Spice Level", Description: "Heat tolerance for recipe suggestions.", Tags: []string{"food"},
		Options: []optionSeed{{"mild", "Mild"}, {"medium", "Medium"}, {"hot", "Hot"}}},
	{Key: "notifications", Name: "Notification Mode", Description: "How chatty the platform is allowed to be.", Tags: []string{"messaging"},
		Options: []optionSeed{{"all", "All"}, {"important_only", "Important Only"}, {"none", "None"}}},
}

// prefsCurrent is the current value per (user, key)
var prefsCurrent = []prefSeed{
	{"alice@example.com", "theme", "dark", models.SourceManual, 0.95, 14},
	{"alice@example.com", "cuisine_favorite", []string{"italian", "georgian"}, models.SourceManual, 0.9, 10},
	{"alice@example.com", "spice_level", "medium", models.SourceInferred, 0.6, 8},
	{"alice@example.com", "notifications", "important_only", models.SourceManual, 0.95, 4},
	{"bob@example.com", "theme", "light", models.SourceDefault, 0.5, 30},
	{"bob@example.com", "spice_level", "hot", models.SourceManual, 0.9, 21},
	{"carol@example.com", "theme", "system", models.SourceManual, 0.95, 2},
	{"carol@example.com", "cuisine_favorite", []string{"japanese"}, models.SourceImport, 0.8, 16},
	{"dave@example.com", "notifications", "none", models.SourceManual, 0.95, 11},
	{"dave@example.com", "spice_level", "mild", models.SourceInferred, 0.55, 18},
	{"erin@example.com", "theme", "light", models.SourceManual, 0.95, 6},
	{"erin@example.com", "cuisine_favorite", []string{"italian"}, models.SourceManual, 0.95, 5},
	{"frank@example.com", "spice_level", "medium", models.SourceInferred, 0.6, 9},
	{"frank@example.com", "cuisine_favorite", []string{"mexican", "indian"}, models.SourceManual, 0.9, 2},
	{"grace@example.com", "theme", "dark", models.SourceManual, 0.95, 3},
	{"grace@example.com", "notifications", "important_only", models.SourceManual, 0.95, 1},
	{"heidi@example.com", "spice_level", "mild", models.SourceInferred, 0.55, 12},
	{"heidi@example.com", "cuisine_favorite", []string{"italian", "georgian"}, models.SourceManual, 0.9, 7},
}

// prefsHistory holds transitions that predate the current values, so the
// timeline queries have something to walk.
var prefsHistory = []eventSeed{
	{"alice@example.com", "theme", nil, "light", models.SourceDefault, 0.5, 30},
	{"alice@example.com", "cuisine_favorite", nil, []string{"italian"}, models.SourceImport, 0.8, 22},
	{"bob@example.com", "spice_level", nil, "medium", models.SourceManual, 0.8, 28},
	{"carol@example.com", "cuisine_favorite", nil, []string{"italian"}, models.SourceImport, 0.8, 20},
	{"dave@example.com", "notifications", nil, "all", models.SourceDefault, 0.5, 25},
}

func nowMinusDays(days int) time.Time {
	return prefsEpoch.AddDate(0, 0, -days)
}

// Prefs seeds the user-preference schema idempotently. Events are written
// with a natural-key upsert instead of a bare append so reruns do not grow
// the log.
func Prefs(ctx context.Context, db *mongo.Database) error {
	userIDs := make(map[string]primitive.ObjectID, len(PrefsUsers))
	for _, u := range PrefsUsers {
		doc := models.User{
			Email:                u.Email,
			CreatedAt:            prefsEpoch,
			DisplayName:          u.DisplayName,
			FavoriteCuisines:     u.FavoriteCuisines,
			NotificationChannels: u.NotificationChannels,
		}
		if err := models.Validate(doc); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		id, err := store.GetOrCreate(ctx, db.Collection(doc.CollectionName()), bson.M{"email": u.Email}, doc)
		if err != nil {
			return err
		}
		userIDs[u.Email] = id
	}

	for _, d := range PrefsDimensions {
		dim := models.PreferenceDimension{
			DimensionKey: d.Key,
			Name:         d.Name,
			Description:  d.Description,
			Tags:         d.Tags,
			CreatedAt:    prefsEpoch,
		}
		if err := models.Validate(dim); err != nil {
			return fmt.Errorf("seed dimension %s: %w", d.Key, err)
		}
		dimID, err := store.GetOrCreate(ctx, db.Collection(dim.CollectionName()), bson.M{"dimension_key": d.Key}, dim)
		if err != nil {
			return err
		}
		for _, o := range d.Options {
			opt := models.PreferenceOption{
				DimensionID: dimID,
				OptionKey:   o.Key,
				Label:       o.Label,
				CreatedAt:   prefsEpoch,
			}
			if err := models.Validate(opt); err != nil {
				return fmt.Errorf("seed option %s.%s: %w", d.Key, o.Key, err)
			}
			if _, err := store.GetOrCreate(ctx, db.Collection(opt.CollectionName()),
				bson.M{"dimension_id": dimID, "option_key": o.Key}, opt); err != nil {
				return err
			}
		}
	}

	for _, p := range prefsCurrent {
		pref := models.UserPreference{
			UserID:     userIDs[p.Email],
			PrefKey:    p.Key,
			Value:      p.Value,
			Source:     p.Source,
			Confidence: p.Confidence,
			UpdatedAt:  nowMinusDays(p.DaysAgo),
		}
		if err := models.Validate(pref); err != nil {
			return fmt.Errorf("seed preference %s/%s: %w", p.Email, p.Key, err)
		}
		if _, err := store.GetOrCreate(ctx, db.Collection(pref.CollectionName()),
			bson.M{"user_id": pref.UserID, "pref_key": p.Key}, pref); err != nil {
			return err
		}
	}

	if err := seedPrefEvents(ctx, db, userIDs); err != nil {
		return err
	}

	counts, err := PrefsCounts(ctx, db)
	if err != nil {
		return err
	}
	logCounts("prefs", counts)
	return nil
}

func seedPrefEvents(ctx context.Context, db *mongo.Database, userIDs map[string]primitive.ObjectID) error {
	events := make([]eventSeed, 0, len(prefsHistory)+len(prefsCurrent))
	events = append(events, prefsHistory...)
	for _, p := range prefsCurrent {
		events = append(events, eventSeed{
			Email: p.Email, Key: p.Key,
			OldValue: priorValue(p.Email, p.Key),
			NewValue: p.Value, Source: p.Source,
			Confidence: p.Confidence, DaysAgo: p.DaysAgo,
		})
	}

	coll := db.Collection(models.UserPreferenceEvent{}.CollectionName())
	for _, e := range events {
		ev := models.UserPreferenceEvent{
			UserID:      userIDs[e.Email],
			PrefKey:     e.Key,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			Source:      e.Source,
			Confidence:  e.Confidence,
			PerformedAt: nowMinusDays(e.DaysAgo),
			EventType:   "set",
		}
		if err := models.Validate(ev); err != nil {
			return fmt.Errorf("seed event %s/%s: %w", e.Email, e.Key, err)
		}
		_, err := store.GetOrCreate(ctx, coll,
			bson.M{"user_id": ev.UserID, "pref_key": ev.PrefKey, "performed_at": ev.PerformedAt}, ev)
		if err != nil {
			return err
		}
	}
	return nil
}

// priorValue resolves old_value for a current-value event from the seeded
// history of the same (user, key).
func priorValue(email, key string) interface{} {
	for _, h := range prefsHistory {
		if h.Email == email && h.Key == key {
			return h.NewValue
		}
	}
	return nil
}

// PrefsCounts returns exact per-collection document counts
func PrefsCounts(ctx context.Context, db *mongo.Database) (map[string]int64, error) {
	return collectionCounts(ctx, db,
		"user", "preference_dimension", "preference_option",
		"user_preferences", "user_preference_events")
}
