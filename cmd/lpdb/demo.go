package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// demoLearning walks the read-side query surface against the seeded catalog:
// basic finds, paging, counts, comparison and logical operators, and the
// regex queries with their winning plans.
func demoLearning(ctx context.Context, db *mongo.Database) error {
	log.Println("[DEMO] learning schema query demonstrations")

	// Find basics
	modules, err := store.Modules(ctx, db, bson.M{}, store.QueryOptions{
		Sort: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return err
	}
	log.Printf("[FIND] all modules, name ascending:")
	for _, m := range modules {
		log.Printf("  %s - %s", m.Name, m.Description)
	}

	module, err := store.ModuleByName(ctx, db, "Basic Phrases")
	if err != nil {
		return err
	}
	log.Printf("[FIND] one by name: %s (_id %s)", module.Name, module.ID.Hex())

	// Missing references are reported, never dereferenced
	if _, err := store.ModuleByName(ctx, db, "No Such Module"); errors.Is(err, store.ErrNotFound) {
		log.Printf("[FIND] missing module reported: %v", err)
	} else if err != nil {
		return err
	}

	// Pagination and counts
	q := store.Page(2, 2)
	q.Sort = bson.D{{Key: "name", Value: 1}}
	pageTwo, err := store.Modules(ctx, db, bson.M{}, q)
	if err != nil {
		return err
	}
	log.Printf("[PAGE] page 2 size 2:")
	for _, m := range pageTwo {
		log.Printf("  %s", m.Name)
	}

	moduleColl := models.Module{}.CollectionName()
	exact, err := store.CountExact(ctx, db, moduleColl, nil)
	if err != nil {
		return err
	}
	estimate, err := store.CountEstimate(ctx, db, moduleColl)
	if err != nil {
		return err
	}
	log.Printf("[COUNT] modules exact=%d estimate=%d", exact, estimate)

	// Comparison operators as engine-side filters over step ordering
	earlySteps, err := store.Steps(ctx, db, store.Lt("order_index", 3), store.QueryOptions{
		Sort:  bson.D{{Key: "name", Value: 1}},
		Limit: 5,
	})
	if err != nil {
		return err
	}
	log.Printf("[COMPARE] steps with order_index < 3 (first 5):")
	for _, s := range earlySteps {
		log.Printf("  %s (index %d)", s.Name, s.OrderIndex)
	}

	stepColl := models.Step{}.CollectionName()
	lateCount, err := store.CountExact(ctx, db, stepColl, store.Gte("order_index", 3))
	if err != nil {
		return err
	}
	log.Printf("[COMPARE] steps with order_index >= 3: %d", lateCount)

	otherModules, err := store.Modules(ctx, db, store.Ne("name", module.Name), store.QueryOptions{
		Sort: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return err
	}
	log.Printf("[COMPARE] modules with name != %q: %d", module.Name, len(otherModules))

	lessons, err := store.LessonsForModule(ctx, db, module.ID, store.QueryOptions{
		Sort:       bson.D{{Key: "name", Value: 1}},
		Projection: bson.M{"_id": 1, "name": 1},
	})
	if err != nil {
		return err
	}
	lessonIDs := make([]interface{}, 0, len(lessons))
	lessonNames := make([]interface{}, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
		lessonNames = append(lessonNames, l.Name)
	}
	inSteps, err := store.Steps(ctx, db, store.In("lesson_id", lessonIDs...), store.QueryOptions{})
	if err != nil {
		return err
	}
	log.Printf("[COMPARE] steps whose lesson_id IN %s lessons: %d", module.Name, len(inSteps))

	ninLessons, err := store.Lessons(ctx, db, store.Nin("name", lessonNames...), store.QueryOptions{})
	if err != nil {
		return err
	}
	log.Printf("[COMPARE] lessons whose name NOT IN %s lessons: %d", module.Name, len(ninLessons))

	// Catalog tree walk: lesson steps in order, then the whole module's steps
	if len(lessons) > 0 {
		firstSteps, err := store.StepsForLesson(ctx, db, lessons[0].ID, store.QueryOptions{
			Sort: bson.D{{Key: "order_index", Value: 1}},
		})
		if err != nil {
			return err
		}
		log.Printf("[TREE] %s has %d steps", lessons[0].Name, len(firstSteps))
	}
	treeSteps, err := store.StepsForModule(ctx, db, module.ID, store.QueryOptions{})
	if err != nil {
		return err
	}
	log.Printf("[TREE] %s has %d steps across %d lessons", module.Name, len(treeSteps), len(lessons))

	// Logical composition of the same filters
	midSteps, err := store.Steps(ctx, db,
		store.And(store.Gte("order_index", 2), store.Lte("order_index", 3)),
		store.QueryOptions{})
	if err != nil {
		return err
	}
	log.Printf("[LOGICAL] $and order_index in [2,3]: %d steps", len(midSteps))

	orLessons, err := store.Lessons(ctx, db,
		store.Or(store.PrefixRegex("name", "Lesson 01"), store.PrefixRegex("name", "Lesson 02")),
		store.QueryOptions{Sort: bson.D{{Key: "name", Value: 1}}})
	if err != nil {
		return err
	}
	log.Printf("[LOGICAL] $or lesson 01 or 02 prefixes:")
	for _, l := range orLessons {
		log.Printf("  %s", l.Name)
	}

	norModules, err := store.Modules(ctx, db,
		store.Nor(store.PrefixRegex("name", "Alphabet"), store.PrefixRegex("name", "Basic")),
		store.QueryOptions{Sort: bson.D{{Key: "name", Value: 1}}})
	if err != nil {
		return err
	}
	log.Printf("[LOGICAL] $nor excluding Alphabet/Basic prefixes: %d modules", len(norModules))

	// Regex queries with their winning plans. The anchored case-insensitive
	// prefix still scans the collection because the name index is case
	// sensitive; the point of the explain output is the examined-docs spread.
	if err := regexDemo(ctx, db, "prefix ^Basic", store.PrefixRegex("name", "Basic")); err != nil {
		return err
	}
	if err := regexDemo(ctx, db, "contains /log/i", store.ContainsRegex("name", "log")); err != nil {
		return err
	}
	if err := regexDemo(ctx, db, "alternation", store.PatternRegex("name", "^(Alphabet|Conversational)", "")); err != nil {
		return err
	}
	if err := regexDemo(ctx, db, "negation $not ^A", store.NotRegex("name", "^A", "")); err != nil {
		return err
	}

	// Exact equality rides the unique name index
	summary, err := store.Explain(ctx, db, moduleColl, bson.M{"name": "Basic Phrases"})
	if err != nil {
		return err
	}
	log.Printf("[EXPLAIN] exact name equality: stage=%s keys=%d docs=%d returned=%d",
		summary.Stage, summary.TotalKeysExamined, summary.TotalDocsExamined, summary.NReturned)

	log.Println("[DEMO] learning schema demonstrations complete")
	return nil
}

func regexDemo(ctx context.Context, db *mongo.Database, label string, filter bson.M) error {
	modules, err := store.Modules(ctx, db, filter, store.QueryOptions{
		Sort: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return err
	}
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}

	summary, err := store.Explain(ctx, db, models.Module{}.CollectionName(), filter)
	if err != nil {
		return err
	}
	log.Printf("[REGEX] %s -> %v (stage=%s keys=%d docs=%d)",
		label, names, summary.Stage, summary.TotalKeysExamined, summary.TotalDocsExamined)
	return nil
}

// demoPrefs walks the write-side operators of the preference schema: array
// updates on a user document, replace-vs-set, the upsert marker, and the
// overwrite-plus-event preference write.
func demoPrefs(ctx context.Context, db *mongo.Database) error {
	log.Println("[DEMO] prefs schema update demonstrations")

	alice, err := store.UserByEmail(ctx, db, "alice@example.com")
	if err != nil {
		return err
	}
	userColl := db.Collection(alice.CollectionName())

	// Array operators on favorite_cuisines
	res, err := store.PushValue(ctx, userColl, alice.ID, "favorite_cuisines", "thai")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $push thai: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.AddToSet(ctx, userColl, alice.ID, "favorite_cuisines", "italian", "georgian", "thai")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $addToSet italian/georgian/thai (dupes skipped): matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.PushAtPosition(ctx, userColl, alice.ID, "favorite_cuisines", 1, "japanese")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $push $position 1 japanese: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.SetByIndex(ctx, userColl, alice.ID, "favorite_cuisines", 0, "sicilian")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $set index 0 -> sicilian: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.SetByValue(ctx, userColl, alice.ID, "notification_channels", "sms", "text")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] arrayFilters sms -> text: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.Pull(ctx, userColl, alice.ID, "notification_channels", "whatsapp")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $pull whatsapp: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.PullAll(ctx, userColl, alice.ID, "favorite_cuisines", "thai", "japanese")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $pullAll thai/japanese: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.PopLast(ctx, userColl, alice.ID, "favorite_cuisines")
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $pop last: matched=%d modified=%d", res.Matched, res.Modified)

	res, err = store.RemoveAtIndex(ctx, userColl, alice.ID, "notification_channels", 0)
	if err != nil {
		return err
	}
	log.Printf("[ARRAY] $unset+$pull index 0: matched=%d modified=%d", res.Matched, res.Modified)

	// Replace-vs-set on the dimension catalog
	dim, err := store.DimensionByKey(ctx, db, "theme")
	if err != nil {
		return err
	}
	dim.Description = "Rendering theme for the client, replaced wholesale."
	replaceRes, err := store.ReplaceDimension(ctx, db, "theme", dim)
	if err != nil {
		return err
	}
	log.Printf("[REPLACE] theme dimension replaced: matched=%d modified=%d", replaceRes.Matched, replaceRes.Modified)

	setRes, err := store.UpdatePreferenceFields(ctx, db, alice.ID, "theme",
		bson.M{"confidence": 0.99}, time.Now())
	if err != nil {
		return err
	}
	log.Printf("[SET] targeted confidence update: matched=%d modified=%d", setRes.Matched, setRes.Modified)

	// Upsert marker: first run inserts, reruns update in place
	markerRes, err := store.UpsertMaintenanceMarker(ctx, db, alice.ID, time.Now())
	if err != nil {
		return err
	}
	log.Printf("[UPSERT] maintenance marker: matched=%d modified=%d upserted=%d",
		markerRes.MatchedCount, markerRes.ModifiedCount, markerRes.UpsertedCount)

	// Overwrite-then-append preference write, then read the trail back
	if err := store.SetPreference(ctx, db, alice.ID, "theme", "light", models.SourceManual, 0.95, time.Now()); err != nil {
		return err
	}
	history, err := store.PreferenceHistory(ctx, db, alice.ID, "theme", 5)
	if err != nil {
		return err
	}
	log.Printf("[HISTORY] theme transitions, newest first:")
	for _, ev := range history {
		log.Printf("  %s: %v -> %v (%s, %.2f)",
			ev.PerformedAt.Format(time.RFC3339), ev.OldValue, ev.NewValue, ev.Source, ev.Confidence)
	}

	// Missing user is reported, not dereferenced
	if _, err := store.UserByEmail(ctx, db, "nobody@example.com"); errors.Is(err, store.ErrNotFound) {
		log.Printf("[FIND] missing user reported: %v", err)
	} else if err != nil {
		return err
	}

	log.Println("[DEMO] prefs schema demonstrations complete")
	return nil
}
