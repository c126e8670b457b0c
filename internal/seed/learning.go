// learning.go
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

package seed

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// learningEpoch anchors every seeded timestamp so reruns upsert the exact
// same documents instead of drifting with the wall clock.
var learningEpoch = time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

type personSeed struct {
	Email, PasswordHash, Name string
}

type moduleSeed struct {
	Name, Description string
	Tags              []string
}

type lessonPlan struct {
	Module  string
	Lessons []string
}

type stepProgressSeed struct {
	Email, Lesson, Step, Status string
	DayOffset                   int
}

type targetProgressSeed struct {
	Email, Target, Status string
	DayOffset             int
}

// LearningPersons seeds three deterministic learners
var LearningPersons = []personSeed{
	{Email: "alice@example.com", PasswordHash: "demo_hash_alice", Name: "Alice"},
	{Email: "bob@example.com", PasswordHash: "demo_hash_bob", Name: "Bob"},
	{Email: "carol@example.com", PasswordHash: "demo_hash_carol", Name: "Carol"},
}

// LearningModules carries names crafted for the regex demos: exactly one
// prefix match for ^Basic and exactly one substring match for /log/i.
var LearningModules = []moduleSeed{
	{Name: "Alphabet Basics", Description: "Letters and pronunciation.", Tags: []string{"beginner"}},
	{Name: "Basic Phrases", Description: "Greetings and simple phrases."},
	{Name: "Advanced Dialogues", Description: "Complex conversational dialogues."},
	{Name: "Conversational Skills", Description: "Practical conversation.* patterns."},
}

// LearningLessonPlan assigns lessons per module with numbered names for the
// complex-pattern demos.
var LearningLessonPlan = []lessonPlan{
	{Module: "Alphabet Basics", Lessons: []string{"Lesson 01: Letters", "Lesson 1A: Vowels", "Lesson 12: Consonants"}},
	{Module: "Basic Phrases", Lessons: []string{"Lesson 02: Greetings", "Lesson 1B: Introductions"}},
	{Module: "Advanced Dialogues", Lessons: []string{"Lesson 03: At the Cafe", "Lesson 10: Asking Directions"}},
	{Module: "Conversational Skills", Lessons: []string{"Lesson 1C: Small Talk", "Lesson 11: Negotiation"}},
}

var learningModuleProgress = []targetProgressSeed{
	{"alice@example.com", "Alphabet Basics", models.StatusCompleted, 0},
	{"alice@example.com", "Basic Phrases", models.StatusInProgress, 1},
	{"bob@example.com", "Advanced Dialogues", models.StatusAvailable, 2},
	{"carol@example.com", "Alphabet Basics", models.StatusInProgress, 3},
}

var learningLessonProgress = []targetProgressSeed{
	{"alice@example.com", "Lesson 1A: Vowels", models.StatusCompleted, 0},
	{"alice@example.com", "Lesson 12: Consonants", models.StatusInProgress, 1},
	{"bob@example.com", "Lesson 02: Greetings", models.StatusCompleted, 2},
	{"carol@example.com", "Lesson 10: Asking Directions", models.StatusAvailable, 3},
}

// learningStepProgress spreads step-progress facts over ten distinct days
var learningStepProgress = []stepProgressSeed{
	{"alice@example.com", "Lesson 1A: Vowels", "Lesson 1A: Vowels Step 1", models.StatusCompleted, 0},
	{"alice@example.com", "Lesson 12: Consonants", "Lesson 12: Consonants Step 1", models.StatusInProgress, 1},
	{"bob@example.com", "Lesson 02: Greetings", "Lesson 02: Greetings Step 1", models.StatusCompleted, 2},
	{"bob@example.com", "Lesson 02: Greetings", "Lesson 02: Greetings Step 2", models.StatusCompleted, 4},
	{"carol@example.com", "Lesson 03: At the Cafe", "Lesson 03: At the Cafe Step 1", models.StatusInProgress, 3},
	{"carol@example.com", "Lesson 10: Asking Directions", "Lesson 10: Asking Directions Step 1", models.StatusCompleted, 5},
	{"alice@example.com", "Lesson 1A: Vowels", "Lesson 1A: Vowels Step 2", models.StatusCompleted, 6},
	{"alice@example.com", "Lesson 1A: Vowels", "Lesson 1A: Vowels Step 3", models.StatusCompleted, 7},
	{"bob@example.com", "Lesson 02: Greetings", "Lesson 02: Greetings Step 3", models.StatusInProgress, 8},
	{"carol@example.com", "Lesson 10: Asking Directions", "Lesson 10: Asking Directions Step 2", models.StatusCompleted, 9},
}

// StepCountForLesson is the deterministic 2..4 step fan-out used by the seed
func StepCountForLesson(lessonName string) int {
	return (len(lessonName) % 3) + 2
}

// Learning seeds the learning-platform schema idempotently: every write is a
// find-or-create or a keyed upsert, so a rerun changes no counts.
func Learning(ctx context.Context, db *mongo.Database) error {
	statusIDs, err := seedStatuses(ctx, db)
	if err != nil {
		return err
	}

	personIDs := make(map[string]primitive.ObjectID, len(LearningPersons))
	for _, p := range LearningPersons {
		doc := models.Person{Email: p.Email, PasswordHash: p.PasswordHash, CreatedAt: learningEpoch, Name: p.Name}
		if err := models.Validate(doc); err != nil {
			return fmt.Errorf("seed person %s: %w", p.Email, err)
		}
		id, err := store.GetOrCreate(ctx, db.Collection(doc.CollectionName()), bson.M{"email": p.Email}, doc)
		if err != nil {
			return err
		}
		personIDs[p.Email] = id
	}

	moduleIDs := make(map[string]primitive.ObjectID, len(LearningModules))
	for _, m := range LearningModules {
		doc := models.Module{Name: m.Name, Description: m.Description, Tags: m.Tags}
		if err := models.Validate(doc); err != nil {
			return fmt.Errorf("seed module %s: %w", m.Name, err)
		}
		id, err := store.GetOrCreate(ctx, db.Collection(doc.CollectionName()), bson.M{"name": m.Name}, doc)
		if err != nil {
			return err
		}
		moduleIDs[m.Name] = id
	}

	lessonIDs := make(map[string]primitive.ObjectID)
	stepIDs := make(map[string]primitive.ObjectID)
	for _, plan := range LearningLessonPlan {
		moduleID, ok := moduleIDs[plan.Module]
		if !ok {
			return fmt.Errorf("seed lesson plan: module %q: %w", plan.Module, store.ErrNotFound)
		}
		for _, name := range plan.Lessons {
			lesson := models.Lesson{ModuleID: moduleID, Name: name, Description: name + " overview."}
			if err := models.Validate(lesson); err != nil {
				return fmt.Errorf("seed lesson %s: %w", name, err)
			}
			lessonID, err := store.GetOrCreate(ctx, db.Collection(lesson.CollectionName()),
				bson.M{"module_id": moduleID, "name": name}, lesson)
			if err != nil {
				return err
			}
			lessonIDs[name] = lessonID

			slug := strings.ToLower(strings.Join(strings.Fields(name), "-"))
			for i := 1; i <= StepCountForLesson(name); i++ {
				step := models.Step{
					LessonID:   lessonID,
					Name:       fmt.Sprintf("%s Step %d", name, i),
					URL:        fmt.Sprintf("https://example.com/%s/step-%d", slug, i),
					Notes:      fmt.Sprintf("Practice item %d for %s.", i, name),
					OrderIndex: i,
				}
				if err := models.Validate(step); err != nil {
					return fmt.Errorf("seed step %s: %w", step.Name, err)
				}
				stepID, err := store.GetOrCreate(ctx, db.Collection(step.CollectionName()),
					bson.M{"lesson_id": lessonID, "name": step.Name}, step)
				if err != nil {
					return err
				}
				stepIDs[step.Name] = stepID
			}
		}
	}

	if err := seedLearningProgress(ctx, db, statusIDs, personIDs, moduleIDs, lessonIDs, stepIDs); err != nil {
		return err
	}

	counts, err := LearningCounts(ctx, db)
	if err != nil {
		return err
	}
	logCounts("learning", counts)
	return nil
}

func seedStatuses(ctx context.Context, db *mongo.Database) (map[string]primitive.ObjectID, error) {
	ids := make(map[string]primitive.ObjectID, len(models.StatusNames))
	coll := db.Collection(models.Status{}.CollectionName())
	for _, name := range models.StatusNames {
		id, err := store.GetOrCreate(ctx, coll, bson.M{"name": name}, models.Status{Name: name})
		if err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, nil
}

func seedLearningProgress(ctx context.Context, db *mongo.Database,
	statusIDs, personIDs, moduleIDs, lessonIDs, stepIDs map[string]primitive.ObjectID) error {

	for _, mp := range learningModuleProgress {
		personID, moduleID, statusID, err := progressRefs(personIDs, mp.Email, moduleIDs, mp.Target, statusIDs, mp.Status)
		if err != nil {
			return fmt.Errorf("seed module progress: %w", err)
		}
		err = store.UpsertModuleProgress(ctx, db, personID, moduleID, statusID,
			learningEpoch.AddDate(0, 0, mp.DayOffset))
		if err != nil {
			return err
		}
	}

	for _, lp := range learningLessonProgress {
		personID, lessonID, statusID, err := progressRefs(personIDs, lp.Email, lessonIDs, lp.Target, statusIDs, lp.Status)
		if err != nil {
			return fmt.Errorf("seed lesson progress: %w", err)
		}
		err = store.UpsertLessonProgress(ctx, db, personID, lessonID, statusID,
			learningEpoch.AddDate(0, 0, lp.DayOffset))
		if err != nil {
			return err
		}
	}

	for _, sp := range learningStepProgress {
		personID, stepID, statusID, err := progressRefs(personIDs, sp.Email, stepIDs, sp.Step, statusIDs, sp.Status)
		if err != nil {
			return fmt.Errorf("seed step progress: %w", err)
		}
		err = store.UpsertStepProgress(ctx, db, personID, stepID, statusID,
			learningEpoch.AddDate(0, 0, sp.DayOffset))
		if err != nil {
			return err
		}
	}
	return nil
}

// progressRefs resolves the (person, target, status) keys of a progress
// literal, failing loudly on a key the dataset tables never seeded instead of
// upserting a zero-id reference.
func progressRefs(personIDs map[string]primitive.ObjectID, email string,
	targetIDs map[string]primitive.ObjectID, target string,
	statusIDs map[string]primitive.ObjectID, status string) (primitive.ObjectID, primitive.ObjectID, primitive.ObjectID, error) {

	personID, ok := personIDs[email]
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID,
			fmt.Errorf("person %q: %w", email, store.ErrNotFound)
	}
	targetID, ok := targetIDs[target]
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID,
			fmt.Errorf("target %q: %w", target, store.ErrNotFound)
	}
	statusID, ok := statusIDs[status]
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, primitive.NilObjectID,
			fmt.Errorf("status %q: %w", status, store.ErrNotFound)
	}
	return personID, targetID, statusID, nil
}

// LearningCounts returns exact per-collection document counts
func LearningCounts(ctx context.Context, db *mongo.Database) (map[string]int64, error) {
	return collectionCounts(ctx, db,
		"person", "module", "lesson", "step", "status",
		"person_module_progress", "person_lesson_progress", "person_step_progress")
}

func collectionCounts(ctx context.Context, db *mongo.Database, collections ...string) (map[string]int64, error) {
	counts := make(map[string]int64, len(collections))
	for _, name := range collections {
		n, err := store.CountExact(ctx, db, name, nil)
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

func logCounts(schemaName string, counts map[string]int64) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	log.Printf("[COUNTS] %s schema:", schemaName)
	for _, name := range names {
		log.Printf("  %s: %d", name, counts[name])
	}
}
