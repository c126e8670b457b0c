package schema

import (
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func specByName(t *testing.T, specs []CollectionSpec, name string) CollectionSpec {
	t.Helper()
	for _, s := range specs {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("collection spec %q not found", name)
	return CollectionSpec{}
}

func indexByName(t *testing.T, spec CollectionSpec, name string) IndexSpec {
	t.Helper()
	for _, ix := range spec.Indexes {
		if ix.Name == name {
			return ix
		}
	}
	t.Fatalf("index %q not found on %s", name, spec.Name)
	return IndexSpec{}
}

func TestLearningCollectionNames(t *testing.T) {
	specs := LearningCollections()
	expected := []string{
		"person", "module", "lesson", "step", "status",
		"person_module_progress", "person_lesson_progress", "person_step_progress",
	}
	if len(specs) != len(expected) {
		t.Fatalf("expected %d collections, got %d", len(expected), len(specs))
	}
	for i, name := range expected {
		if specs[i].Name != name {
			t.Errorf("collection %d: expected %s, got %s", i, name, specs[i].Name)
		}
	}
}

func TestLearningUniqueIndexes(t *testing.T) {
	specs := LearningCollections()

	cases := []struct {
		collection string
		index      string
		keys       []string
	}{
		{"person", "uniq_email", []string{"email"}},
		{"module", "uniq_module_name", []string{"name"}},
		{"lesson", "uniq_lesson_module_name", []string{"module_id", "name"}},
		{"step", "uniq_step_lesson_name", []string{"lesson_id", "name"}},
		{"status", "uniq_status_name", []string{"name"}},
		{"person_module_progress", "uniq_person_module", []string{"person_id", "module_id"}},
		{"person_lesson_progress", "uniq_person_lesson", []string{"person_id", "lesson_id"}},
		{"person_step_progress", "uniq_person_step", []string{"person_id", "step_id"}},
	}

	for _, c := range cases {
		ix := indexByName(t, specByName(t, specs, c.collection), c.index)
		if !ix.Unique {
			t.Errorf("%s.%s should be unique", c.collection, c.index)
		}
		if len(ix.Keys) != len(c.keys) {
			t.Fatalf("%s.%s: expected %d keys, got %d", c.collection, c.index, len(c.keys), len(ix.Keys))
		}
		for i, key := range c.keys {
			if ix.Keys[i].Key != key {
				t.Errorf("%s.%s key %d: expected %s, got %s", c.collection, c.index, i, key, ix.Keys[i].Key)
			}
		}
	}
}

func TestLearningSupportIndexesNotUnique(t *testing.T) {
	specs := LearningCollections()
	for _, name := range []string{"idx_lesson_module_id", "idx_lesson_name"} {
		ix := indexByName(t, specByName(t, specs, "lesson"), name)
		if ix.Unique {
			t.Errorf("%s must not be unique", name)
		}
	}
	ix := indexByName(t, specByName(t, specs, "person_step_progress"), "idx_psp_person_updated_at")
	if ix.Unique {
		t.Error("idx_psp_person_updated_at must not be unique")
	}
	if ix.Keys[0].Key != "person_id" || ix.Keys[1].Key != "updated_at" {
		t.Errorf("unexpected compound keys: %v", ix.Keys)
	}
}

func TestStatusEnumClosed(t *testing.T) {
	status := specByName(t, LearningCollections(), "status")

	props := status.Validator["properties"].(bson.M)
	enum := props["name"].(bson.M)["enum"].(bson.A)
	expected := []string{"available", "in_progress", "completed"}
	if len(enum) != len(expected) {
		t.Fatalf("expected %d enum values, got %d", len(expected), len(enum))
	}
	for i, v := range expected {
		if enum[i] != v {
			t.Errorf("enum %d: expected %s, got %v", i, v, enum[i])
		}
	}

	if status.Validator["additionalProperties"] != false {
		t.Error("status validator must close additional properties")
	}
}

func TestProgressValidatorRequiredFields(t *testing.T) {
	cases := map[string]string{
		"person_module_progress": "module_id",
		"person_lesson_progress": "lesson_id",
		"person_step_progress":   "step_id",
	}
	specs := LearningCollections()
	for collection, target := range cases {
		required := specByName(t, specs, collection).Validator["required"].(bson.A)
		expected := []string{"person_id", target, "status_id", "updated_at"}
		if len(required) != len(expected) {
			t.Fatalf("%s: expected %d required fields, got %d", collection, len(expected), len(required))
		}
		for i, f := range expected {
			if required[i] != f {
				t.Errorf("%s required %d: expected %s, got %v", collection, i, f, required[i])
			}
		}
	}
}

func TestPrefsCollectionNames(t *testing.T) {
	specs := PrefsCollections()
	expected := []string{
		"user", "preference_dimension", "preference_option",
		"user_preferences", "user_preference_events",
	}
	if len(specs) != len(expected) {
		t.Fatalf("expected %d collections, got %d", len(expected), len(specs))
	}
	for i, name := range expected {
		if specs[i].Name != name {
			t.Errorf("collection %d: expected %s, got %s", i, name, specs[i].Name)
		}
	}
}

func TestPrefsUniqueIndexes(t *testing.T) {
	specs := PrefsCollections()

	cases := []struct {
		collection string
		index      string
		keys       []string
	}{
		{"user", "ux_user_email", []string{"email"}},
		{"preference_dimension", "ux_dimension_key", []string{"dimension_key"}},
		{"preference_option", "ux_option_dim_key", []string{"dimension_id", "option_key"}},
		{"user_preferences", "ux_user_pref_key", []string{"user_id", "pref_key"}},
	}
	for _, c := range cases {
		ix := indexByName(t, specByName(t, specs, c.collection), c.index)
		if !ix.Unique {
			t.Errorf("%s.%s should be unique", c.collection, c.index)
		}
		for i, key := range c.keys {
			if ix.Keys[i].Key != key {
				t.Errorf("%s.%s key %d: expected %s, got %s", c.collection, c.index, i, key, ix.Keys[i].Key)
			}
		}
	}

	// The event log is time-ordered, never unique
	events := specByName(t, specs, "user_preference_events")
	for _, ix := range events.Indexes {
		if ix.Unique {
			t.Errorf("event index %s must not be unique", ix.Name)
		}
	}
}

func TestSharedPatternsCompile(t *testing.T) {
	for name, pattern := range map[string]string{
		"email":    EmailPattern,
		"http url": HTTPURLPattern,
		"snakekey": SnakeKeyPattern,
	} {
		if _, err := regexp.Compile(pattern); err != nil {
			t.Errorf("%s pattern does not compile: %v", name, err)
		}
	}

	snake := regexp.MustCompile(SnakeKeyPattern)
	for _, ok := range []string{"theme", "cuisine_favorite", "spice_level"} {
		if !snake.MatchString(ok) {
			t.Errorf("%q should match snake key pattern", ok)
		}
	}
	for _, bad := range []string{"Theme", "spice-level", "a b", ""} {
		if snake.MatchString(bad) {
			t.Errorf("%q should not match snake key pattern", bad)
		}
	}
}

func TestSpecSetsAreStable(t *testing.T) {
	// Setup is re-runnable; the CollectionSpec builders must return equal sets each call
	a, b := LearningCollections(), LearningCollections()
	if len(a) != len(b) {
		t.Fatal("learning spec set size changed between calls")
	}
	for i := range a {
		if a[i].Name != b[i].Name || len(a[i].Indexes) != len(b[i].Indexes) {
			t.Errorf("learning spec %d differs between calls", i)
		}
	}
}
