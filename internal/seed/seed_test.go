package seed

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStepCountForLessonBounds(t *testing.T) {
	for _, plan := range LearningLessonPlan {
		for _, lesson := range plan.Lessons {
			n := StepCountForLesson(lesson)
			if n < 2 || n > 4 {
				t.Errorf("lesson %q: step count %d out of [2,4]", lesson, n)
			}
			if n != StepCountForLesson(lesson) {
				t.Errorf("lesson %q: step count not deterministic", lesson)
			}
		}
	}
}

func TestLearningDatasetShape(t *testing.T) {
	if len(LearningPersons) != 3 {
		t.Errorf("expected 3 persons, got %d", len(LearningPersons))
	}
	if len(LearningModules) != 4 {
		t.Errorf("expected 4 modules, got %d", len(LearningModules))
	}

	lessons := 0
	steps := 0
	for _, plan := range LearningLessonPlan {
		lessons += len(plan.Lessons)
		for _, lesson := range plan.Lessons {
			steps += StepCountForLesson(lesson)
		}
	}
	if lessons != 9 {
		t.Errorf("expected 9 lessons, got %d", lessons)
	}
	if steps != 25 {
		t.Errorf("expected 25 steps, got %d", steps)
	}
}

func TestLearningModuleNamesServeRegexDemos(t *testing.T) {
	prefix := regexp.MustCompile(`(?i)^Basic`)
	contains := regexp.MustCompile(`(?i)log`)

	var prefixMatches, containsMatches []string
	for _, m := range LearningModules {
		if prefix.MatchString(m.Name) {
			prefixMatches = append(prefixMatches, m.Name)
		}
		if contains.MatchString(m.Name) {
			containsMatches = append(containsMatches, m.Name)
		}
	}

	if len(prefixMatches) != 1 || prefixMatches[0] != "Basic Phrases" {
		t.Errorf("prefix ^Basic: expected [Basic Phrases], got %v", prefixMatches)
	}
	if len(containsMatches) != 1 || containsMatches[0] != "Advanced Dialogues" {
		t.Errorf("contains /log/i: expected [Advanced Dialogues], got %v", containsMatches)
	}
}

func TestLearningLessonPlanReferencesSeededModules(t *testing.T) {
	moduleNames := make(map[string]bool, len(LearningModules))
	for _, m := range LearningModules {
		moduleNames[m.Name] = true
	}
	for _, plan := range LearningLessonPlan {
		if !moduleNames[plan.Module] {
			t.Errorf("lesson plan references unknown module %q", plan.Module)
		}
	}
}

func TestStepProgressSpreadsOverSevenDays(t *testing.T) {
	days := make(map[int]bool)
	for _, sp := range learningStepProgress {
		days[sp.DayOffset] = true
	}
	if len(days) < 7 {
		t.Errorf("step progress spans %d distinct days, need at least 7", len(days))
	}
}

func TestStepProgressReferencesSeededSteps(t *testing.T) {
	lessonByName := make(map[string]bool)
	stepByName := make(map[string]bool)
	for _, plan := range LearningLessonPlan {
		for _, lesson := range plan.Lessons {
			lessonByName[lesson] = true
			for i := 1; i <= StepCountForLesson(lesson); i++ {
				stepByName[lesson+" Step "+strconv.Itoa(i)] = true
			}
		}
	}

	statuses := map[string]bool{
		models.StatusAvailable:  true,
		models.StatusInProgress: true,
		models.StatusCompleted:  true,
	}
	persons := make(map[string]bool)
	for _, p := range LearningPersons {
		persons[p.Email] = true
	}

	for _, sp := range learningStepProgress {
		if !persons[sp.Email] {
			t.Errorf("step progress references unknown person %q", sp.Email)
		}
		if !lessonByName[sp.Lesson] {
			t.Errorf("step progress references unknown lesson %q", sp.Lesson)
		}
		if !stepByName[sp.Step] {
			t.Errorf("step progress references unseeded step %q", sp.Step)
		}
		if !statuses[sp.Status] {
			t.Errorf("step progress uses unknown status %q", sp.Status)
		}
		if !strings.HasPrefix(sp.Step, sp.Lesson) {
			t.Errorf("step %q does not belong to lesson %q", sp.Step, sp.Lesson)
		}
	}
}

func TestModuleAndLessonProgressReferencesSeeded(t *testing.T) {
	persons := make(map[string]bool)
	for _, p := range LearningPersons {
		persons[p.Email] = true
	}
	modules := make(map[string]bool)
	for _, m := range LearningModules {
		modules[m.Name] = true
	}
	lessons := make(map[string]bool)
	for _, plan := range LearningLessonPlan {
		for _, lesson := range plan.Lessons {
			lessons[lesson] = true
		}
	}
	statuses := map[string]bool{
		models.StatusAvailable:  true,
		models.StatusInProgress: true,
		models.StatusCompleted:  true,
	}

	for _, mp := range learningModuleProgress {
		if !persons[mp.Email] {
			t.Errorf("module progress references unknown person %q", mp.Email)
		}
		if !modules[mp.Target] {
			t.Errorf("module progress references unseeded module %q", mp.Target)
		}
		if !statuses[mp.Status] {
			t.Errorf("module progress uses unknown status %q", mp.Status)
		}
	}
	for _, lp := range learningLessonProgress {
		if !persons[lp.Email] {
			t.Errorf("lesson progress references unknown person %q", lp.Email)
		}
		if !lessons[lp.Target] {
			t.Errorf("lesson progress references unseeded lesson %q", lp.Target)
		}
		if !statuses[lp.Status] {
			t.Errorf("lesson progress uses unknown status %q", lp.Status)
		}
	}
}

func TestProgressRefsRejectsUnknownKeys(t *testing.T) {
	persons := map[string]primitive.ObjectID{"alice@example.com": primitive.NewObjectID()}
	targets := map[string]primitive.ObjectID{"Alphabet Basics": primitive.NewObjectID()}
	statuses := map[string]primitive.ObjectID{models.StatusCompleted: primitive.NewObjectID()}

	personID, targetID, statusID, err := progressRefs(
		persons, "alice@example.com", targets, "Alphabet Basics", statuses, models.StatusCompleted)
	if err != nil {
		t.Fatalf("expected resolution, got %v", err)
	}
	if personID.IsZero() || targetID.IsZero() || statusID.IsZero() {
		t.Fatal("resolved ids must be non-zero")
	}

	cases := []struct {
		name                  string
		email, target, status string
	}{
		{"unknown person", "mallory@example.com", "Alphabet Basics", models.StatusCompleted},
		{"unknown target", "alice@example.com", "Alpabet Basics", models.StatusCompleted},
		{"unknown status", "alice@example.com", "Alphabet Basics", "done"},
	}
	for _, tc := range cases {
		_, _, _, err := progressRefs(persons, tc.email, targets, tc.target, statuses, tc.status)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", tc.name, err)
		}
	}
}

func TestPrefsDatasetShape(t *testing.T) {
	if len(PrefsUsers) != 8 {
		t.Errorf("expected 8 users, got %d", len(PrefsUsers))
	}
	if len(PrefsDimensions) != 4 {
		t.Errorf("expected 4 dimensions, got %d", len(PrefsDimensions))
	}
	options := 0
	for _, d := range PrefsDimensions {
		options += len(d.Options)
	}
	if options != 14 {
		t.Errorf("expected 14 options, got %d", options)
	}
	if len(prefsCurrent) != 18 {
		t.Errorf("expected 18 current preferences, got %d", len(prefsCurrent))
	}
}

func TestPrefsCurrentValuesAreAllowedOptions(t *testing.T) {
	allowed := make(map[string]map[string]bool, len(PrefsDimensions))
	for _, d := range PrefsDimensions {
		allowed[d.Key] = make(map[string]bool, len(d.Options))
		for _, o := range d.Options {
			allowed[d.Key][o.Key] = true
		}
	}
	users := make(map[string]bool, len(PrefsUsers))
	for _, u := range PrefsUsers {
		users[u.Email] = true
	}

	for _, p := range prefsCurrent {
		if !users[p.Email] {
			t.Errorf("preference references unknown user %q", p.Email)
		}
		dim, ok := allowed[p.Key]
		if !ok {
			t.Errorf("preference references unknown dimension %q", p.Key)
			continue
		}
		switch v := p.Value.(type) {
		case string:
			if !dim[v] {
				t.Errorf("%s/%s: value %q is not a seeded option", p.Email, p.Key, v)
			}
		case []string:
			for _, item := range v {
				if !dim[item] {
					t.Errorf("%s/%s: value %q is not a seeded option", p.Email, p.Key, item)
				}
			}
		default:
			t.Errorf("%s/%s: unexpected value type %T", p.Email, p.Key, p.Value)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Errorf("%s/%s: confidence %v out of [0,1]", p.Email, p.Key, p.Confidence)
		}
	}
}

func TestPrefsCurrentKeysUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range prefsCurrent {
		key := p.Email + "/" + p.Key
		if seen[key] {
			t.Errorf("duplicate current preference %s", key)
		}
		seen[key] = true
	}
}

func TestPrefsEventTimesUniquePerUserKey(t *testing.T) {
	// Event seeding upserts on (user, key, performed_at); a collision would
	// silently merge two transitions.
	seen := make(map[string]bool)
	record := func(email, key string, daysAgo int) {
		k := email + "/" + key + "/" + strconv.Itoa(daysAgo)
		if seen[k] {
			t.Errorf("two seeded events share (user,key,time): %s", k)
		}
		seen[k] = true
	}
	for _, h := range prefsHistory {
		record(h.Email, h.Key, h.DaysAgo)
	}
	for _, p := range prefsCurrent {
		record(p.Email, p.Key, p.DaysAgo)
	}
}

func TestPrefsHistoryPredatesCurrent(t *testing.T) {
	// nowMinusDays: larger daysAgo is earlier
	for _, h := range prefsHistory {
		for _, p := range prefsCurrent {
			if h.Email == p.Email && h.Key == p.Key && h.DaysAgo <= p.DaysAgo {
				t.Errorf("%s/%s: history event (%d days ago) not before current (%d days ago)",
					h.Email, h.Key, h.DaysAgo, p.DaysAgo)
			}
		}
	}
}
