// query_test.go
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
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// seededModuleNames mirrors the seeded catalog the regex demos run against
var seededModuleNames = []string{
	"Alphabet Basics",
	"Basic Phrases",
	"Advanced Dialogues",
	"Conversational Skills",
}

// matchNames evaluates a regex filter row-by-row the way the engine would
func matchNames(t *testing.T, filter bson.M, names []string) []string {
	t.Helper()

	rx, ok := filter["name"].(primitive.Regex)
	if !ok {
		t.Fatalf("filter has no name regex: %v", filter)
	}
	pattern := rx.Pattern
	if rx.Options == "i" {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("pattern %q does not compile: %v", rx.Pattern, err)
	}

	var matched []string
	for _, n := range names {
		if re.MatchString(n) {
			matched = append(matched, n)
		}
	}
	return matched
}

func TestPrefixRegexMatchesExactlyBasicPhrases(t *testing.T) {
	matched := matchNames(t, PrefixRegex("name", "Basic"), seededModuleNames)
	if len(matched) != 1 || matched[0] != "Basic Phrases" {
		t.Errorf("prefix ^Basic: expected [Basic Phrases], got %v", matched)
	}
}

func TestContainsRegexMatchesExactlyAdvancedDialogues(t *testing.T) {
	matched := matchNames(t, ContainsRegex("name", "log"), seededModuleNames)
	if len(matched) != 1 || matched[0] != "Advanced Dialogues" {
		t.Errorf("contains /log/i: expected [Advanced Dialogues], got %v", matched)
	}
}

func TestPrefixRegexIsAnchoredAndCaseInsensitive(t *testing.T) {
	filter := PrefixRegex("name", "basic")
	rx := filter["name"].(primitive.Regex)
	if rx.Pattern != "^basic" {
		t.Errorf("expected ^basic, got %q", rx.Pattern)
	}
	if rx.Options != "i" {
		t.Errorf("expected case-insensitive option, got %q", rx.Options)
	}

	// Lowercase prefix still matches the capitalized name
	matched := matchNames(t, filter, seededModuleNames)
	if len(matched) != 1 || matched[0] != "Basic Phrases" {
		t.Errorf("case-insensitive prefix: expected [Basic Phrases], got %v", matched)
	}
}

func TestRegexBuildersQuoteMetaCharacters(t *testing.T) {
	// A literal dot must not act as a wildcard
	filter := ContainsRegex("name", "conversation.")
	matched := matchNames(t, filter, seededModuleNames)
	if len(matched) != 0 {
		t.Errorf("quoted literal matched %v", matched)
	}

	// PatternRegex passes the template through untouched
	raw := PatternRegex("name", "^(Alphabet|Conversational)", "")
	matched = matchNames(t, raw, seededModuleNames)
	if len(matched) != 2 {
		t.Errorf("alternation: expected 2 matches, got %v", matched)
	}
}

func TestNotRegexShape(t *testing.T) {
	filter := NotRegex("name", "^A", "")
	inner, ok := filter["name"].(bson.M)
	if !ok {
		t.Fatalf("expected nested operator document, got %v", filter)
	}
	rx, ok := inner["$not"].(primitive.Regex)
	if !ok || rx.Pattern != "^A" {
		t.Errorf("unexpected $not content: %v", inner)
	}
}

func TestComparisonBuilders(t *testing.T) {
	cases := []struct {
		filter bson.M
		field  string
		op     string
	}{
		{Lt("order_index", 3), "order_index", "$lt"},
		{Lte("order_index", 3), "order_index", "$lte"},
		{Gt("order_index", 3), "order_index", "$gt"},
		{Gte("order_index", 3), "order_index", "$gte"},
		{Ne("name", "x"), "name", "$ne"},
	}
	for _, c := range cases {
		inner, ok := c.filter[c.field].(bson.M)
		if !ok {
			t.Fatalf("%s: expected operator document", c.op)
		}
		if _, ok := inner[c.op]; !ok {
			t.Errorf("%s missing from filter %v", c.op, c.filter)
		}
	}

	in := In("name", "a", "b")["name"].(bson.M)["$in"].([]interface{})
	if len(in) != 2 {
		t.Errorf("$in: expected 2 values, got %v", in)
	}
	nin := Nin("name", "a")["name"].(bson.M)["$nin"].([]interface{})
	if len(nin) != 1 {
		t.Errorf("$nin: expected 1 value, got %v", nin)
	}
}

func TestLogicalBuilders(t *testing.T) {
	cases := []struct {
		filter bson.M
		op     string
		want   int
	}{
		{And(Gte("order_index", 2), Lte("order_index", 3)), "$and", 2},
		{Or(bson.M{"name": "a"}, bson.M{"name": "b"}, bson.M{"name": "c"}), "$or", 3},
		{Nor(PrefixRegex("name", "Alphabet"), PrefixRegex("name", "Basic")), "$nor", 2},
	}
	for _, c := range cases {
		clauses, ok := c.filter[c.op].([]bson.M)
		if !ok {
			t.Fatalf("%s: expected clause list, got %v", c.op, c.filter)
		}
		if len(clauses) != c.want {
			t.Errorf("%s: expected %d clauses, got %d", c.op, c.want, len(clauses))
		}
	}

	// $nor of the Alphabet/Basic prefixes leaves exactly the other two modules
	nor := Nor(PrefixRegex("name", "Alphabet"), PrefixRegex("name", "Basic"))
	var matched []string
	for _, name := range seededModuleNames {
		excluded := false
		for _, clause := range nor["$nor"].([]bson.M) {
			if len(matchNames(t, clause, []string{name})) > 0 {
				excluded = true
			}
		}
		if !excluded {
			matched = append(matched, name)
		}
	}
	if len(matched) != 2 || matched[0] != "Advanced Dialogues" || matched[1] != "Conversational Skills" {
		t.Errorf("$nor over seeded names: expected the two non-excluded modules, got %v", matched)
	}
}

func TestPageArithmetic(t *testing.T) {
	cases := []struct {
		page, size, skip, limit int64
	}{
		{1, 10, 0, 10},
		{2, 10, 10, 10},
		{3, 5, 10, 5},
		{0, 10, 0, 10},  // page clamps to 1
		{-2, 10, 0, 10}, // negative clamps to 1
	}
	for _, c := range cases {
		q := Page(c.page, c.size)
		if q.Skip != c.skip || q.Limit != c.limit {
			t.Errorf("Page(%d,%d): expected skip=%d limit=%d, got skip=%d limit=%d",
				c.page, c.size, c.skip, c.limit, q.Skip, q.Limit)
		}
	}
}
