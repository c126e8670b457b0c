package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSummarizeExplainIndexScan(t *testing.T) {
	// FETCH over IXSCAN, the shape an indexed equality produces
	explain := bson.M{
		"queryPlanner": bson.M{
			"winningPlan": bson.M{
				"stage": "FETCH",
				"inputStage": bson.M{
					"stage":     "IXSCAN",
					"indexName": "uniq_module_name",
				},
			},
		},
		"executionStats": bson.M{
			"nReturned":         int32(1),
			"totalDocsExamined": int32(1),
			"totalKeysExamined": int32(1),
		},
	}

	s := SummarizeExplain(explain)
	if s.Stage != "IXSCAN" {
		t.Errorf("expected IXSCAN, got %s", s.Stage)
	}
	if s.NReturned != 1 || s.TotalDocsExamined != 1 || s.TotalKeysExamined != 1 {
		t.Errorf("unexpected counters: %+v", s)
	}
}

func TestSummarizeExplainCollectionScan(t *testing.T) {
	explain := bson.M{
		"queryPlanner": bson.M{
			"winningPlan": bson.M{
				"stage": "COLLSCAN",
			},
		},
		"executionStats": bson.M{
			"nReturned":         int64(1),
			"totalDocsExamined": int64(4),
			"totalKeysExamined": int64(0),
		},
	}

	s := SummarizeExplain(explain)
	if s.Stage != "COLLSCAN" {
		t.Errorf("expected COLLSCAN, got %s", s.Stage)
	}
	if s.TotalDocsExamined != 4 || s.TotalKeysExamined != 0 {
		t.Errorf("unexpected counters: %+v", s)
	}
}

func TestSummarizeExplainSortedIndexScan(t *testing.T) {
	// SORT over IXSCAN via inputStages, as OR plans report
	explain := bson.M{
		"queryPlanner": bson.M{
			"winningPlan": bson.M{
				"stage": "SORT_MERGE",
				"inputStages": bson.A{
					bson.M{"stage": "IXSCAN", "indexName": "idx_lesson_name"},
					bson.M{"stage": "IXSCAN", "indexName": "idx_lesson_module_id"},
				},
			},
		},
	}

	s := SummarizeExplain(explain)
	if s.Stage != "IXSCAN" {
		t.Errorf("expected IXSCAN from inputStages drill, got %s", s.Stage)
	}
}

func TestSummarizeExplainUnknownShape(t *testing.T) {
	s := SummarizeExplain(bson.M{})
	if s.Stage != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for empty explain, got %s", s.Stage)
	}
	if s.NReturned != 0 || s.TotalDocsExamined != 0 {
		t.Errorf("expected zero counters, got %+v", s)
	}
}
