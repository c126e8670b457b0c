package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExplainSummary is the compact plan digest the demos print: enough to tell
// an IXSCAN from a COLLSCAN without dumping the whole plan tree.
type ExplainSummary struct {
	Stage             string `json:"stage"`
	NReturned         int64  `json:"nReturned"`
	TotalDocsExamined int64  `json:"totalDocsExamined"`
	TotalKeysExamined int64  `json:"totalKeysExamined"`
}

// Explain runs the find under executionStats verbosity and summarizes the
// winning plan. Diagnostics only; never used for correctness.
func Explain(ctx context.Context, db *mongo.Database, collection string, filter bson.M) (ExplainSummary, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cmd := bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: collection},
			{Key: "filter", Value: filter},
		}},
		{Key: "verbosity", Value: "executionStats"},
	}

	var result bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&result); err != nil {
		return ExplainSummary{}, fmt.Errorf("explain on %s: %w", collection, err)
	}
	return SummarizeExplain(result), nil
}

// SummarizeExplain extracts the deepest plan stage and the execution counters
// from a raw explain document.
func SummarizeExplain(explain bson.M) ExplainSummary {
	summary := ExplainSummary{Stage: "UNKNOWN"}

	if planner, ok := explain["queryPlanner"].(bson.M); ok {
		if winning, ok := planner["winningPlan"].(bson.M); ok {
			summary.Stage = planStage(winning)
		}
	}
	if stats, ok := explain["executionStats"].(bson.M); ok {
		summary.NReturned = asInt64(stats["nReturned"])
		summary.TotalDocsExamined = asInt64(stats["totalDocsExamined"])
		summary.TotalKeysExamined = asInt64(stats["totalKeysExamined"])
	}
	return summary
}

// planStage walks to the deepest interesting stage (e.g. IXSCAN under
// FETCH/SORT).
func planStage(node bson.M) string {
	if node == nil {
		return "UNKNOWN"
	}
	if input, ok := node["inputStage"].(bson.M); ok {
		return planStage(input)
	}
	if inputs, ok := node["inputStages"].(bson.A); ok && len(inputs) > 0 {
		if first, ok := inputs[0].(bson.M); ok {
			return planStage(first)
		}
	}
	if stage, ok := node["stage"].(string); ok {
		return stage
	}
	return "UNKNOWN"
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
