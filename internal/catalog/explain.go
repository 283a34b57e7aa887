package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"plp-bookstore/internal/models"
)

// ExplainFindByTitle runs explain on find({title}) and returns the raw plan
// together with its summary. An empty verbosity means executionStats.
func (c *Catalog) ExplainFindByTitle(ctx context.Context, title, verbosity string) (bson.M, models.ExplainSummary, error) {
	if verbosity == "" {
		verbosity = VerbosityExecutionStats
	}
	if !IsValidVerbosity(verbosity) {
		return nil, models.ExplainSummary{}, fmt.Errorf("invalid explain verbosity %q", verbosity)
	}

	cmd := ExplainFindCommand(c.Books.Name(), TitleFilter(title), verbosity)
	var raw bson.M
	if err := c.Books.Database().RunCommand(ctx, cmd).Decode(&raw); err != nil {
		return nil, models.ExplainSummary{}, fmt.Errorf("explain find %q: %w", title, err)
	}
	return raw, SummarizeExplain(raw), nil
}

// SummarizeExplain pulls the winning stage, index usage and execution counters
// out of an explain document. Servers using the slot based engine nest the
// classic plan under winningPlan.queryPlan.
func SummarizeExplain(raw bson.M) models.ExplainSummary {
	var summary models.ExplainSummary

	planner, _ := asDoc(raw["queryPlanner"])
	plan, _ := asDoc(planner["winningPlan"])
	if nested, ok := asDoc(plan["queryPlan"]); ok {
		plan = nested
	}
	summary.WinningStage, _ = plan["stage"].(string)
	if ix, ok := findStage(plan, models.StageIxScan); ok {
		summary.UsesIndex = true
		summary.IndexName, _ = ix["indexName"].(string)
	}

	if stats, ok := asDoc(raw["executionStats"]); ok {
		summary.NReturned = asInt64(stats["nReturned"])
		summary.TotalKeysExamined = asInt64(stats["totalKeysExamined"])
		summary.TotalDocsExamined = asInt64(stats["totalDocsExamined"])
		summary.ExecutionTimeMillis = asInt64(stats["executionTimeMillis"])
	}
	return summary
}

// findStage walks inputStage/inputStages depth first.
func findStage(plan bson.M, stage string) (bson.M, bool) {
	if plan == nil {
		return nil, false
	}
	if s, _ := plan["stage"].(string); s == stage {
		return plan, true
	}
	if child, ok := asDoc(plan["inputStage"]); ok {
		if found, ok := findStage(child, stage); ok {
			return found, true
		}
	}
	if children, ok := plan["inputStages"].(bson.A); ok {
		for _, c := range children {
			child, ok := asDoc(c)
			if !ok {
				continue
			}
			if found, ok := findStage(child, stage); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func asDoc(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case bson.D:
		m := make(bson.M, len(d))
		for _, e := range d {
			m[e.Key] = e.Value
		}
		return m, true
	}
	return nil, false
}

func asInt64(v any) int64 {
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
