package models

// ExplainSummary is the part of an explain("executionStats") document that tells
// whether a query was answered from an index.
type ExplainSummary struct {
	WinningStage        string `json:"winning_stage"`
	UsesIndex           bool   `json:"uses_index"`
	IndexName           string `json:"index_name,omitempty"`
	NReturned           int64  `json:"n_returned"`
	TotalKeysExamined   int64  `json:"total_keys_examined"`
	TotalDocsExamined   int64  `json:"total_docs_examined"`
	ExecutionTimeMillis int64  `json:"execution_time_millis"`
}

const (
	StageCollScan = "COLLSCAN"
	StageIxScan   = "IXSCAN"
)
