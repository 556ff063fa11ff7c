package retrieval

import (
	"context"
	"log/slog"
)

// Query keys for the fixed predefined searches. Derived artifacts are stored
// per key, so these values are part of the persisted contract.
const (
	QueryThisWeek       = "this_week_situation"
	QueryCommentsOnYou  = "comments_about_you"
	QueryTopicsAsCouple = "topics_to_discuss_as_couple"
)

// PredefinedQueries maps each query key to the query text embedded against
// the fact index.
var PredefinedQueries = map[string]string{
	QueryThisWeek:       "How the user has been feeling lately: recent satisfaction levels and the reasons behind them",
	QueryCommentsOnYou:  "What the user has been thinking and saying about their partner recently",
	QueryTopicsAsCouple: "Subjects the user wants to discuss together as a couple",
}

// DefaultTopK is the per-query result count for predefined searches.
const DefaultTopK = 3

// SearchPredefined runs every predefined query against the index and returns
// a result set per key. Queries are isolated: a failed search logs a warning
// and yields an empty slice for that key without affecting the others.
func SearchPredefined(ctx context.Context, ix *Index, k int, logger *slog.Logger) map[string][]string {
	if k <= 0 {
		k = DefaultTopK
	}

	results := make(map[string][]string, len(PredefinedQueries))
	for key, queryText := range PredefinedQueries {
		docs, err := ix.Search(ctx, queryText, k)
		if err != nil {
			logger.Warn("predefined query search failed", "query_key", key, "error", err)
			results[key] = []string{}
			continue
		}
		results[key] = docs
	}
	return results
}
