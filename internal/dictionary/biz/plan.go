package biz

import (
	"strings"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
)

// BuildPlan turns a validated search request into a store-agnostic
// execution plan. It is pure and total: invalid input is rejected by
// ValidateSearchParams before plan construction, and the effective
// operation is resolved by the caller (empty text never reaches a
// regex or full-text plan).
func BuildPlan(req types.SearchRequest) types.Plan {
	req = req.Normalized()

	plan := types.Plan{
		Origins:  req.Origins,
		Language: req.Language,
		Sort:     resolveSort(req),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}

	text := strings.TrimSpace(req.QueryText)

	switch req.Operation {
	case types.OperationFullText:
		plan.Kind = types.PlanText
		plan.Corpus = Fold(text)
		plan.Projection.IncludeScore = req.SortBy == types.SortRelevance
	case types.OperationRegex:
		plan.Kind = types.PlanMatch
		plan.Pattern = Fold(text)
	default:
		plan.Kind = types.PlanBrowse
	}

	return plan
}

// resolveSort degrades relevance ordering to word index ascending for
// any operation other than full-text search. Under full-text relevance
// the primary order is score descending with word index ascending as
// the stable tie-break.
func resolveSort(req types.SearchRequest) types.SortSpec {
	if req.SortBy == types.SortRelevance {
		if req.Operation != types.OperationFullText {
			return types.SortSpec{Field: types.SortWordIndex, Order: types.SortAsc}
		}
		return types.SortSpec{Field: types.SortRelevance, Order: types.SortDesc, ScoreTieBreak: true}
	}

	return types.SortSpec{Field: req.SortBy, Order: req.SortOrder}
}
