package biz

import (
	"testing"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildPlanBrowse(t *testing.T) {
	plan := BuildPlan(types.SearchRequest{
		Origins:   []string{"MW", "AP90"},
		Operation: types.OperationBrowse,
		Language:  "SAN",
		Limit:     10,
		Offset:    20,
	})

	assert.Equal(t, types.PlanBrowse, plan.Kind)
	assert.Equal(t, []string{"AP90", "MW"}, plan.Origins)
	assert.Equal(t, "SAN", plan.Language)
	assert.Empty(t, plan.Pattern)
	assert.Empty(t, plan.Corpus)
	assert.Equal(t, 10, plan.Limit)
	assert.Equal(t, 20, plan.Offset)
	assert.False(t, plan.Projection.IncludeScore)
}

func TestBuildPlanMatchFoldsPattern(t *testing.T) {
	plan := BuildPlan(types.SearchRequest{
		QueryText: "  Rāma ",
		Operation: types.OperationRegex,
		Language:  "SAN",
		Limit:     10,
	})

	assert.Equal(t, types.PlanMatch, plan.Kind)
	assert.Equal(t, "rama", plan.Pattern)
	assert.False(t, plan.Projection.IncludeScore)
}

func TestBuildPlanTextWithRelevance(t *testing.T) {
	plan := BuildPlan(types.SearchRequest{
		QueryText: "dharma",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
		SortBy:    types.SortRelevance,
	})

	assert.Equal(t, types.PlanText, plan.Kind)
	assert.Equal(t, "dharma", plan.Corpus)
	assert.Equal(t, types.SortRelevance, plan.Sort.Field)
	assert.Equal(t, types.SortDesc, plan.Sort.Order)
	assert.True(t, plan.Sort.ScoreTieBreak)
	assert.True(t, plan.Projection.IncludeScore)
}

func TestBuildPlanTextWithStructuralSortDropsScore(t *testing.T) {
	plan := BuildPlan(types.SearchRequest{
		QueryText: "dharma",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
		SortBy:    types.SortPhonetic,
		SortOrder: types.SortDesc,
	})

	assert.Equal(t, types.PlanText, plan.Kind)
	assert.Equal(t, types.SortPhonetic, plan.Sort.Field)
	assert.Equal(t, types.SortDesc, plan.Sort.Order)
	assert.False(t, plan.Sort.ScoreTieBreak)
	assert.False(t, plan.Projection.IncludeScore)
}

func TestBuildPlanRelevanceDegradesOutsideFullText(t *testing.T) {
	for _, op := range []types.Operation{types.OperationBrowse, types.OperationRegex} {
		plan := BuildPlan(types.SearchRequest{
			QueryText: "rama",
			Operation: op,
			Language:  "SAN",
			Limit:     10,
			SortBy:    types.SortRelevance,
			SortOrder: types.SortDesc,
		})

		assert.Equal(t, types.SortWordIndex, plan.Sort.Field, "operation %s", op)
		assert.Equal(t, types.SortAsc, plan.Sort.Order, "operation %s", op)
		assert.False(t, plan.Projection.IncludeScore, "operation %s", op)
	}
}

func TestResolveOperationEmptyTextIsBrowse(t *testing.T) {
	assert.Equal(t, types.OperationBrowse, types.ResolveOperation("", types.OperationRegex))
	assert.Equal(t, types.OperationBrowse, types.ResolveOperation("   ", types.OperationFullText))
	assert.Equal(t, types.OperationRegex, types.ResolveOperation("rama", types.OperationRegex))
	assert.Equal(t, types.OperationFullText, types.ResolveOperation("rama", types.OperationFullText))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "rama", Fold("Rāma"))
	assert.Equal(t, "krsna", Fold("kṛṣṇa"))
	assert.Equal(t, "samskrta", Fold("Saṃskṛta"))
	assert.Equal(t, "plain", Fold("plain"))
}
