package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedOrigins(t *testing.T) {
	req := SearchRequest{
		Origins:   []string{" MW", "AP90", "MW", "", "DHATU "},
		QueryText: "  rama  ",
		Language:  " SAN ",
	}.Normalized()

	assert.Equal(t, []string{"AP90", "DHATU", "MW"}, req.Origins)
	assert.Equal(t, "rama", req.QueryText)
	assert.Equal(t, "SAN", req.Language)
}

func TestCacheKeyIgnoresOriginOrderAndCase(t *testing.T) {
	a := SearchRequest{
		Origins:   []string{"MW", "AP90"},
		QueryText: "Rama",
		Operation: OperationFullText,
		Language:  "SAN",
		Limit:     20,
	}.Normalized()
	b := SearchRequest{
		Origins:   []string{"AP90", "MW"},
		QueryText: "rama",
		Operation: OperationFullText,
		Language:  "SAN",
		Limit:     20,
	}.Normalized()

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestCacheKeyDistinguishesFacets(t *testing.T) {
	base := SearchRequest{QueryText: "rama", Language: "SAN", Limit: 20}.Normalized()

	offset := base
	offset.Offset = 20
	assert.NotEqual(t, base.CacheKey(), offset.CacheKey())

	op := base
	op.Operation = OperationFullText
	assert.NotEqual(t, base.CacheKey(), op.CacheKey())
}

func TestResolveOperation(t *testing.T) {
	assert.Equal(t, OperationBrowse, ResolveOperation("", OperationRegex))
	assert.Equal(t, OperationBrowse, ResolveOperation("   ", OperationFullText))
	assert.Equal(t, OperationFullText, ResolveOperation("rama", OperationFullText))
}

func TestParseOperationUnknownDefaultsToBrowse(t *testing.T) {
	assert.Equal(t, OperationBrowse, ParseOperation("something-else"))
	assert.Equal(t, OperationRegex, ParseOperation(" Regex "))
}
