package biz

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
)

// ValidationResult collects the outcome of request validation. All
// checks run independently; Errors carries every violated rule.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateSearchParams validates a search request against the rules the
// plan builder relies on. The operation is checked as given; callers
// that derive the effective operation resolve it before validating.
func ValidateSearchParams(req types.SearchRequest) ValidationResult {
	var errs []string

	if strings.TrimSpace(req.Language) == "" {
		errs = append(errs, "language is required")
	}

	if req.Limit < 1 || req.Limit > 100 {
		errs = append(errs, fmt.Sprintf("limit must be between 1 and 100, got %d", req.Limit))
	}

	if req.Offset < 0 {
		errs = append(errs, fmt.Sprintf("offset must not be negative, got %d", req.Offset))
	}

	text := strings.TrimSpace(req.QueryText)
	switch req.Operation {
	case types.OperationFullText:
		if utf8.RuneCountInString(text) < 2 {
			errs = append(errs, "full-text search requires a query of at least 2 characters")
		}
	case types.OperationRegex:
		if text == "" {
			errs = append(errs, "pattern search requires a non-empty query")
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// EmptyFilter returns the canonical zero-value filter
func EmptyFilter() types.UserFilter {
	return types.UserFilter{}
}

// IsEmptyFilter reports whether every facet equals its zero value
func IsEmptyFilter(f types.UserFilter) bool {
	return f.QueryText == "" &&
		f.Operation == types.OperationBrowse &&
		len(f.Origins) == 0 &&
		f.Language == "" &&
		f.HasAudio == nil &&
		f.HasAttributes == nil &&
		f.MinWordLength == 0 &&
		f.MaxWordLength == 0 &&
		f.SortBy == types.SortWordIndex &&
		f.SortOrder == types.SortAsc &&
		f.Limit == 0 &&
		f.Offset == 0
}

// URL query keys of the filter representation. Encoding omits
// zero-valued facets and url.Values.Encode sorts keys, so the output
// is deterministic and round-trips through DecodeFilter.
const (
	paramQuery     = "q"
	paramOperation = "op"
	paramOrigins   = "origins"
	paramLanguage  = "lang"
	paramHasAudio  = "audio"
	paramHasAttrs  = "attrs"
	paramMinLength = "minLen"
	paramMaxLength = "maxLen"
	paramSortBy    = "sortBy"
	paramSortOrder = "sortOrder"
	paramLimit     = "limit"
	paramOffset    = "offset"
)

// EncodeFilter serializes a filter to its URL query representation
func EncodeFilter(f types.UserFilter) string {
	values := url.Values{}

	if f.QueryText != "" {
		values.Set(paramQuery, f.QueryText)
	}
	if f.Operation != types.OperationBrowse {
		values.Set(paramOperation, f.Operation.String())
	}
	if len(f.Origins) > 0 {
		values.Set(paramOrigins, strings.Join(f.Origins, ","))
	}
	if f.Language != "" {
		values.Set(paramLanguage, f.Language)
	}
	if f.HasAudio != nil {
		values.Set(paramHasAudio, strconv.FormatBool(*f.HasAudio))
	}
	if f.HasAttributes != nil {
		values.Set(paramHasAttrs, strconv.FormatBool(*f.HasAttributes))
	}
	if f.MinWordLength > 0 {
		values.Set(paramMinLength, strconv.Itoa(f.MinWordLength))
	}
	if f.MaxWordLength > 0 {
		values.Set(paramMaxLength, strconv.Itoa(f.MaxWordLength))
	}
	if f.SortBy != types.SortWordIndex {
		values.Set(paramSortBy, f.SortBy.String())
	}
	if f.SortOrder != types.SortAsc {
		values.Set(paramSortOrder, f.SortOrder.String())
	}
	if f.Limit > 0 {
		values.Set(paramLimit, strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		values.Set(paramOffset, strconv.Itoa(f.Offset))
	}

	return values.Encode()
}

// DecodeFilter parses the URL query representation back into a filter.
// Unknown keys are ignored; absent keys collapse to the facet's zero
// value, so DecodeFilter(EncodeFilter(f)) == f for every normalized f.
func DecodeFilter(query string) (types.UserFilter, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return types.UserFilter{}, fmt.Errorf("malformed filter query: %w", err)
	}
	return DecodeFilterValues(values), nil
}

// DecodeFilterValues builds a filter from already-parsed URL values
func DecodeFilterValues(values url.Values) types.UserFilter {
	f := types.UserFilter{
		QueryText: values.Get(paramQuery),
		Operation: types.ParseOperation(values.Get(paramOperation)),
		Language:  values.Get(paramLanguage),
		SortBy:    types.ParseSortField(values.Get(paramSortBy)),
		SortOrder: types.ParseSortOrder(values.Get(paramSortOrder)),
	}

	if raw := values.Get(paramOrigins); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				f.Origins = append(f.Origins, origin)
			}
		}
	}

	if raw := values.Get(paramHasAudio); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			f.HasAudio = &b
		}
	}
	if raw := values.Get(paramHasAttrs); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			f.HasAttributes = &b
		}
	}

	f.MinWordLength = parseNonNegativeInt(values.Get(paramMinLength))
	f.MaxWordLength = parseNonNegativeInt(values.Get(paramMaxLength))
	f.Limit = parseNonNegativeInt(values.Get(paramLimit))
	f.Offset = parseNonNegativeInt(values.Get(paramOffset))

	return f
}

func parseNonNegativeInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FilterToRequest converts a filter into a search request, applying the
// default page size when the filter leaves limit unset. The effective
// operation is resolved here, once, before validation and plan building.
func FilterToRequest(f types.UserFilter, defaultLimit int) types.SearchRequest {
	limit := f.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	req := types.SearchRequest{
		Origins:   f.Origins,
		QueryText: f.QueryText,
		Operation: types.ResolveOperation(f.QueryText, f.Operation),
		Language:  f.Language,
		Limit:     limit,
		Offset:    f.Offset,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
	}

	return req.Normalized()
}
