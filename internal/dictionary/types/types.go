package types

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Operation selects the query strategy for a search request
type Operation int

const (
	OperationBrowse Operation = iota
	OperationRegex
	OperationFullText
)

func (o Operation) String() string {
	switch o {
	case OperationRegex:
		return "regex"
	case OperationFullText:
		return "fulltext"
	default:
		return "browse"
	}
}

// ParseOperation parses an operation name; unknown values map to browse
func ParseOperation(s string) Operation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regex":
		return OperationRegex
	case "fulltext":
		return OperationFullText
	default:
		return OperationBrowse
	}
}

// ResolveOperation derives the effective operation: empty trimmed query
// text always means browse, regardless of the user-selected operation.
func ResolveOperation(queryText string, selected Operation) Operation {
	if strings.TrimSpace(queryText) == "" {
		return OperationBrowse
	}
	return selected
}

// MarshalJSON encodes the operation by name
func (o Operation) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(o.String())), nil
}

// UnmarshalJSON decodes an operation name
func (o *Operation) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	*o = ParseOperation(s)
	return nil
}

// SortField names a result ordering
type SortField int

const (
	SortWordIndex SortField = iota
	SortPhonetic
	SortRelevance
)

func (f SortField) String() string {
	switch f {
	case SortPhonetic:
		return "phonetic"
	case SortRelevance:
		return "relevance"
	default:
		return "wordIndex"
	}
}

// ParseSortField parses a sort field name; unknown values map to wordIndex
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phonetic":
		return SortPhonetic
	case "relevance":
		return SortRelevance
	default:
		return SortWordIndex
	}
}

// MarshalJSON encodes the sort field by name
func (f SortField) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(f.String())), nil
}

// UnmarshalJSON decodes a sort field name
func (f *SortField) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	*f = ParseSortField(s)
	return nil
}

// SortOrder is the ordering direction
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

func (o SortOrder) String() string {
	if o == SortDesc {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder parses a sort order; unknown values map to ascending
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}

// MarshalJSON encodes the sort order by name
func (o SortOrder) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(o.String())), nil
}

// UnmarshalJSON decodes a sort order name
func (o *SortOrder) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	*o = ParseSortOrder(s)
	return nil
}

// SearchRequest is the fully resolved input of one search execution
type SearchRequest struct {
	Origins   []string
	QueryText string
	Operation Operation
	Language  string
	Limit     int
	Offset    int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalized returns a copy with trimmed query text and sorted,
// deduplicated origins, so that equal requests share one cache identity.
func (r SearchRequest) Normalized() SearchRequest {
	r.QueryText = strings.TrimSpace(r.QueryText)
	r.Language = strings.TrimSpace(r.Language)

	if len(r.Origins) > 0 {
		seen := make(map[string]struct{}, len(r.Origins))
		origins := make([]string, 0, len(r.Origins))
		for _, o := range r.Origins {
			o = strings.TrimSpace(o)
			if o == "" {
				continue
			}
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			origins = append(origins, o)
		}
		sort.Strings(origins)
		r.Origins = origins
	}

	return r
}

// CacheKey produces the full-identity cache key for this request.
// Every facet participates; two requests with the same key are
// interchangeable.
func (r SearchRequest) CacheKey() string {
	parts := []string{
		"search:v1",
		strings.Join(r.Origins, ","),
		strings.ToLower(r.QueryText),
		r.Operation.String(),
		r.Language,
		strconv.Itoa(r.Limit),
		strconv.Itoa(r.Offset),
		r.SortBy.String(),
		r.SortOrder.String(),
	}
	return strings.Join(parts, "|")
}

// WordRow is the projected dictionary record returned by a plan execution
type WordRow struct {
	ID          uint64   `json:"id"`
	Origin      string   `json:"origin"`
	Language    string   `json:"language"`
	Word        string   `json:"word"`
	Phonetic    string   `json:"phonetic"`
	WordIndex   int      `json:"wordIndex"`
	Description string   `json:"description"`
	HasAudio    bool     `json:"hasAudio"`
	Score       *float64 `json:"score,omitempty"`
}

// ResultEnvelope is the stable paginated result shape.
// Invariant: HasMore == (offset + len(Results)) < Total, and NextOffset
// is present iff HasMore.
type ResultEnvelope struct {
	Results    []WordRow `json:"results"`
	Total      int64     `json:"total"`
	HasMore    bool      `json:"hasMore"`
	NextOffset *int      `json:"nextOffset,omitempty"`
}

// OriginCount pairs a dictionary origin with its word count
type OriginCount struct {
	Origin string `json:"origin"`
	Total  int64  `json:"total"`
}

// PlanKind selects the store execution strategy
type PlanKind int

const (
	PlanBrowse PlanKind = iota
	PlanMatch
	PlanText
)

func (k PlanKind) String() string {
	switch k {
	case PlanMatch:
		return "match"
	case PlanText:
		return "text"
	default:
		return "browse"
	}
}

// SortSpec is the resolved ordering of a plan. When ScoreTieBreak is set
// the primary order is the relevance score descending with word index
// ascending as the stable tie-break.
type SortSpec struct {
	Field         SortField
	Order         SortOrder
	ScoreTieBreak bool
}

// Projection describes the columns a plan fetch must return
type Projection struct {
	IncludeScore bool
}

// Plan is the store-agnostic execution plan built from a SearchRequest.
// The count sub-plan shares the predicate fields (Origins, Language,
// Pattern, Corpus) and ignores sort, paging and projection.
type Plan struct {
	Kind       PlanKind
	Origins    []string
	Language   string
	Pattern    string // folded substring pattern, match plans only
	Corpus     string // folded full-text query, text plans only
	Sort       SortSpec
	Limit      int
	Offset     int
	Projection Projection
}

// UserFilter is the structured facet state coordinated between the
// client and the URL. The zero value is the canonical empty filter.
type UserFilter struct {
	QueryText     string    `json:"queryText,omitempty"`
	Operation     Operation `json:"operation,omitempty"`
	Origins       []string  `json:"origins,omitempty"`
	Language      string    `json:"language,omitempty"`
	HasAudio      *bool     `json:"hasAudio,omitempty"`
	HasAttributes *bool     `json:"hasAttributes,omitempty"`
	MinWordLength int       `json:"minWordLength,omitempty"`
	MaxWordLength int       `json:"maxWordLength,omitempty"`
	SortBy        SortField `json:"sortBy,omitempty"`
	SortOrder     SortOrder `json:"sortOrder,omitempty"`
	Limit         int       `json:"limit,omitempty"`
	Offset        int       `json:"offset,omitempty"`
}

// HistoryItem is one entry of the client-local query history
type HistoryItem struct {
	QueryText string      `json:"queryText"`
	Filter    *UserFilter `json:"filter,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
