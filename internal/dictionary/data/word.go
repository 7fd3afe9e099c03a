package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/biz"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/database"
	"gorm.io/gorm"
)

// AttributeMap stores word attributes as a JSONB column
type AttributeMap map[string]string

func (m *AttributeMap) Scan(value interface{}) error {
	if value == nil {
		*m = AttributeMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

func (m AttributeMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(AttributeMap{})
	}
	return json.Marshal(m)
}

// WordPO is the dictionary record database model. The search_tsv
// column is a generated tsvector maintained by the migration, not
// mapped here.
type WordPO struct {
	ID          uint64       `gorm:"primarykey"`
	Origin      string       `gorm:"size:16;not null;index:idx_dictionary_words_origin"`
	Language    string       `gorm:"size:8;not null;index:idx_dictionary_words_language"`
	Word        string       `gorm:"size:512;not null"`
	Phonetic    string       `gorm:"size:512;not null;default:''"`
	Description string       `gorm:"type:text;not null;default:''"`
	WordIndex   int          `gorm:"not null;default:0;index:idx_dictionary_words_word_index"`
	HasAudio    bool         `gorm:"not null;default:false"`
	Attributes  AttributeMap `gorm:"type:jsonb;not null;default:'{}'"`
	WordLength  int          `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (WordPO) TableName() string {
	return "dictionary_words"
}

// wordScanRow carries the projection of a plan fetch, including the
// rank score under relevance ordering.
type wordScanRow struct {
	ID          uint64
	Origin      string
	Language    string
	Word        string
	Phonetic    string
	WordIndex   int
	Description string
	HasAudio    bool
	Score       *float64 `gorm:"column:score"`
}

// WordRepo renders dictionary plans onto PostgreSQL through GORM
type WordRepo struct {
	db *database.DB
}

// NewWordRepo creates a dictionary record store
func NewWordRepo(db *database.DB) biz.RecordStore {
	return &WordRepo{db: db}
}

// Count executes the count sub-plan: same predicate as the fetch,
// no sorting, paging or projection.
func (r *WordRepo) Count(ctx context.Context, plan types.Plan) (int64, error) {
	var total int64
	err := r.predicate(r.db.WithContext(ctx).GetDB().Model(&WordPO{}), plan).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count dictionary words: %w", err)
	}
	return total, nil
}

// Scan executes the fetch sub-plan with ordering, paging and projection
func (r *WordRepo) Scan(ctx context.Context, plan types.Plan) ([]types.WordRow, error) {
	query := r.predicate(r.db.WithContext(ctx).GetDB().Model(&WordPO{}), plan)

	columns := "id, origin, language, word, phonetic, word_index, description, has_audio"
	if plan.Projection.IncludeScore && plan.Kind == types.PlanText {
		query = query.Select(
			columns+", ts_rank(search_tsv, plainto_tsquery('simple', f_unaccent(?))) AS score",
			plan.Corpus,
		)
	} else {
		query = query.Select(columns)
	}

	var rows []wordScanRow
	err := query.
		Order(orderClause(plan.Sort)).
		Limit(plan.Limit).
		Offset(plan.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan dictionary words: %w", err)
	}

	result := make([]types.WordRow, len(rows))
	for i, row := range rows {
		result[i] = types.WordRow{
			ID:          row.ID,
			Origin:      row.Origin,
			Language:    row.Language,
			Word:        row.Word,
			Phonetic:    row.Phonetic,
			WordIndex:   row.WordIndex,
			Description: row.Description,
			HasAudio:    row.HasAudio,
		}
		if plan.Projection.IncludeScore {
			result[i].Score = row.Score
		}
	}

	return result, nil
}

// Origins returns the distinct origins with word counts
func (r *WordRepo) Origins(ctx context.Context) ([]types.OriginCount, error) {
	var counts []types.OriginCount
	err := r.db.WithContext(ctx).GetDB().
		Model(&WordPO{}).
		Select("origin, COUNT(*) AS total").
		Group("origin").
		Order("origin ASC").
		Find(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list origins: %w", err)
	}
	return counts, nil
}

// predicate applies the plan's filter, shared between count and fetch
func (r *WordRepo) predicate(query *gorm.DB, plan types.Plan) *gorm.DB {
	if len(plan.Origins) > 0 {
		query = query.Where("origin IN ?", plan.Origins)
	}
	if plan.Language != "" {
		query = query.Where("language = ?", plan.Language)
	}

	switch plan.Kind {
	case types.PlanMatch:
		query = query.Where("f_unaccent(lower(word)) LIKE ?", "%"+escapeLike(plan.Pattern)+"%")
	case types.PlanText:
		query = query.Where("search_tsv @@ plainto_tsquery('simple', f_unaccent(?))", plan.Corpus)
	}

	return query
}

// orderClause renders the resolved sort spec to SQL
func orderClause(sort types.SortSpec) string {
	dir := "ASC"
	if sort.Order == types.SortDesc {
		dir = "DESC"
	}

	switch sort.Field {
	case types.SortRelevance:
		// score is only selected under relevance projection; the
		// word-index tie-break keeps equal-score pages stable
		return "score DESC, word_index ASC"
	case types.SortPhonetic:
		return fmt.Sprintf("phonetic %s, word_index ASC", dir)
	default:
		return fmt.Sprintf("word_index %s", dir)
	}
}

// escapeLike escapes LIKE metacharacters in a user-supplied pattern
func escapeLike(pattern string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(pattern)
}
