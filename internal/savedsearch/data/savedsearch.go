package data

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/database"
	"github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/biz"
)

// FilterMap stores the structured filter snapshot as jsonb
type FilterMap map[string]interface{}

func (m *FilterMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan FilterMap: unsupported type %T", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m FilterMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// SavedSearchPO is the persistence object for saved searches
type SavedSearchPO struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_saved_search_user_name"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_saved_search_user_name"`
	QueryText string    `gorm:"size:500"`
	Filters   FilterMap `gorm:"type:jsonb"`
	SortBy    string    `gorm:"size:32"`
	SortOrder string    `gorm:"size:8"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SavedSearchPO) TableName() string {
	return "saved_searches"
}

func (po *SavedSearchPO) toSavedSearch() *biz.SavedSearch {
	return &biz.SavedSearch{
		ID:        po.ID,
		UserID:    po.UserID,
		Name:      po.Name,
		QueryText: po.QueryText,
		Filters:   po.Filters,
		SortBy:    po.SortBy,
		SortOrder: po.SortOrder,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}

func fromSavedSearch(s *biz.SavedSearch) *SavedSearchPO {
	return &SavedSearchPO{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		QueryText: s.QueryText,
		Filters:   s.Filters,
		SortBy:    s.SortBy,
		SortOrder: s.SortOrder,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// SavedSearchRepo implements biz.SavedSearchRepo backed by PostgreSQL
type SavedSearchRepo struct {
	db *gorm.DB
}

// NewSavedSearchRepo creates a saved search repository
func NewSavedSearchRepo(db *gorm.DB) *SavedSearchRepo {
	return &SavedSearchRepo{db: db}
}

func (r *SavedSearchRepo) Create(ctx context.Context, search *biz.SavedSearch) error {
	po := fromSavedSearch(search)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return biz.ErrNameTaken
		}
		return fmt.Errorf("failed to create saved search: %w", err)
	}
	return nil
}

func (r *SavedSearchRepo) GetByID(ctx context.Context, id, userID string) (*biz.SavedSearch, error) {
	var po SavedSearchPO
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get saved search: %w", err)
	}
	return po.toSavedSearch(), nil
}

func (r *SavedSearchRepo) List(ctx context.Context, userID string) ([]*biz.SavedSearch, error) {
	var pos []SavedSearchPO
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}

	searches := make([]*biz.SavedSearch, 0, len(pos))
	for i := range pos {
		searches = append(searches, pos[i].toSavedSearch())
	}
	return searches, nil
}

func (r *SavedSearchRepo) Update(ctx context.Context, search *biz.SavedSearch) error {
	po := fromSavedSearch(search)
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", search.ID, search.UserID).
		Select("Name", "QueryText", "Filters", "SortBy", "SortOrder", "UpdatedAt").
		Updates(po)
	if result.Error != nil {
		if database.IsDuplicateKeyError(result.Error) {
			return biz.ErrNameTaken
		}
		return fmt.Errorf("failed to update saved search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrNotFound
	}
	return nil
}

func (r *SavedSearchRepo) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&SavedSearchPO{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return biz.ErrNotFound
	}
	return nil
}

func (r *SavedSearchRepo) ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&SavedSearchPO{}).
		Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check saved search name: %w", err)
	}
	return count > 0, nil
}
