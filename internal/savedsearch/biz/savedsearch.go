package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// maxNameLength bounds saved search names
const maxNameLength = 100

var (
	ErrUnauthorized = errors.New("saved search operation requires a user identity")
	ErrNotFound     = errors.New("saved search not found")
	ErrNameRequired = errors.New("saved search name is required")
	ErrNameTooLong  = errors.New("saved search name must be at most 100 characters")
	ErrNameTaken    = errors.New("saved search name already in use")
)

// SavedSearch is a named, persisted snapshot of a search
type SavedSearch struct {
	ID        string
	UserID    string
	Name      string
	QueryText string
	Filters   map[string]interface{}
	SortBy    string
	SortOrder string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedSearchRepo defines the repository contract for saved searches.
// Ownership is part of every lookup: a row belonging to another user is
// indistinguishable from an absent row (ErrNotFound).
type SavedSearchRepo interface {
	Create(ctx context.Context, search *SavedSearch) error
	GetByID(ctx context.Context, id, userID string) (*SavedSearch, error)
	List(ctx context.Context, userID string) ([]*SavedSearch, error)
	Update(ctx context.Context, search *SavedSearch) error
	Delete(ctx context.Context, id, userID string) error
	ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error)
}

// CreateSavedSearchInput carries the fields of a new saved search
type CreateSavedSearchInput struct {
	Name      string                 `json:"name"`
	QueryText string                 `json:"queryText"`
	Filters   map[string]interface{} `json:"filters"`
	SortBy    string                 `json:"sortBy"`
	SortOrder string                 `json:"sortOrder"`
}

// UpdateSavedSearchInput is a partial patch; nil fields stay unchanged
type UpdateSavedSearchInput struct {
	Name      *string                `json:"name"`
	QueryText *string                `json:"queryText"`
	Filters   map[string]interface{} `json:"filters"`
	SortBy    *string                `json:"sortBy"`
	SortOrder *string                `json:"sortOrder"`
}

// SavedSearchUseCase contains business logic for saved search operations
type SavedSearchUseCase struct {
	repo SavedSearchRepo
}

// NewSavedSearchUseCase creates a saved search use case
func NewSavedSearchUseCase(repo SavedSearchRepo) *SavedSearchUseCase {
	return &SavedSearchUseCase{repo: repo}
}

// Create persists a new saved search for the given user
func (uc *SavedSearchUseCase) Create(ctx context.Context, userID string, in CreateSavedSearchInput) (*SavedSearch, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	exists, err := uc.repo.ExistsByName(ctx, userID, in.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check saved search name: %w", err)
	}
	if exists {
		return nil, ErrNameTaken
	}

	now := time.Now().UTC()
	search := &SavedSearch{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      in.Name,
		QueryText: in.QueryText,
		Filters:   in.Filters,
		SortBy:    in.SortBy,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, search); err != nil {
		return nil, err
	}

	return search, nil
}

// List returns the user's saved searches, most recently used first
func (uc *SavedSearchUseCase) List(ctx context.Context, userID string) ([]*SavedSearch, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return uc.repo.List(ctx, userID)
}

// Get returns one saved search if it belongs to the user
func (uc *SavedSearchUseCase) Get(ctx context.Context, userID, id string) (*SavedSearch, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return uc.repo.GetByID(ctx, id, userID)
}

// Update applies a partial patch, re-validating the name on change and
// always bumping UpdatedAt so most-recently-used ordering follows edits.
func (uc *SavedSearchUseCase) Update(ctx context.Context, userID, id string, in UpdateSavedSearchInput) (*SavedSearch, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	search, err := uc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != search.Name {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
		exists, err := uc.repo.ExistsByName(ctx, userID, *in.Name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check saved search name: %w", err)
		}
		if exists {
			return nil, ErrNameTaken
		}
		search.Name = *in.Name
	}

	if in.QueryText != nil {
		search.QueryText = *in.QueryText
	}
	if in.Filters != nil {
		search.Filters = in.Filters
	}
	if in.SortBy != nil {
		search.SortBy = *in.SortBy
	}
	if in.SortOrder != nil {
		search.SortOrder = *in.SortOrder
	}

	search.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, search); err != nil {
		return nil, err
	}

	return search, nil
}

// Delete removes a saved search owned by the user
func (uc *SavedSearchUseCase) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return uc.repo.Delete(ctx, id, userID)
}

// Duplicate copies a saved search under a generated unique name
func (uc *SavedSearchUseCase) Duplicate(ctx context.Context, userID, id string) (*SavedSearch, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	original, err := uc.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	name, err := uc.copyName(ctx, userID, original.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dup := &SavedSearch{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		QueryText: original.QueryText,
		Filters:   original.Filters,
		SortBy:    original.SortBy,
		SortOrder: original.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, dup); err != nil {
		return nil, err
	}

	return dup, nil
}

// copyName walks "base (Copy)", "base (Copy 2)", ... until the name is
// free for the user, truncating the base so the result stays in bounds.
func (uc *SavedSearchUseCase) copyName(ctx context.Context, userID, base string) (string, error) {
	for n := 1; ; n++ {
		suffix := " (Copy)"
		if n > 1 {
			suffix = fmt.Sprintf(" (Copy %d)", n)
		}

		candidate := truncateName(base, maxNameLength-utf8.RuneCountInString(suffix)) + suffix

		exists, err := uc.repo.ExistsByName(ctx, userID, candidate, "")
		if err != nil {
			return "", fmt.Errorf("failed to check saved search name: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max])
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}
