package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRecordStore serves a fixed corpus and records the plans it saw
type fakeRecordStore struct {
	total     int64
	rows      []types.WordRow
	origins   []types.OriginCount
	err       error
	lastPlans []types.Plan
}

func (s *fakeRecordStore) Count(ctx context.Context, plan types.Plan) (int64, error) {
	s.lastPlans = append(s.lastPlans, plan)
	return s.total, s.err
}

func (s *fakeRecordStore) Scan(ctx context.Context, plan types.Plan) ([]types.WordRow, error) {
	if s.err != nil {
		return nil, s.err
	}

	start := plan.Offset
	if start > len(s.rows) {
		start = len(s.rows)
	}
	end := start + plan.Limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[start:end], nil
}

func (s *fakeRecordStore) Origins(ctx context.Context) ([]types.OriginCount, error) {
	return s.origins, s.err
}

func newSearchFixture(total int) (*SearchUseCase, *fakeRecordStore) {
	store := &fakeRecordStore{
		total: int64(total),
		rows:  makeRows(total),
	}
	return NewSearchUseCase(store, zap.NewNop()), store
}

func TestSearchFirstPage(t *testing.T) {
	uc, _ := newSearchFixture(25)

	env, err := uc.Search(context.Background(), types.SearchRequest{
		Origins:   []string{"MW", "AP90"},
		QueryText: "rama",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
		Offset:    0,
		SortBy:    types.SortRelevance,
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, len(env.Results), 10)
	assert.Equal(t, int64(25), env.Total)
	assert.True(t, env.HasMore)
	require.NotNil(t, env.NextOffset)
	assert.Equal(t, 10, *env.NextOffset)
}

func TestSearchLastPage(t *testing.T) {
	uc, _ := newSearchFixture(25)

	env, err := uc.Search(context.Background(), types.SearchRequest{
		Origins:   []string{"MW", "AP90"},
		QueryText: "rama",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
		Offset:    20,
		SortBy:    types.SortRelevance,
	})

	require.NoError(t, err)
	assert.Len(t, env.Results, 5)
	assert.False(t, env.HasMore)
	assert.Nil(t, env.NextOffset)
}

func TestSearchRejectsInvalidRequest(t *testing.T) {
	uc, store := newSearchFixture(25)

	_, err := uc.Search(context.Background(), types.SearchRequest{
		QueryText: "r",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))
	assert.Empty(t, store.lastPlans, "no plan must be executed for invalid input")
}

func TestSearchWrapsStoreFailureAsTransient(t *testing.T) {
	uc, store := newSearchFixture(25)
	store.err = errors.New("connection reset")

	_, err := uc.Search(context.Background(), types.SearchRequest{
		QueryText: "rama",
		Operation: types.OperationFullText,
		Language:  "SAN",
		Limit:     10,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}
