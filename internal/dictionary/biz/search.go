package biz

import (
	"context"
	"strings"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecordStore is the storage contract for dictionary plan execution.
// Count and Scan share the plan's predicate; Count ignores sort, paging
// and projection so the store can optimize each independently.
type RecordStore interface {
	Count(ctx context.Context, plan types.Plan) (int64, error)
	Scan(ctx context.Context, plan types.Plan) ([]types.WordRow, error)
	Origins(ctx context.Context) ([]types.OriginCount, error)
}

// SearchUseCase validates requests, builds plans, executes them against
// the record store and assembles result envelopes.
type SearchUseCase struct {
	store  RecordStore
	logger *zap.Logger
}

// NewSearchUseCase creates a search use case
func NewSearchUseCase(store RecordStore, logger *zap.Logger) *SearchUseCase {
	return &SearchUseCase{
		store:  store,
		logger: logger,
	}
}

// Search executes one search request end to end. The request's
// operation must already be the effective one (see ResolveOperation);
// validation failures surface immediately and are never retried.
func (uc *SearchUseCase) Search(ctx context.Context, req types.SearchRequest) (*types.ResultEnvelope, error) {
	req = req.Normalized()

	if result := ValidateSearchParams(req); !result.IsValid {
		return nil, apperrors.New(apperrors.ErrInvalidParams, strings.Join(result.Errors, "; "))
	}

	plan := BuildPlan(req)

	// Count and fetch run against the same predicate but are always two
	// independent executions; deriving the total from a full fetch would
	// not bound memory on large result sets.
	var (
		total int64
		rows  []types.WordRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = uc.store.Count(gctx, plan)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = uc.store.Scan(gctx, plan)
		return err
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("search plan execution failed",
			zap.String("kind", plan.Kind.String()),
			zap.Strings("origins", plan.Origins),
			zap.Error(err),
		)
		return nil, apperrors.Wrap(err, apperrors.ErrStoreUnavailable)
	}

	env := Assemble(rows, total, req.Limit, req.Offset)
	return &env, nil
}

// ListOrigins returns the distinct dictionary origins with word counts
func (uc *SearchUseCase) ListOrigins(ctx context.Context) ([]types.OriginCount, error) {
	origins, err := uc.store.Origins(ctx)
	if err != nil {
		uc.logger.Error("failed to list origins", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrStoreUnavailable)
	}
	return origins, nil
}
