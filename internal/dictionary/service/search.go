package service

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/biz"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/session"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/response"
)

// SearchService handles dictionary search HTTP endpoints
type SearchService struct {
	uc           *biz.SearchUseCase
	cache        session.ResponseCache
	cacheTTL     time.Duration
	defaultLimit int
	logger       *zap.Logger
}

// NewSearchService creates a dictionary search service
func NewSearchService(uc *biz.SearchUseCase, cache session.ResponseCache, cacheTTL time.Duration, defaultLimit int, logger *zap.Logger) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &SearchService{
		uc:           uc,
		cache:        cache,
		cacheTTL:     cacheTTL,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// RegisterRoutes registers public dictionary routes
func (s *SearchService) RegisterRoutes(rg *gin.RouterGroup) {
	dict := rg.Group("/dictionary")
	{
		dict.GET("/search", s.Search)
		dict.GET("/origins", s.Origins)
	}
}

// Search handles GET /api/v1/dictionary/search. The query string uses
// the same shape EncodeFilter produces, so shared URLs replay directly.
func (s *SearchService) Search(c *gin.Context) {
	filter := biz.DecodeFilterValues(c.Request.URL.Query())
	req := biz.FilterToRequest(filter, s.defaultLimit)

	if result := biz.ValidateSearchParams(req); !result.IsValid {
		response.BadRequest(c, strings.Join(result.Errors, "; "))
		return
	}

	envelope, err := s.cache.GetOrFetch(c.Request.Context(), req.CacheKey(), s.cacheTTL,
		func(ctx context.Context) (*types.ResultEnvelope, error) {
			return s.uc.Search(ctx, req)
		})
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, envelope)
}

// Origins handles GET /api/v1/dictionary/origins
func (s *SearchService) Origins(c *gin.Context) {
	origins, err := s.uc.ListOrigins(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"origins": origins,
		"total":   len(origins),
	})
}

func (s *SearchService) handleError(c *gin.Context, err error) {
	code := apperrors.ExtractCode(err)
	switch code {
	case apperrors.ErrInvalidParams, apperrors.ErrSearchInvalidParams:
		response.BadRequest(c, err.Error())
	case apperrors.ErrStoreUnavailable, apperrors.ErrSearchStoreFailed:
		s.logger.Error("search store unavailable", zap.Error(err))
		response.Error(c, apperrors.GetHTTPStatus(code), apperrors.GetMessage(code))
	default:
		s.logger.Error("dictionary search failed", zap.Error(err))
		response.InternalError(c, apperrors.GetMessage(apperrors.ErrInternalServer))
	}
}
