package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/response"
	"github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/biz"
)

// SavedSearchService handles saved search HTTP endpoints
type SavedSearchService struct {
	uc     *biz.SavedSearchUseCase
	logger *zap.Logger
}

// NewSavedSearchService creates a saved search service
func NewSavedSearchService(uc *biz.SavedSearchUseCase, logger *zap.Logger) *SavedSearchService {
	return &SavedSearchService{uc: uc, logger: logger}
}

// RegisterRoutes registers saved search routes on an authenticated group
func (s *SavedSearchService) RegisterRoutes(rg *gin.RouterGroup) {
	searches := rg.Group("/saved-searches")
	{
		searches.POST("", s.Create)
		searches.GET("", s.List)
		searches.GET("/:id", s.Get)
		searches.PUT("/:id", s.Update)
		searches.DELETE("/:id", s.Delete)
		searches.POST("/:id/duplicate", s.Duplicate)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// Create handles POST /api/v1/saved-searches
func (s *SavedSearchService) Create(c *gin.Context) {
	var in biz.CreateSavedSearchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	search, err := s.uc.Create(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, search)
}

// List handles GET /api/v1/saved-searches
func (s *SavedSearchService) List(c *gin.Context) {
	searches, err := s.uc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"searches": searches,
		"total":    len(searches),
	})
}

// Get handles GET /api/v1/saved-searches/:id
func (s *SavedSearchService) Get(c *gin.Context) {
	search, err := s.uc.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, search)
}

// Update handles PUT /api/v1/saved-searches/:id
func (s *SavedSearchService) Update(c *gin.Context) {
	var in biz.UpdateSavedSearchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	search, err := s.uc.Update(c.Request.Context(), currentUserID(c), c.Param("id"), in)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, search)
}

// Delete handles DELETE /api/v1/saved-searches/:id
func (s *SavedSearchService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// Duplicate handles POST /api/v1/saved-searches/:id/duplicate
func (s *SavedSearchService) Duplicate(c *gin.Context) {
	search, err := s.uc.Duplicate(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, search)
}

func (s *SavedSearchService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrUnauthorized):
		response.Unauthorized(c, apperrors.GetMessage(apperrors.ErrUnauthorized))
	case errors.Is(err, biz.ErrNotFound):
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSavedSearchNotFound))
	case errors.Is(err, biz.ErrNameTaken):
		response.Conflict(c, apperrors.GetMessage(apperrors.ErrSavedSearchNameTaken))
	case errors.Is(err, biz.ErrNameRequired), errors.Is(err, biz.ErrNameTooLong):
		response.BadRequest(c, err.Error())
	default:
		s.logger.Error("saved search request failed", zap.Error(err))
		response.InternalError(c, apperrors.GetMessage(apperrors.ErrInternalServer))
	}
}
