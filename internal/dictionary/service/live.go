package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/session"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/hareeshbabu82ns/devhub-search/internal/history"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/response"
)

// liveSession pairs a search session with bookkeeping for expiry
type liveSession struct {
	session  *session.Session
	lastSeen time.Time
}

// LiveService exposes interactive search sessions over HTTP. A client
// creates a session, patches its filter as the user types, and follows
// state transitions on an SSE stream.
type LiveService struct {
	cfg    session.Config
	exec   session.Executor
	cache  session.ResponseCache
	hist   *history.Log
	logger *zap.Logger

	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*liveSession
	done    chan struct{}
	once    sync.Once
}

// NewLiveService creates the live search service. Sessions idle longer
// than ttl are closed and dropped by a background sweep.
func NewLiveService(cfg session.Config, exec session.Executor, cache session.ResponseCache, hist *history.Log, ttl time.Duration, logger *zap.Logger) *LiveService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	s := &LiveService{
		cfg:     cfg,
		exec:    exec,
		cache:   cache,
		hist:    hist,
		logger:  logger,
		ttl:     ttl,
		entries: make(map[string]*liveSession),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// RegisterRoutes registers live session routes
func (s *LiveService) RegisterRoutes(rg *gin.RouterGroup) {
	live := rg.Group("/dictionary/sessions")
	{
		live.POST("", s.Create)
		live.GET("/:id", s.Get)
		live.PATCH("/:id", s.Patch)
		live.GET("/:id/events", s.Events)
		live.POST("/:id/more", s.LoadMore)
		live.DELETE("/:id", s.Delete)
	}
}

// Close stops the sweep loop and closes every open session
func (s *LiveService) Close() {
	s.once.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		entry.session.Close()
		delete(s.entries, id)
	}
}

// Create handles POST /api/v1/dictionary/sessions
func (s *LiveService) Create(c *gin.Context) {
	var filter types.UserFilter
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&filter); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}

	id := uuid.New().String()
	sess := session.New(s.cfg, s.exec, s.cache, s.hist, s.logger)

	s.mu.Lock()
	s.entries[id] = &liveSession{session: sess, lastSeen: time.Now()}
	s.mu.Unlock()

	if filter.QueryText != "" || len(filter.Origins) > 0 {
		sess.Apply(filter)
	}

	response.Created(c, gin.H{
		"sessionId": id,
		"snapshot":  sess.Snapshot(),
	})
}

// Get handles GET /api/v1/dictionary/sessions/:id
func (s *LiveService) Get(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSearchSessionNotFound))
		return
	}
	response.Success(c, sess.Snapshot())
}

// patchRequest carries incremental session updates. Pointer fields
// distinguish "not sent" from an explicit zero value.
type patchRequest struct {
	QueryText *string   `json:"queryText"`
	Operation *string   `json:"operation"`
	Origins   *[]string `json:"origins"`
	Language  *string   `json:"language"`
	SortBy    *string   `json:"sortBy"`
	SortOrder *string   `json:"sortOrder"`
}

// Patch handles PATCH /api/v1/dictionary/sessions/:id. Query text edits
// go through the debounce path; facet changes apply immediately.
func (s *LiveService) Patch(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSearchSessionNotFound))
		return
	}

	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if req.Origins != nil {
		sess.SetOrigins(*req.Origins)
	}
	if req.Language != nil {
		sess.SetLanguage(*req.Language)
	}
	if req.Operation != nil {
		sess.SetOperation(types.ParseOperation(*req.Operation))
	}
	if req.SortBy != nil || req.SortOrder != nil {
		snap := sess.Snapshot()
		field := snap.Filter.SortBy
		order := snap.Filter.SortOrder
		if req.SortBy != nil {
			field = types.ParseSortField(*req.SortBy)
		}
		if req.SortOrder != nil {
			order = types.ParseSortOrder(*req.SortOrder)
		}
		sess.SetSort(field, order)
	}
	if req.QueryText != nil {
		sess.SetQueryText(*req.QueryText)
	}

	response.Success(c, sess.Snapshot())
}

// LoadMore handles POST /api/v1/dictionary/sessions/:id/more
func (s *LiveService) LoadMore(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSearchSessionNotFound))
		return
	}
	sess.LoadMore()
	response.Success(c, sess.Snapshot())
}

// Delete handles DELETE /api/v1/dictionary/sessions/:id
func (s *LiveService) Delete(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if !ok {
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSearchSessionNotFound))
		return
	}
	entry.session.Close()
	response.Success(c, gin.H{"deleted": true})
}

// Events handles GET /api/v1/dictionary/sessions/:id/events, streaming
// session snapshots as SSE until the client disconnects.
func (s *LiveService) Events(c *gin.Context) {
	sess, ok := s.lookup(c.Param("id"))
	if !ok {
		response.NotFound(c, apperrors.GetMessage(apperrors.ErrSearchSessionNotFound))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.InternalError(c, "streaming not supported")
		return
	}

	updates := sess.Subscribe()

	writeSnapshot(c, flusher, sess.Snapshot())

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-s.done:
			return
		case snap, open := <-updates:
			if !open {
				return
			}
			s.touch(c.Param("id"))
			writeSnapshot(c, flusher, snap)
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func writeSnapshot(c *gin.Context, flusher http.Flusher, snap session.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: snapshot\n")
	fmt.Fprintf(c.Writer, "data: %s\n\n", string(data))
	flusher.Flush()
}

func (s *LiveService) lookup(id string) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.session, true
}

func (s *LiveService) touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		entry.lastSeen = time.Now()
	}
}

// sweep closes sessions that have been idle past the TTL
func (s *LiveService) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, entry := range s.entries {
				if entry.lastSeen.Before(cutoff) {
					entry.session.Close()
					delete(s.entries, id)
					s.logger.Debug("expired idle search session", zap.String("session_id", id))
				}
			}
			s.mu.Unlock()
		}
	}
}
