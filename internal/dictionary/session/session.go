// Package session drives interactive dictionary searches: it debounces
// keystrokes, caches result pages, retries transient store failures and
// prefetches the next page once a result settles.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/biz"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/hareeshbabu82ns/devhub-search/internal/history"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
)

// State is the lifecycle phase of a search session
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateFetching
	StateSettled
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateDebouncing:
		return "debouncing"
	case StateFetching:
		return "fetching"
	case StateSettled:
		return "settled"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Executor runs one search request. *biz.SearchUseCase satisfies it.
type Executor interface {
	Search(ctx context.Context, req types.SearchRequest) (*types.ResultEnvelope, error)
}

// Config tunes session behavior
type Config struct {
	DebounceWindow  time.Duration
	CacheTTL        time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	DefaultLimit    int
	DisablePrefetch bool
}

func (c Config) withDefaults() Config {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 300 * time.Millisecond
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	return c
}

// Snapshot is an observable view of the session at one moment
type Snapshot struct {
	State    string                `json:"state"`
	Filter   types.UserFilter      `json:"filter"`
	URLQuery string                `json:"urlQuery"`
	Results  *types.ResultEnvelope `json:"results,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Session is a stateful search orchestrator. Query text edits are
// debounced; facet changes apply immediately. Only the latest dispatched
// request may publish results: responses from superseded requests are
// discarded on arrival.
type Session struct {
	cfg    Config
	exec   Executor
	cache  ResponseCache
	hist   *history.Log
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	filter   types.UserFilter
	state    State
	results  *types.ResultEnvelope
	lastErr  error
	gen      uint64
	editSeq  uint64
	debounce *time.Timer
	subs     []chan Snapshot
	closed   bool
}

// New creates a session. The history log is optional.
func New(cfg Config, exec Executor, cache ResponseCache, hist *history.Log, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		cfg:    cfg.withDefaults(),
		exec:   exec,
		cache:  cache,
		hist:   hist,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		state:  StateIdle,
	}
}

// SetQueryText stages new query text. The fetch fires only after the
// debounce window elapses without further edits.
func (s *Session) SetQueryText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.filter.QueryText = text
	s.filter.Offset = 0
	s.gen++ // any in-flight fetch is for superseded text, discard it
	s.setState(StateDebouncing)

	s.editSeq++
	seq := s.editSeq
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.cfg.DebounceWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// seq guards against a later edit or facet change that already
		// replaced or dispatched this staged text
		if s.closed || seq != s.editSeq {
			return
		}
		s.dispatchLocked()
	})
}

// SetOperation switches the query strategy and refetches immediately
func (s *Session) SetOperation(op types.Operation) {
	s.applyLocked(func() { s.filter.Operation = op })
}

// SetOrigins replaces the origin selection and refetches immediately
func (s *Session) SetOrigins(origins []string) {
	s.applyLocked(func() { s.filter.Origins = origins })
}

// SetLanguage switches the language and refetches immediately
func (s *Session) SetLanguage(language string) {
	s.applyLocked(func() { s.filter.Language = language })
}

// SetSort changes the ordering and refetches immediately
func (s *Session) SetSort(field types.SortField, order types.SortOrder) {
	s.applyLocked(func() {
		s.filter.SortBy = field
		s.filter.SortOrder = order
	})
}

// Apply replaces the whole filter, for example when restoring a saved
// search or a shared URL, and refetches immediately.
func (s *Session) Apply(filter types.UserFilter) {
	s.applyLocked(func() { s.filter = filter })
}

func (s *Session) applyLocked(mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	mutate()
	s.filter.Offset = 0
	s.editSeq++ // dispatching now covers any still-staged text edit
	s.dispatchLocked()
}

// LoadMore fetches the next page and appends it to the current results.
// It is a no-op unless a settled result reports another page.
func (s *Session) LoadMore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateSettled || s.results == nil || s.results.NextOffset == nil {
		return
	}

	s.filter.Offset = *s.results.NextOffset
	s.startFetchLocked(true)
}

// Refresh drops the cached page for the current filter and refetches
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	req := biz.FilterToRequest(s.filter, s.cfg.DefaultLimit)
	s.cache.Invalidate(s.ctx, req.CacheKey())
	s.dispatchLocked()
}

// Snapshot returns the current observable state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of snapshots published on every state
// change. Slow consumers miss intermediate snapshots rather than
// blocking the session.
func (s *Session) Subscribe() <-chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, 8)
	s.subs = append(s.subs, ch)
	return ch
}

// Close stops timers, cancels in-flight fetches and closes all
// subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.cancel()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

// dispatchLocked decides whether the current filter warrants a fetch.
// An empty filter returns the session to idle instead of querying.
func (s *Session) dispatchLocked() {
	if strings.TrimSpace(s.filter.QueryText) == "" && len(s.filter.Origins) == 0 {
		s.gen++ // invalidate any in-flight fetch
		s.results = nil
		s.lastErr = nil
		s.setState(StateIdle)
		return
	}
	s.startFetchLocked(false)
}

func (s *Session) startFetchLocked(appendPage bool) {
	s.gen++
	gen := s.gen
	filter := s.filter
	s.setState(StateFetching)

	go s.fetch(gen, filter, appendPage)
}

func (s *Session) fetch(gen uint64, filter types.UserFilter, appendPage bool) {
	req := biz.FilterToRequest(filter, s.cfg.DefaultLimit)

	envelope, err := s.cache.GetOrFetch(s.ctx, req.CacheKey(), s.cfg.CacheTTL, func(ctx context.Context) (*types.ResultEnvelope, error) {
		return s.executeWithRetry(ctx, req)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// a newer request superseded this one
		return
	}

	if err != nil {
		s.lastErr = err
		s.setState(StateErrored)
		s.logger.Warn("search session fetch failed",
			zap.String("query", req.QueryText),
			zap.Error(err))
		return
	}

	if appendPage && s.results != nil {
		merged := *envelope
		merged.Results = append(append([]types.WordRow{}, s.results.Results...), envelope.Results...)
		s.results = &merged
	} else {
		s.results = envelope
	}
	s.lastErr = nil
	s.setState(StateSettled)

	if s.hist != nil && !appendPage {
		s.hist.Add(filter.QueryText, filter)
	}

	if !s.cfg.DisablePrefetch && envelope.HasMore && envelope.NextOffset != nil {
		next := filter
		next.Offset = *envelope.NextOffset
		go s.prefetch(next)
	}
}

// prefetch warms the cache for the next page without touching state
func (s *Session) prefetch(filter types.UserFilter) {
	req := biz.FilterToRequest(filter, s.cfg.DefaultLimit)
	_, err := s.cache.GetOrFetch(s.ctx, req.CacheKey(), s.cfg.CacheTTL, func(ctx context.Context) (*types.ResultEnvelope, error) {
		return s.executeWithRetry(ctx, req)
	})
	if err != nil && s.ctx.Err() == nil {
		s.logger.Debug("next page prefetch failed",
			zap.Int("offset", req.Offset),
			zap.Error(err))
	}
}

// executeWithRetry retries transient store failures with linear backoff.
// Validation and other permanent failures surface immediately.
func (s *Session) executeWithRetry(ctx context.Context, req types.SearchRequest) (*types.ResultEnvelope, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
			}
		}

		envelope, err := s.exec.Search(ctx, req)
		if err == nil {
			return envelope, nil
		}
		lastErr = err
		if !apperrors.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (s *Session) setState(state State) {
	s.state = state
	snapshot := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:    s.state.String(),
		Filter:   s.filter,
		URLQuery: biz.EncodeFilter(s.filter),
		Results:  s.results,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}
