package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/biz"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
	"github.com/hareeshbabu82ns/devhub-search/internal/history"
	apperrors "github.com/hareeshbabu82ns/devhub-search/internal/pkg/errors"
)

type fakeExecutor struct {
	mu       sync.Mutex
	calls    []types.SearchRequest
	delay    time.Duration
	failures int32
	total    int64
}

func (f *fakeExecutor) Search(ctx context.Context, req types.SearchRequest) (*types.ResultEnvelope, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	if atomic.AddInt32(&f.failures, -1) >= 0 {
		return nil, apperrors.New(apperrors.ErrStoreUnavailable, "store down")
	}

	total := f.total
	if total == 0 {
		total = 30
	}

	rows := make([]types.WordRow, 0, req.Limit)
	for i := 0; i < req.Limit && int64(req.Offset+i) < total; i++ {
		rows = append(rows, types.WordRow{
			ID:   uint64(req.Offset + i + 1),
			Word: fmt.Sprintf("%s-%d", req.QueryText, req.Offset+i),
		})
	}
	env := biz.Assemble(rows, total, req.Limit, req.Offset)
	return &env, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExecutor) lastCall() types.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func testConfig() Config {
	return Config{
		DebounceWindow:  10 * time.Millisecond,
		CacheTTL:        time.Minute,
		MaxRetries:      2,
		RetryBackoff:    time.Millisecond,
		DefaultLimit:    10,
		DisablePrefetch: true,
	}
}

func newTestSession(t *testing.T, cfg Config, exec Executor) *Session {
	t.Helper()
	s := New(cfg, exec, NewMemoryCache(), nil, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestSessionStartsIdle(t *testing.T) {
	s := newTestSession(t, testConfig(), &fakeExecutor{})
	assert.Equal(t, "idle", s.Snapshot().State)
}

func TestClearedQueryReturnsToIdle(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	s.SetQueryText("   ")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "idle"
	}, time.Second, 2*time.Millisecond)
	assert.Nil(t, s.Snapshot().Results)
}

func TestDebounceCoalescesEdits(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("r")
	s.SetQueryText("ra")
	s.SetQueryText("ram")
	s.SetQueryText("rama")

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	assert.Equal(t, 1, exec.callCount())
	assert.Equal(t, "rama", exec.lastCall().QueryText)
}

func TestFacetChangeFetchesImmediately(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, testConfig(), exec)

	s.SetOrigins([]string{"MW"})

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, exec.callCount())
	assert.Equal(t, []string{"MW"}, exec.lastCall().Origins)
}

func TestLatestRequestWins(t *testing.T) {
	exec := &fakeExecutor{delay: 30 * time.Millisecond}
	s := newTestSession(t, testConfig(), exec)

	s.SetOrigins([]string{"MW"})
	s.SetQueryText("agni")

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == "settled" && snap.Results != nil
	}, 2*time.Second, 2*time.Millisecond)

	// the settled page must come from the newest request
	snap := s.Snapshot()
	require.NotEmpty(t, snap.Results.Results)
	assert.Contains(t, snap.Results.Results[0].Word, "agni")

	// stale responses must not flip the state afterwards
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, "settled", s.Snapshot().State)
	assert.Contains(t, s.Snapshot().Results.Results[0].Word, "agni")
}

func TestEditDuringFetchSupersedesInFlight(t *testing.T) {
	cfg := testConfig()
	cfg.DebounceWindow = 40 * time.Millisecond
	exec := &fakeExecutor{delay: 30 * time.Millisecond}
	s := newTestSession(t, cfg, exec)

	s.SetQueryText("rama")
	// wait for the first request to actually be in flight
	require.Eventually(t, func() bool {
		return exec.callCount() == 1
	}, time.Second, time.Millisecond)

	// keystroke while the first fetch is still running
	s.SetQueryText("agni")

	// the new text must be fetched and win
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == "settled" && snap.Results != nil &&
			len(snap.Results.Results) > 0 &&
			snap.Results.Results[0].Word == "agni-0"
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, 2, exec.callCount())
	assert.Equal(t, "agni", s.Snapshot().Filter.QueryText)

	// the superseded response must not resurface later
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "agni-0", s.Snapshot().Results.Results[0].Word)
}

func TestTransientFailureRetriesThenSettles(t *testing.T) {
	exec := &fakeExecutor{failures: 2}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("rama")

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, 3, exec.callCount())
}

func TestExhaustedRetriesEnterErrored(t *testing.T) {
	exec := &fakeExecutor{failures: 10}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("rama")

	require.Eventually(t, func() bool {
		return s.Snapshot().State == "errored"
	}, 2*time.Second, 2*time.Millisecond)
	assert.NotEmpty(t, s.Snapshot().Error)

	// a later edit recovers the session
	atomic.StoreInt32(&exec.failures, 0)
	s.SetQueryText("agni")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, 2*time.Second, 2*time.Millisecond)
	assert.Empty(t, s.Snapshot().Error)
}

func TestLoadMoreAppendsNextPage(t *testing.T) {
	exec := &fakeExecutor{total: 25}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	first := s.Snapshot().Results
	require.Len(t, first.Results, 10)
	require.NotNil(t, first.NextOffset)

	s.LoadMore()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == "settled" && len(snap.Results.Results) == 20
	}, time.Second, 2*time.Millisecond)

	s.LoadMore()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == "settled" && len(snap.Results.Results) == 25
	}, time.Second, 2*time.Millisecond)

	// exhausted, further calls are no-ops
	s.LoadMore()
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, s.Snapshot().Results.Results, 25)
}

func TestPrefetchWarmsNextPage(t *testing.T) {
	cfg := testConfig()
	cfg.DisablePrefetch = false
	exec := &fakeExecutor{total: 20}
	cache := NewMemoryCache()

	s := New(cfg, exec, cache, nil, zap.NewNop())
	t.Cleanup(s.Close)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	// the next page lands in the cache without user action
	next := s.Snapshot().Filter
	next.Offset = 10
	nextKey := biz.FilterToRequest(next, cfg.DefaultLimit).CacheKey()
	require.Eventually(t, func() bool {
		return cache.Contains(nextKey)
	}, time.Second, 2*time.Millisecond)

	calls := exec.callCount()
	s.LoadMore()
	require.Eventually(t, func() bool {
		return len(s.Snapshot().Results.Results) == 20
	}, time.Second, 2*time.Millisecond)
	// served from cache, no extra executor call beyond any prefetch
	assert.Equal(t, calls, exec.callCount())
}

func TestRepeatedQueryServedFromCache(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, testConfig(), exec)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	s.SetQueryText("agni")
	require.Eventually(t, func() bool {
		return exec.callCount() == 2 && s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 2, exec.callCount())
}

func TestHistoryRecordsSettledSearches(t *testing.T) {
	exec := &fakeExecutor{}
	hist := history.NewLog(history.NewMemoryStorage())
	s := New(testConfig(), exec, NewMemoryCache(), hist, zap.NewNop())
	t.Cleanup(s.Close)

	s.SetQueryText("rama")
	require.Eventually(t, func() bool {
		return s.Snapshot().State == "settled"
	}, time.Second, 2*time.Millisecond)

	items := hist.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "rama", items[0].QueryText)
}

func TestSubscribeSeesStateTransitions(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, testConfig(), exec)

	ch := s.Subscribe()
	s.SetQueryText("rama")

	seen := map[string]bool{}
	deadline := time.After(time.Second)
	for !seen["settled"] {
		select {
		case snap, ok := <-ch:
			require.True(t, ok)
			seen[snap.State] = true
		case <-deadline:
			t.Fatalf("never settled, saw %v", seen)
		}
	}
	assert.True(t, seen["debouncing"])
}
