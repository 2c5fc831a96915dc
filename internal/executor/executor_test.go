package executor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tenantmirror/tenant-mirror/internal/cache"
	"github.com/tenantmirror/tenant-mirror/internal/categories"
	categorymocks "github.com/tenantmirror/tenant-mirror/internal/categories/mocks"
	"github.com/tenantmirror/tenant-mirror/internal/executor"
	"github.com/tenantmirror/tenant-mirror/internal/sealer"
	statusmocks "github.com/tenantmirror/tenant-mirror/internal/status/mocks"
)

const testTenant = "tenant-a"

func newTestStore(t *testing.T) cache.Store {
	t.Helper()
	return cache.NewFileStore(t.TempDir(), sealer.NewPassthrough(), time.Hour)
}

func groupItems(n int) []json.RawMessage {
	items := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, json.RawMessage(`{"id":"`+string(rune('a'+i))+`"}`))
	}
	return items
}

// newGroupsFetcher builds a mock fetcher identifying as the Groups category
func newGroupsFetcher(ctrl *gomock.Controller) *categorymocks.MockFetcher {
	fetcher := categorymocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Category().Return("groups").AnyTimes()
	fetcher.EXPECT().CacheKey().Return("Groups").AnyTimes()
	return fetcher
}

func TestExecutor_Execute_Success(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(2)), nil)

	gomock.InOrder(
		reporter.EXPECT().SetBusy(true),
		reporter.EXPECT().SetStatus("Loading groups..."),
		reporter.EXPECT().RefreshView(),
		reporter.EXPECT().SetStatus("Loaded 2 groups"),
		reporter.EXPECT().SetBusy(false),
	)

	exec := executor.New(store, reporter, nil)

	result, err := exec.Execute(context.Background(), fetcher, testTenant)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	// The fetched collection must be durably cached
	entry, err := store.Get(context.Background(), testTenant, "Groups")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.ItemCount)
}

func TestExecutor_Execute_FetchFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	fetchErr := errors.New("connection refused")
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(nil, fetchErr)

	gomock.InOrder(
		reporter.EXPECT().SetBusy(true),
		reporter.EXPECT().SetStatus("Loading groups..."),
		reporter.EXPECT().SetError("connection refused"),
		reporter.EXPECT().SetStatus("Failed to load groups"),
		reporter.EXPECT().SetBusy(false),
	)

	exec := executor.New(store, reporter, nil)

	result, err := exec.Execute(context.Background(), fetcher, testTenant)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, fetchErr)

	// Nothing must have been written for the failed category
	_, err = store.Get(context.Background(), testTenant, "Groups")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestExecutor_Execute_CancellationIsNotReported(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(nil, context.Canceled)

	// Busy must still be reset, but no error or failure status is emitted
	gomock.InOrder(
		reporter.EXPECT().SetBusy(true),
		reporter.EXPECT().SetStatus("Loading groups..."),
		reporter.EXPECT().SetBusy(false),
	)

	exec := executor.New(store, reporter, nil)

	result, err := exec.Execute(context.Background(), fetcher, testTenant)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestExecutor_Execute_EmptyTenantSkipsCacheWrite(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(1)), nil)

	exec := executor.New(store, reporter, nil)

	result, err := exec.Execute(context.Background(), fetcher, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)

	entries, err := store.List(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// failingStore wraps a Store and fails every write
type failingStore struct {
	cache.Store
	writeErr error
}

func (s *failingStore) Set(context.Context, string, string, any, time.Duration) (*cache.Entry, error) {
	return nil, s.writeErr
}

func TestExecutor_Execute_CacheWriteFailureKeepsResult(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := &failingStore{Store: newTestStore(t), writeErr: errors.New("disk full")}
	reporter := statusmocks.NewMockReporter(ctrl)
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(3)), nil)

	gomock.InOrder(
		reporter.EXPECT().SetBusy(true),
		reporter.EXPECT().SetStatus("Loading groups..."),
		reporter.EXPECT().SetError("disk full"),
		reporter.EXPECT().RefreshView(),
		reporter.EXPECT().SetStatus("Loaded 3 groups"),
		reporter.EXPECT().SetBusy(false),
	)

	exec := executor.New(store, reporter, nil)

	result, err := exec.Execute(context.Background(), fetcher, testTenant)
	require.NoError(t, err, "a failed cache write must not discard the fetched collection")
	assert.Equal(t, 3, result.Count)
}

func TestExecutor_Execute_UsesConfiguredTTL(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(1)), nil)

	ttlFor := func(cacheKey string) time.Duration {
		assert.Equal(t, "Groups", cacheKey)
		return 10 * time.Minute
	}
	exec := executor.New(store, reporter, ttlFor)

	_, err := exec.Execute(context.Background(), fetcher, testTenant)
	require.NoError(t, err)

	entry, err := store.Get(context.Background(), testTenant, "Groups")
	require.NoError(t, err)
	assert.Equal(t, entry.CachedAt.Add(10*time.Minute), entry.ExpiresAt)
}

func TestExecutor_GetOrFetch_PreferCacheHit(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	fetcher := newGroupsFetcher(ctrl)
	// Fetch must never be called on a cache hit

	_, err := store.Set(context.Background(), testTenant, "Groups", groupItems(4), 0)
	require.NoError(t, err)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, testTenant, executor.FreshnessPreferCache)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)
}

func TestExecutor_GetOrFetch_AlwaysFetchIgnoresCache(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(2)), nil)

	_, err := store.Set(context.Background(), testTenant, "Groups", groupItems(9), 0)
	require.NoError(t, err)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, testTenant, executor.FreshnessAlwaysFetch)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count, "stale cached count must be replaced by the fresh fetch")
}

func TestExecutor_GetOrFetch_RespectTTLRefetchesExpired(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	// Entries written with a negative TTL fall back to the store default;
	// use a tiny default so the entry is already expired.
	store := cache.NewFileStore(t.TempDir(), sealer.NewPassthrough(), time.Nanosecond)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(5)), nil)

	_, err := store.Set(context.Background(), testTenant, "Groups", groupItems(1), 0)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, testTenant, executor.FreshnessRespectTTL)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Count, "expired entry must trigger a re-fetch")
}

func TestExecutor_GetOrFetch_RespectTTLServesFreshEntry(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	fetcher := newGroupsFetcher(ctrl)

	_, err := store.Set(context.Background(), testTenant, "Groups", groupItems(3), time.Hour)
	require.NoError(t, err)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, testTenant, executor.FreshnessRespectTTL)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
}

func TestExecutor_GetOrFetch_UndecodablePayloadRefetches(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	reporter.EXPECT().SetError(gomock.Any())
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(2)), nil)

	// A scalar payload cannot decode as a collection
	_, err := store.Set(context.Background(), testTenant, "Groups", "not-a-collection", 0)
	require.NoError(t, err)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, testTenant, executor.FreshnessPreferCache)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count, "undecodable cache payload must be treated as a miss")
}

func TestExecutor_GetOrFetch_EmptyTenantAlwaysFetches(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	store := newTestStore(t)
	reporter := statusmocks.NewMockReporter(ctrl)
	reporter.EXPECT().SetBusy(gomock.Any()).AnyTimes()
	reporter.EXPECT().SetStatus(gomock.Any()).AnyTimes()
	reporter.EXPECT().RefreshView().AnyTimes()
	fetcher := newGroupsFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(categories.NewResult(groupItems(1)), nil)

	exec := executor.New(store, reporter, nil)

	result, err := exec.GetOrFetch(context.Background(), fetcher, "", executor.FreshnessPreferCache)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}
