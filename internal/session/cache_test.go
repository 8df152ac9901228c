package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"
	"shiksha/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	fetches int64
	block   chan struct{} // when set, fetches wait here
	err     error
}

func (f *fakeSource) GetByAccountID(_ context.Context, accountID int64) (*profiles.Profile, error) {
	atomic.AddInt64(&f.fetches, 1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &profiles.Profile{
		ID:         accountID,
		AccountID:  accountID,
		Role:       rbac.RoleTeacher,
		IsApproved: true,
	}, nil
}

func TestResolveCachesProfile(t *testing.T) {
	src := &fakeSource{}
	cache := session.NewCache(src, time.Minute)

	p, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.AccountID)

	_, err = cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&src.fetches))
}

func TestResolveCoalescesConcurrentFetches(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	cache := session.NewCache(src, time.Minute)

	var wg sync.WaitGroup
	results := make([]*profiles.Profile, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := cache.Resolve(context.Background(), 7)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	// Let both callers reach the cache before releasing the fetch.
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&src.fetches))
	assert.Same(t, results[0], results[1])
}

func TestResolveFailureCachesNothing(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}
	cache := session.NewCache(src, time.Minute)

	_, err := cache.Resolve(context.Background(), 7)
	require.Error(t, err)

	// A later attempt hits the store again instead of serving the failure.
	src.err = nil
	p, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.fetches))
}

func TestLogoutClearsCachedProfile(t *testing.T) {
	src := &fakeSource{}
	cache := session.NewCache(src, time.Minute)

	_, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)

	cache.Logout(7)

	_, err = cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.fetches))
}

func TestInvalidateAll(t *testing.T) {
	src := &fakeSource{}
	cache := session.NewCache(src, time.Minute)

	for _, id := range []int64{1, 2, 3} {
		_, err := cache.Resolve(context.Background(), id)
		require.NoError(t, err)
	}
	cache.InvalidateAll()

	_, err := cache.Resolve(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), atomic.LoadInt64(&src.fetches))
}

func TestInvalidateDuringFetchIsNotLost(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	cache := session.NewCache(src, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cache.Resolve(context.Background(), 7)
		assert.NoError(t, err)
	}()

	// Wait until the fetch is in flight, then invalidate before it finishes.
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&src.fetches) == 1
	}, time.Second, time.Millisecond)
	cache.Invalidate(7)

	close(src.block)
	<-done

	// The in-flight result must not have been cached: the next request goes
	// back to the store instead of serving a profile from before the edit.
	src.block = nil
	_, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.fetches))
}

func TestInvalidateAllDuringFetchIsNotLost(t *testing.T) {
	src := &fakeSource{block: make(chan struct{})}
	cache := session.NewCache(src, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cache.Resolve(context.Background(), 7)
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&src.fetches) == 1
	}, time.Second, time.Millisecond)
	cache.InvalidateAll()

	close(src.block)
	<-done

	src.block = nil
	_, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.fetches))
}

func TestExpiredEntryRefetches(t *testing.T) {
	src := &fakeSource{}
	cache := session.NewCache(src, 10*time.Millisecond)

	_, err := cache.Resolve(context.Background(), 7)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cache.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&src.fetches))
}
