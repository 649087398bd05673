package xkeylock

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Acquire_ThenUnlock_ReleasesKey(t *testing.T) {
	locker := New()
	defer locker.Close()

	handle, err := locker.Acquire(context.Background(), "user:1")
	require.NoError(t, err)
	assert.Equal(t, "user:1", handle.Key())
	assert.Equal(t, 1, locker.Len())

	require.NoError(t, handle.Unlock())
	assert.Equal(t, 0, locker.Len())
}

func TestLocker_Acquire_SameKey_Mutex(t *testing.T) {
	// Given：同一 key 的两个竞争者
	locker := New()
	defer locker.Close()
	ctx := context.Background()

	first, err := locker.Acquire(ctx, "user:1")
	require.NoError(t, err)

	// When：第二个获取者在锁释放前必须一直等待
	acquired := make(chan struct{})
	go func() {
		h, err := locker.Acquire(ctx, "user:1")
		assert.NoError(t, err)
		defer h.Unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while first holds the lock")
	case <-time.After(50 * time.Millisecond):
	}

	// Then：释放后等待者获得锁
	require.NoError(t, first.Unlock())
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire should proceed after unlock")
	}
}

func TestLocker_Acquire_DifferentKeys_Independent(t *testing.T) {
	locker := New()
	defer locker.Close()
	ctx := context.Background()

	h1, err := locker.Acquire(ctx, "user:1")
	require.NoError(t, err)
	defer h1.Unlock()

	// 另一个 key 不受影响
	h2, err := locker.Acquire(ctx, "user:2")
	require.NoError(t, err)
	defer h2.Unlock()
}

func TestLocker_Acquire_CtxTimeout_ReturnsCtxErr(t *testing.T) {
	locker := New()
	defer locker.Close()

	holder, err := locker.Acquire(context.Background(), "user:1")
	require.NoError(t, err)
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "user:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 等待者退出后引用计数回落，持有者释放后条目被回收
	require.NoError(t, holder.Unlock())
	assert.Equal(t, 0, locker.Len())
}

func TestLocker_TryAcquire_WhenHeld_ReturnsNilHandle(t *testing.T) {
	locker := New()
	defer locker.Close()

	holder, err := locker.Acquire(context.Background(), "user:1")
	require.NoError(t, err)
	defer holder.Unlock()

	h, err := locker.TryAcquire("user:1")
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestHandle_Unlock_Twice_ReturnsErrNotHeld(t *testing.T) {
	locker := New()
	defer locker.Close()

	handle, err := locker.Acquire(context.Background(), "user:1")
	require.NoError(t, err)
	require.NoError(t, handle.Unlock())

	assert.ErrorIs(t, handle.Unlock(), ErrNotHeld)
}

func TestLocker_Acquire_EmptyKey_ReturnsError(t *testing.T) {
	locker := New()
	defer locker.Close()

	_, err := locker.Acquire(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocker_Acquire_AfterClose_ReturnsErrClosed(t *testing.T) {
	locker := New()
	require.NoError(t, locker.Close())

	_, err := locker.Acquire(context.Background(), "user:1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLocker_ConcurrentSameKey_CriticalSectionIsExclusive(t *testing.T) {
	// Given
	locker := New(WithShardCount(8))
	defer locker.Close()
	ctx := context.Background()

	const goroutines = 50
	counter := 0 // 无额外同步，互斥性由锁保证

	// When
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := locker.Acquire(ctx, "user:1")
			if !assert.NoError(t, err) {
				return
			}
			counter++
			_ = h.Unlock()
		}()
	}
	wg.Wait()

	// Then：无竞争丢失
	assert.Equal(t, goroutines, counter)
	assert.Equal(t, 0, locker.Len())
}

func TestLocker_ManyKeys_EntriesRecycled(t *testing.T) {
	locker := New()
	defer locker.Close()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		h, err := locker.Acquire(ctx, "user:"+strconv.Itoa(i))
		require.NoError(t, err)
		require.NoError(t, h.Unlock())
	}

	assert.Equal(t, 0, locker.Len())
}
