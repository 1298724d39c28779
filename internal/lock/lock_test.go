package lock

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexMap_TryLock(t *testing.T) {
	m := NewMutexMap()

	require.True(t, m.TryLock("loop"))
	assert.False(t, m.TryLock("loop"), "second TryLock on the same key must fail")
	assert.True(t, m.TryLock("other"), "different keys are independent")
	m.Unlock("loop")
	assert.True(t, m.TryLock("loop"))
}

func TestMutexMap_ConcurrentTryLockHasOneWinner(t *testing.T) {
	m := NewMutexMap()
	var winners int64

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if m.TryLock("shared") {
				atomic.AddInt64(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), winners)
	m.Unlock("shared")
	assert.True(t, m.TryLock("shared"))
}

func TestFileLock_DoubleLockRejected(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nagd.lock")

	fl1 := NewFileLock(lockPath)
	require.NoError(t, fl1.TryLock())
	defer fl1.Unlock()

	fl2 := NewFileLock(lockPath)
	err := fl2.TryLock()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked), "got %v", err)
}

func TestFileLock_UnlockAllowsRelock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nagd.lock")

	fl1 := NewFileLock(lockPath)
	require.NoError(t, fl1.TryLock())
	require.NoError(t, fl1.Unlock())

	fl2 := NewFileLock(lockPath)
	require.NoError(t, fl2.TryLock())
	require.NoError(t, fl2.Unlock())
	require.NoError(t, fl2.Unlock(), "double unlock should be safe")
}

func TestLease_ExcludesSecondHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nagd.lock")
	keys := NewMutexMap()

	first := NewLease(keys, "loop", lockPath)
	require.NoError(t, first.TryAcquire())

	sameProcess := NewLease(keys, "loop", "")
	assert.ErrorIs(t, sameProcess.TryAcquire(), ErrLocked)

	otherProcess := NewLease(NewMutexMap(), "loop", lockPath)
	assert.ErrorIs(t, otherProcess.TryAcquire(), ErrLocked)

	require.NoError(t, first.Release())
	require.NoError(t, otherProcess.TryAcquire())
	require.NoError(t, otherProcess.Release())
}
