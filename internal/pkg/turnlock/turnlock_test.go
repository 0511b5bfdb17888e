package turnlock

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock(t *testing.T) {
	l := New()

	unlock, err := l.TryLock("a")
	require.NoError(t, err)

	_, err = l.TryLock("a")
	assert.ErrorIs(t, err, ErrTurnInProgress)

	unlockB, err := l.TryLock("b")
	require.NoError(t, err, "other sessions are independent")
	unlockB()

	unlock()
	unlock()
	assert.Equal(t, 0, l.Held())

	unlock, err = l.TryLock("a")
	require.NoError(t, err)
	unlock()
}

func TestTryLockConcurrent(t *testing.T) {
	l := New()
	var wins atomic.Int32
	var wg, attempted sync.WaitGroup
	start := make(chan struct{})
	release := make(chan struct{})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		attempted.Add(1)
		go func() {
			defer wg.Done()
			<-start
			unlock, err := l.TryLock("session")
			attempted.Done()
			if err != nil {
				return
			}
			wins.Add(1)
			<-release
			unlock()
		}()
	}

	close(start)
	attempted.Wait()
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 0, l.Held())
}
