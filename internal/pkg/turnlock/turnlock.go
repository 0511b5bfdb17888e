// Package turnlock lets one turn at a time run per session.
package turnlock

import (
	"errors"
	"sync"
)

var ErrTurnInProgress = errors.New("turn in progress")

type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func New() *Locker {
	return &Locker{held: make(map[string]struct{})}
}

// TryLock takes the lock for key without waiting. The returned unlock must be called
// exactly once; it is safe to defer.
func (l *Locker) TryLock(key string) (unlock func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, ErrTurnInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// Held reports the number of keys currently locked.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
