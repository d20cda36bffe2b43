package service

import "sync"

// dateLocks is a mutex per departure date. Entries are reference counted and
// dropped once the last holder unlocks, so the map only holds dates with an
// orchestration in flight.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*dateLock)}
}

// lock blocks until the lock for date is held and returns its release func.
func (d *dateLocks) lock(date string) (unlock func()) {
	d.mu.Lock()
	l, ok := d.locks[date]
	if !ok {
		l = &dateLock{}
		d.locks[date] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, date)
		}
		d.mu.Unlock()
	}
}
