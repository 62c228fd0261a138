package scheduler

import "sync"

// leaseSet hands out at most one lease per bot name, serializing trading
// and retraining runs for the same instrument. Without it a slow
// retraining task could persist a stale config over a finished trading
// run's ledger update.
type leaseSet struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newLeaseSet() *leaseSet {
	return &leaseSet{busy: make(map[string]bool)}
}

// TryAcquire takes the lease for name if it is free.
func (l *leaseSet) TryAcquire(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[name] {
		return false
	}
	l.busy[name] = true
	return true
}

// Release frees the lease for name.
func (l *leaseSet) Release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, name)
}
