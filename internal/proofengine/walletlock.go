package proofengine

import "sync"

// walletLocks is a keyed mutex, one per wallet id, so two concurrent engine
// calls on the same wallet cannot both load the same UNSPENT set before
// either has persisted its swap result (spec §5's recommended per-wallet
// serialization).
type walletLocks struct {
	mu    sync.Mutex
	perID map[int64]*sync.Mutex
}

func (l *walletLocks) lock(walletID int64) (unlock func()) {
	l.mu.Lock()
	if l.perID == nil {
		l.perID = make(map[int64]*sync.Mutex)
	}
	m, ok := l.perID[walletID]
	if !ok {
		m = &sync.Mutex{}
		l.perID[walletID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
