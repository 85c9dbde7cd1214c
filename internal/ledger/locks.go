package ledger

import "sync"

// AccountLocks serializes transaction submission per ledger account. The
// ledger assigns monotonically increasing sequence numbers per account, so
// two in-flight transactions from the same account race on the sequence;
// holding the account's lock across sign-and-submit removes the race without
// serializing unrelated accounts.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccountLocks creates an empty lock table.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for an address and returns the unlock function.
func (l *AccountLocks) Lock(address string) func() {
	l.mu.Lock()
	m, ok := l.locks[address]
	if !ok {
		m = &sync.Mutex{}
		l.locks[address] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
