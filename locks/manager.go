package locks

import (
	"errors"
	"sync"

	"github.com/fulldump/accountsdb/account"
)

// Manager keeps the set of pubkeys claimed by in-flight batches.
type Manager struct {
	mutex  sync.Mutex
	locked map[account.Pubkey]struct{}
}

func New() *Manager {
	return &Manager{
		locked: map[account.Pubkey]struct{}{},
	}
}

// LockBatch claims every key set in order, in a single critical section. A set
// with any key already claimed (by someone else or by an earlier set of the
// same batch) gets account.ErrAccountInUse and claims nothing.
func (m *Manager) LockBatch(keySets [][]account.Pubkey) []error {

	m.mutex.Lock()
	defer m.mutex.Unlock()

	results := make([]error, len(keySets))

	for i, keys := range keySets {
		if m.anyLocked(keys) {
			results[i] = account.ErrAccountInUse
			continue
		}
		for _, id := range keys {
			m.locked[id] = struct{}{}
		}
	}

	return results
}

func (m *Manager) anyLocked(keys []account.Pubkey) bool {
	for _, id := range keys {
		if _, exists := m.locked[id]; exists {
			return true
		}
	}
	return false
}

// UnlockBatch releases the key sets that were claimed by LockBatch. results
// must be the slice it returned, possibly with other errors added by the
// caller afterwards: only ErrAccountInUse entries are skipped.
func (m *Manager) UnlockBatch(keySets [][]account.Pubkey, results []error) {

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, keys := range keySets {
		if i < len(results) && errors.Is(results[i], account.ErrAccountInUse) {
			continue
		}
		for _, id := range keys {
			delete(m.locked, id)
		}
	}
}

func (m *Manager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.locked)
}

func (m *Manager) IsLocked(id account.Pubkey) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, exists := m.locked[id]
	return exists
}
