package accounts

import (
	"sync"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/locks"
)

// Accounts is the account store shared by concurrent workers. Engine access
// goes through one RWMutex; pubkey claims go through an independent lock
// manager and never take the engine lock.
type Accounts struct {
	mutex sync.RWMutex
	db    *accountsdb.DB
	locks *locks.Manager
}

func New(config accountsdb.Config) (*Accounts, error) {

	db, err := accountsdb.New(config)
	if err != nil {
		return nil, err
	}

	return &Accounts{
		db:    db,
		locks: locks.New(),
	}, nil
}

// LoadSlow reads a single account. It is meant for tooling and tests, batches
// should use LoadAccounts.
func (a *Accounts) LoadSlow(id account.Pubkey) (*account.Account, bool, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.Load(id)
}

func (a *Accounts) StoreSlow(id account.Pubkey, acc *account.Account) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.db.Store(id, acc)
}

func (a *Accounts) HashInternalState() (account.Hash, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.HashState()
}

func (a *Accounts) TransactionCount() uint64 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.TransactionCount()
}

func (a *Accounts) IncrementTransactionCount(n uint64) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.db.IncrementTransactionCount(n)
}

func (a *Accounts) Depth() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.Depth()
}

func (a *Accounts) Keys() []account.Pubkey {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.Keys()
}

func (a *Accounts) FilteredAccounts(filter func(id account.Pubkey, acc *account.Account) bool) ([]accountsdb.Entry, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.Accounts(filter)
}

func (a *Accounts) Stats() accountsdb.Stats {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.db.Stats()
}

func (a *Accounts) Checkpoint() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.db.Checkpoint()
}

func (a *Accounts) Rollback() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.db.Rollback()
}

func (a *Accounts) Purge(depth int) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.db.Purge(depth)
}

func (a *Accounts) Close() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.db.Close()
}

// LockAccounts claims the account keys of every transaction, see
// locks.Manager.LockBatch. Every call must be paired with UnlockAccounts.
func (a *Accounts) LockAccounts(txs []Transaction) []error {

	results := a.locks.LockBatch(keySets(txs))

	for _, err := range results {
		if err != nil {
			LockConflicts.Inc()
		}
	}
	LockedAccounts.Set(float64(a.locks.Len()))

	return results
}

func (a *Accounts) UnlockAccounts(txs []Transaction, results []error) {
	a.locks.UnlockBatch(keySets(txs), results)
	LockedAccounts.Set(float64(a.locks.Len()))
}

// WithLockedAccounts runs fn while the account keys of txs are claimed. fn
// receives the lock results, entries with ErrAccountInUse own nothing. The
// claims are released however fn returns.
func (a *Accounts) WithLockedAccounts(txs []Transaction, fn func(results []error) error) error {

	results := a.LockAccounts(txs)
	defer a.UnlockAccounts(txs, results)

	return fn(results)
}

func keySets(txs []Transaction) [][]account.Pubkey {
	sets := make([][]account.Pubkey, len(txs))
	for i, tx := range txs {
		sets[i] = tx.AccountKeys
	}
	return sets
}
