package accounts

import (
	"errors"
	"fmt"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/accountsdb"
)

// LoadResult holds the accounts of one transaction, in AccountKeys order, or
// the reason it was rejected.
type LoadResult struct {
	Accounts []*account.Account
	Err      error
}

// LoadAccounts validates and loads every transaction whose incoming result is
// nil. Rejections are reported per transaction and counted in counters (may be
// nil). The fee is deducted from the returned fee payer copy only, nothing is
// persisted.
//
// A non nil error means storage is broken and the whole batch must stop.
func (a *Accounts) LoadAccounts(txs []Transaction, oracle RecencyOracle, results []error, maxAge int, counters *ErrorCounters) ([]LoadResult, error) {

	a.mutex.RLock()
	defer a.mutex.RUnlock()

	loaded := make([]LoadResult, len(txs))

	for i := range txs {
		if i < len(results) && results[i] != nil {
			loaded[i].Err = results[i]
			continue
		}
		accounts, err := a.loadTransaction(&txs[i], oracle, maxAge)
		if err != nil {
			var r rejection
			if !errors.As(err, &r) {
				return nil, fmt.Errorf("load transaction %d: %w", i, err)
			}
			counters.Add(r.err)
			loaded[i].Err = r.err
			continue
		}
		loaded[i].Accounts = accounts
	}

	return loaded, nil
}

// rejection marks validation failures apart from storage errors.
type rejection struct {
	err error
}

func (r rejection) Error() string {
	return r.err.Error()
}

func (a *Accounts) loadTransaction(tx *Transaction, oracle RecencyOracle, maxAge int) ([]*account.Account, error) {

	id, ok := tx.primary()
	if !ok {
		return nil, rejection{account.ErrAccountNotFound}
	}

	payer, found, err := a.db.Load(id)
	if err != nil {
		return nil, err
	}

	if len(tx.Signatures) == 0 && tx.Fee != 0 {
		return nil, rejection{account.ErrMissingFeeSignature}
	}
	if !found {
		return nil, rejection{account.ErrAccountNotFound}
	}
	if payer.Tokens < tx.Fee {
		return nil, rejection{account.ErrInsufficientFundsForFee}
	}
	if !oracle.CheckFreshness(tx.RecentToken, maxAge) {
		return nil, rejection{account.ErrFreshnessExpired}
	}
	err = oracle.Reserve(tx.RecentToken, tx.firstSignature())
	if err != nil {
		return nil, rejection{err}
	}

	accounts := make([]*account.Account, len(tx.AccountKeys))
	accounts[0] = payer
	for j := 1; j < len(tx.AccountKeys); j++ {
		acc, found, err := a.db.Load(tx.AccountKeys[j])
		if err != nil {
			return nil, err
		}
		if !found {
			acc = &account.Account{}
		}
		accounts[j] = acc
	}

	payer.Tokens -= tx.Fee

	return accounts, nil
}

// StoreAccounts persists the accounts of every transaction that got a nil
// result and was loaded successfully.
func (a *Accounts) StoreAccounts(txs []Transaction, results []error, loaded []LoadResult) error {

	entries := make([]accountsdb.BatchEntry, len(loaded))
	for i := range loaded {
		if i >= len(txs) {
			return fmt.Errorf("%d loaded entries for %d transactions", len(loaded), len(txs))
		}
		entries[i] = accountsdb.BatchEntry{
			Keys:     txs[i].AccountKeys,
			Accounts: loaded[i].Accounts,
			Err:      loaded[i].Err,
		}
		if i < len(results) && results[i] != nil {
			entries[i].Err = results[i]
		}
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.db.StoreBatch(entries)
}
