package accounts

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/accountsdb/account"
	"github.com/fulldump/accountsdb/accountsdb"
	"github.com/fulldump/accountsdb/storage"
)

type fakeOracle struct {
	expired  map[account.Hash]bool
	unknown  map[account.Hash]bool
	reserved map[string]bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		expired:  map[account.Hash]bool{},
		unknown:  map[account.Hash]bool{},
		reserved: map[string]bool{},
	}
}

func (o *fakeOracle) CheckFreshness(token account.Hash, maxAge int) bool {
	return !o.expired[token]
}

func (o *fakeOracle) Reserve(token account.Hash, signature account.Signature) error {
	if o.unknown[token] {
		return account.ErrTokenNotFound
	}
	key := token.String() + "/" + string(signature)
	if o.reserved[key] {
		return account.ErrDuplicateSignature
	}
	o.reserved[key] = true
	return nil
}

func newTestAccounts(t *testing.T) *Accounts {
	a, err := New(accountsdb.Config{
		Paths:     []string{t.TempDir()},
		ShardBits: 1,
		Storage: storage.Options{
			InitialSize: 4096,
			GrowSize:    4096,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	biff.AssertNil(err)
	t.Cleanup(func() {
		a.Close()
	})
	return a
}

func fund(a *Accounts, tokens uint64) account.Pubkey {
	id := account.NewRandomPubkey()
	err := a.StoreSlow(id, &account.Account{Tokens: tokens})
	biff.AssertNil(err)
	return id
}

func TestLoadAccounts_Validation(t *testing.T) {

	a := newTestAccounts(t)
	oracle := newFakeOracle()

	rich := fund(a, 100)
	poor := fund(a, 1)
	other := fund(a, 7)
	missing := account.NewRandomPubkey()

	expired := account.Hash{1}
	unknown := account.Hash{2}
	oracle.expired[expired] = true
	oracle.unknown[unknown] = true

	sig := func(s string) []account.Signature {
		return []account.Signature{account.Signature(s)}
	}

	txs := []Transaction{
		{AccountKeys: []account.Pubkey{rich, other, missing}, Fee: 10, Signatures: sig("ok")},
		{AccountKeys: []account.Pubkey{rich}, Fee: 10},
		{AccountKeys: []account.Pubkey{missing}, Fee: 1, Signatures: sig("a")},
		{AccountKeys: []account.Pubkey{poor}, Fee: 2, Signatures: sig("b")},
		{AccountKeys: []account.Pubkey{rich}, Fee: 1, Signatures: sig("c"), RecentToken: expired},
		{AccountKeys: []account.Pubkey{rich}, Fee: 1, Signatures: sig("d"), RecentToken: unknown},
		{AccountKeys: []account.Pubkey{rich}, Fee: 1, Signatures: sig("ok")},
		{AccountKeys: []account.Pubkey{rich}, Fee: 1, Signatures: sig("e")},
	}
	results := make([]error, len(txs))
	results[7] = account.ErrAccountInUse

	counters := &ErrorCounters{}
	loaded, err := a.LoadAccounts(txs, oracle, results, 10, counters)
	biff.AssertNil(err)

	biff.AssertNil(loaded[0].Err)
	biff.AssertEqual(len(loaded[0].Accounts), 3)
	biff.AssertEqual(loaded[0].Accounts[0].Tokens, uint64(90))
	biff.AssertEqual(loaded[0].Accounts[1].Tokens, uint64(7))
	biff.AssertTrue(loaded[0].Accounts[2].Equal(&account.Account{}))

	biff.AssertEqual(loaded[1].Err, account.ErrMissingFeeSignature)
	biff.AssertEqual(loaded[2].Err, account.ErrAccountNotFound)
	biff.AssertEqual(loaded[3].Err, account.ErrInsufficientFundsForFee)
	biff.AssertEqual(loaded[4].Err, account.ErrFreshnessExpired)
	biff.AssertEqual(loaded[5].Err, account.ErrTokenNotFound)
	biff.AssertEqual(loaded[6].Err, account.ErrDuplicateSignature)
	biff.AssertEqual(loaded[7].Err, account.ErrAccountInUse)

	biff.AssertEqual(counters.MissingFeeSignature, 1)
	biff.AssertEqual(counters.AccountNotFound, 1)
	biff.AssertEqual(counters.InsufficientFunds, 1)
	biff.AssertEqual(counters.FreshnessExpired, 1)
	biff.AssertEqual(counters.TokenNotFound, 1)
	biff.AssertEqual(counters.DuplicateSignature, 1)
	biff.AssertEqual(counters.Total(), 6)

	// nothing is persisted by loading
	payer, _, _ := a.LoadSlow(rich)
	biff.AssertEqual(payer.Tokens, uint64(100))
}

func TestLoadAccounts_ZeroFeeWithoutSignature(t *testing.T) {

	a := newTestAccounts(t)
	payer := fund(a, 5)

	loaded, err := a.LoadAccounts([]Transaction{
		{AccountKeys: []account.Pubkey{payer}},
	}, newFakeOracle(), nil, 10, nil)

	biff.AssertNil(err)
	biff.AssertNil(loaded[0].Err)
	biff.AssertEqual(loaded[0].Accounts[0].Tokens, uint64(5))
}

func TestStoreAccounts_SkipsFailed(t *testing.T) {

	a := newTestAccounts(t)
	oracle := newFakeOracle()

	x := fund(a, 50)
	y := fund(a, 50)
	dst := account.NewRandomPubkey()

	txs := []Transaction{
		{AccountKeys: []account.Pubkey{x, dst}, Fee: 5, Signatures: []account.Signature{account.Signature("x")}},
		{AccountKeys: []account.Pubkey{y, dst}, Fee: 5, Signatures: []account.Signature{account.Signature("y")}},
	}

	loaded, err := a.LoadAccounts(txs, oracle, nil, 10, nil)
	biff.AssertNil(err)

	// move 20 tokens to dst in both
	for _, l := range loaded {
		l.Accounts[0].Tokens -= 20
		l.Accounts[1].Tokens += 20
	}

	results := []error{nil, errors.New("program failed")}
	biff.AssertNil(a.StoreAccounts(txs, results, loaded))

	xAccount, _, _ := a.LoadSlow(x)
	biff.AssertEqual(xAccount.Tokens, uint64(25))
	yAccount, _, _ := a.LoadSlow(y)
	biff.AssertEqual(yAccount.Tokens, uint64(50))
	dstAccount, _, _ := a.LoadSlow(dst)
	biff.AssertEqual(dstAccount.Tokens, uint64(20))
}

func TestWithLockedAccounts(t *testing.T) {

	a := newTestAccounts(t)
	x, y := account.NewRandomPubkey(), account.NewRandomPubkey()

	txs := []Transaction{
		{AccountKeys: []account.Pubkey{x}},
		{AccountKeys: []account.Pubkey{x, y}},
	}

	biff.Alternative("With locked accounts", func(alt *biff.A) {

		alt.Alternative("Self conflict", func(alt *biff.A) {
			err := a.WithLockedAccounts(txs, func(results []error) error {
				biff.AssertNil(results[0])
				biff.AssertEqual(results[1], account.ErrAccountInUse)
				biff.AssertTrue(a.locks.IsLocked(x))
				biff.AssertFalse(a.locks.IsLocked(y))
				return nil
			})
			biff.AssertNil(err)
			biff.AssertEqual(a.locks.Len(), 0)
		})

		alt.Alternative("Released on error", func(alt *biff.A) {
			failure := errors.New("failure")
			err := a.WithLockedAccounts(txs, func(results []error) error {
				return failure
			})
			biff.AssertEqual(err, failure)
			biff.AssertEqual(a.locks.Len(), 0)
		})

		alt.Alternative("Released on panic", func(alt *biff.A) {
			func() {
				defer func() {
					biff.AssertNotNil(recover())
				}()
				a.WithLockedAccounts(txs, func(results []error) error {
					panic("boom")
				})
			}()
			biff.AssertEqual(a.locks.Len(), 0)
		})
	})
}

func TestCheckpointThroughFacade(t *testing.T) {

	a := newTestAccounts(t)
	x := fund(a, 10)
	a.IncrementTransactionCount(1)

	biff.AssertNil(a.Checkpoint())
	biff.AssertEqual(a.Depth(), 1)

	before, err := a.HashInternalState()
	biff.AssertNil(err)

	biff.AssertNil(a.StoreSlow(x, &account.Account{Tokens: 3}))
	after, _ := a.HashInternalState()
	biff.AssertNotEqual(after, before)

	biff.AssertNil(a.Rollback())
	xAccount, found, _ := a.LoadSlow(x)
	biff.AssertTrue(found)
	biff.AssertEqual(xAccount.Tokens, uint64(10))
	biff.AssertEqual(a.TransactionCount(), uint64(1))

	biff.AssertNil(a.Checkpoint())
	biff.AssertNil(a.Purge(0))
	biff.AssertEqual(a.Depth(), 0)
	biff.AssertEqual(len(a.Keys()), 1)
}

// Transfers between a small set of accounts from many goroutines, the total
// supply must be preserved.
func TestConcurrentTransfers(t *testing.T) {

	a := newTestAccounts(t)
	oracle := &syncOracle{oracle: newFakeOracle()}

	ids := []account.Pubkey{}
	for i := 0; i < 4; i++ {
		ids = append(ids, fund(a, 1000))
	}

	wg := sync.WaitGroup{}
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				from, to := ids[(w+n)%len(ids)], ids[(w+n+1)%len(ids)]
				txs := []Transaction{{AccountKeys: []account.Pubkey{from, to}}}
				err := a.WithLockedAccounts(txs, func(results []error) error {
					loaded, err := a.LoadAccounts(txs, oracle, results, 0, nil)
					if err != nil {
						return err
					}
					for _, l := range loaded {
						if l.Err != nil || l.Accounts[0].Tokens == 0 {
							continue
						}
						l.Accounts[0].Tokens--
						l.Accounts[1].Tokens++
					}
					return a.StoreAccounts(txs, results, loaded)
				})
				biff.AssertNil(err)
			}
		}(w)
	}
	wg.Wait()

	total := uint64(0)
	for _, id := range ids {
		acc, found, err := a.LoadSlow(id)
		biff.AssertNil(err)
		if found {
			total += acc.Tokens
		}
	}
	biff.AssertEqual(total, uint64(4000))
	biff.AssertEqual(a.locks.Len(), 0)
}

type syncOracle struct {
	mutex  sync.Mutex
	oracle *fakeOracle
}

func (o *syncOracle) CheckFreshness(token account.Hash, maxAge int) bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.oracle.CheckFreshness(token, maxAge)
}

func (o *syncOracle) Reserve(token account.Hash, signature account.Signature) error {
	return nil
}
